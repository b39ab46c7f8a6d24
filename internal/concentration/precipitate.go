package concentration

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/beerslab/internal/chem"
	"github.com/san-kum/beerslab/internal/property"
)

// PrecipitateParticle is one undissolved crystal resting on the beaker
// floor. Offset is relative to the beaker's bottom center.
type PrecipitateParticle struct {
	Solute      *chem.Solute
	Offset      r2.Vec
	Orientation float64 // radians
}

// PrecipitateConfig configures a Precipitate.
type PrecipitateConfig struct {
	// Rand supplies particle positions and orientations. Defaults to a
	// time-seeded source.
	Rand *rand.Rand
}

// Precipitate keeps one particle per unit of undissolved solute, as
// counted by Solution.NumberOfPrecipitateParticles.
type Precipitate struct {
	solution  *Solution
	beaker    *Beaker
	rng       *rand.Rand
	particles []*PrecipitateParticle

	added   property.Emitter[*PrecipitateParticle]
	removed property.Emitter[*PrecipitateParticle]

	amountSub property.ListenerID
	soluteSub property.ListenerID
	endSub    property.ListenerID

	// set when a reconciliation was skipped inside a deferral window
	pending bool
}

func NewPrecipitate(solution *Solution, beaker *Beaker, cfg PrecipitateConfig) *Precipitate {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	p := &Precipitate{
		solution: solution,
		beaker:   beaker,
		rng:      cfg.Rand,
	}
	p.amountSub = solution.PrecipitateAmount.Subscribe(p.update)
	p.soluteSub = solution.Solute.Subscribe(p.onSoluteChanged)
	p.endSub = solution.OnDeferralEnd(p.onDeferralEnd)
	p.update()
	return p
}

func (p *Precipitate) OnParticleAdded(fn func(*PrecipitateParticle)) property.ListenerID {
	return p.added.AddListener(fn)
}

func (p *Precipitate) OnParticleRemoved(fn func(*PrecipitateParticle)) property.ListenerID {
	return p.removed.AddListener(fn)
}

func (p *Precipitate) UnlinkParticleAdded(id property.ListenerID) bool {
	return p.added.RemoveListener(id)
}

func (p *Precipitate) UnlinkParticleRemoved(id property.ListenerID) bool {
	return p.removed.RemoveListener(id)
}

// Particles returns a snapshot in creation order.
func (p *Precipitate) Particles() []*PrecipitateParticle {
	out := make([]*PrecipitateParticle, len(p.particles))
	copy(out, p.particles)
	return out
}

func (p *Precipitate) Len() int {
	return len(p.particles)
}

// Dispose stops following the solution.
func (p *Precipitate) Dispose() {
	p.solution.PrecipitateAmount.Unlink(p.amountSub)
	p.solution.Solute.Unlink(p.soluteSub)
	p.solution.UnlinkDeferralEnd(p.endSub)
}

// update adds particles at random positions or removes them from the
// tail until the count matches. Existing particles never move. Inside a
// deferral window the cached amount may belong to another solute, so the
// work waits for the window to close.
func (p *Precipitate) update() {
	if p.solution.Deferring() {
		p.pending = true
		return
	}
	p.pending = false

	n := p.solution.NumberOfPrecipitateParticles()
	if n == 0 {
		p.removeAll()
		return
	}
	for len(p.particles) < n {
		particle := &PrecipitateParticle{
			Solute:      p.solution.Solute.Get(),
			Offset:      p.randomOffset(),
			Orientation: p.randomOrientation(),
		}
		p.particles = append(p.particles, particle)
		p.added.Emit(particle)
	}
	for len(p.particles) > n {
		p.removeLast()
	}
}

// onSoluteChanged recreates every particle since crystals differ per solute.
func (p *Precipitate) onSoluteChanged() {
	p.removeAll()
	p.update()
}

func (p *Precipitate) onDeferralEnd() {
	if p.pending {
		p.update()
	}
}

func (p *Precipitate) removeAll() {
	for len(p.particles) > 0 {
		p.removeLast()
	}
}

func (p *Precipitate) removeLast() {
	last := len(p.particles) - 1
	particle := p.particles[last]
	p.particles[last] = nil
	p.particles = p.particles[:last]
	p.removed.Emit(particle)
}

func (p *Precipitate) randomOffset() r2.Vec {
	size := p.solution.Solute.Get().ParticleSize
	margin := size
	width := p.beaker.Size.Width - size - 2*margin
	return r2.Vec{
		X: margin + p.rng.Float64()*width - p.beaker.Size.Width/2,
		Y: -margin,
	}
}

func (p *Precipitate) randomOrientation() float64 {
	return p.rng.Float64() * 2 * math.Pi
}
