package feed

import (
	"encoding/json"

	"github.com/san-kum/beerslab/internal/concentration"
)

// Event types sent to clients.
const (
	EventSnapshot        = "snapshot"
	EventParticleAdded   = "particle_added"
	EventParticleRemoved = "particle_removed"
	EventError           = "error"
)

// Particle is the wire form of a precipitate particle. X and Y are
// offsets from the bottom center of the beaker.
type Particle struct {
	Solute      string  `json:"solute"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Orientation float64 `json:"orientation"`
	Color       string  `json:"color"`
	Size        float64 `json:"size"`
}

func particleOf(p *concentration.PrecipitateParticle) *Particle {
	return &Particle{
		Solute:      p.Solute.Key,
		X:           p.Offset.X,
		Y:           p.Offset.Y,
		Orientation: p.Orientation,
		Color:       p.Solute.ParticleColor.Hex(),
		Size:        p.Solute.ParticleSize,
	}
}

// Event is one frame of the live feed.
type Event struct {
	Type     string                  `json:"type"`
	Time     float64                 `json:"time"`
	Snapshot *concentration.Snapshot `json:"snapshot,omitempty"`
	Particle *Particle               `json:"particle,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Command is a control message sent by a client. It has the same shape
// as a scripted action, minus the time.
type Command struct {
	Target string  `json:"target"`
	Value  float64 `json:"value,omitempty"`
	Name   string  `json:"name,omitempty"`
}
