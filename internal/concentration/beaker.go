package concentration

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/beerslab/internal/linear"
)

// MinNonZeroSolutionHeight keeps a non-empty solution visible.
const MinNonZeroSolutionHeight = 5.0

type Size struct {
	Width  float64
	Height float64
}

// Beaker is the container geometry. Location is the center of the bottom.
type Beaker struct {
	Location r2.Vec
	Size     Size
	Volume   float64 // capacity, L

	volumeToHeight linear.Function
}

func NewBeaker(location r2.Vec, size Size, volume float64) *Beaker {
	return &Beaker{
		Location:       location,
		Size:           size,
		Volume:         volume,
		volumeToHeight: linear.New(0, 0, volume, size.Height, false),
	}
}

func (b *Beaker) Left() float64  { return b.Location.X - b.Size.Width/2 }
func (b *Beaker) Right() float64 { return b.Location.X + b.Size.Width/2 }

// SolutionHeight maps a volume to the height of the liquid column.
func (b *Beaker) SolutionHeight(volume float64) float64 {
	h := b.volumeToHeight.Evaluate(volume)
	if volume > 0 && h < MinNonZeroSolutionHeight {
		h = MinNonZeroSolutionHeight
	}
	return h
}
