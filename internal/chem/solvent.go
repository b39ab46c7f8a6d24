package chem

// Solvent is the dissolving medium. Values are shared and never mutated.
type Solvent struct {
	Name    string
	Density float64 // g/L
	Color   Color
}

// Water is the only solvent the lab uses.
var Water = &Solvent{
	Name:    "water",
	Density: 1000,
	Color:   RGB(224, 255, 255),
}
