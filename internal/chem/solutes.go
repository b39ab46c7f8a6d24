package chem

// Solutes available in the Concentration lab. Saturation concentrations
// double as the max anchor of each color scheme.
var (
	DrinkMix = NewSolute("drinkMix", "Drink mix", "drink mix", 342.296, 1587, 5.5,
		ColorScheme{0, RGB(255, 225, 225), 0.05, RGB(255, 0, 0), 5.96, RGB(190, 0, 0)},
		SoluteOptions{})

	CobaltIINitrate = NewSolute("cobaltIINitrate", "Cobalt (II) nitrate", "Co(NO3)2", 182.942, 2490, 5.0,
		ColorScheme{0, RGB(255, 225, 225), 0.05, RGB(255, 0, 0), 5.64, RGB(190, 0, 0)},
		SoluteOptions{})

	CobaltChloride = NewSolute("cobaltChloride", "Cobalt chloride", "CoCl2", 129.839, 3356, 4.0,
		ColorScheme{0, RGB(255, 242, 242), 0.05, RGB(255, 106, 106), 4.33, RGB(255, 106, 106)},
		SoluteOptions{})

	PotassiumDichromate = NewSolute("potassiumDichromate", "Potassium dichromate", "K2Cr2O7", 294.185, 2676, 0.5,
		ColorScheme{0, RGB(255, 204, 153), 0.01, RGB(255, 127, 0), 0.51, RGB(255, 127, 0)},
		SoluteOptions{})

	PotassiumChromate = NewSolute("potassiumChromate", "Potassium chromate", "K2CrO4", 194.191, 2732, 3.0,
		ColorScheme{0, RGB(255, 255, 153), 0.05, Yellow, 3.35, Yellow},
		SoluteOptions{})

	NickelIIChloride = NewSolute("nickelIIChloride", "Nickel (II) chloride", "NiCl2", 129.599, 3550, 5.0,
		ColorScheme{0, RGB(234, 244, 234), 0.2, RGB(0, 128, 0), 5.21, RGB(0, 128, 0)},
		SoluteOptions{})

	CopperSulfate = NewSolute("copperSulfate", "Copper sulfate", "CuSO4", 159.609, 3600, 1.0,
		ColorScheme{0, RGB(222, 238, 255), 0.2, RGB(30, 144, 255), 1.38, RGB(30, 144, 255)},
		SoluteOptions{})

	PotassiumPermanganate = NewSolute("potassiumPermanganate", "Potassium permanganate", "KMnO4", 158.034, 2703, 0.4,
		ColorScheme{0, RGB(255, 0, 255), 0.01, RGB(80, 0, 120), 0.48, RGB(80, 0, 120)},
		SoluteOptions{ParticleColor: &Black})

	SodiumChloride = NewSolute("sodiumChloride", "Sodium chloride", "NaCl", 58.443, 2165, 5.0,
		ColorScheme{0, Water.Color, 0.01, Water.Color, 5.37, Water.Color},
		SoluteOptions{ParticleColor: &White})
)

// DefaultCatalog returns a catalog holding every lab solute in menu order.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		DrinkMix,
		CobaltIINitrate,
		CobaltChloride,
		PotassiumDichromate,
		PotassiumChromate,
		NickelIIChloride,
		CopperSulfate,
		PotassiumPermanganate,
		SodiumChloride,
	)
	if err != nil {
		panic(err)
	}
	return c
}
