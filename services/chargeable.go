package services

// Piece is one physical item line. Dimensions are centimeters, weight
// is kilograms per piece; Quantity repeats identical pieces.
type Piece struct {
	Length       float64 `json:"length"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Weight       float64 `json:"weight"`
	Quantity     int     `json:"quantity"`
	NonStackable bool    `json:"non_stackable"`
}

// Volume returns the cubic meters of a single piece. Zero or negative
// dimensions yield zero volume rather than an error.
func (p Piece) Volume() float64 {
	if p.Length <= 0 || p.Width <= 0 || p.Height <= 0 {
		return 0
	}
	return p.Length * p.Width * p.Height / 1_000_000
}

func (p Piece) count() float64 {
	if p.Quantity <= 0 {
		return 1
	}
	return float64(p.Quantity)
}

// Overall is the aggregate alternative to per-piece entry: one
// manually supplied total weight (kg) and volume (m3).
type Overall struct {
	Weight float64 `json:"weight"`
	Volume float64 `json:"volume"`
}

// Chargeable is the billing basis derived from the cargo, plus the
// totals the TMS payload and exports reuse.
type Chargeable struct {
	Quantity         float64 // in the mode's unit (kg, w/m, containers)
	TotalWeight      float64 // kg
	TotalVolume      float64 // m3
	VolumetricWeight float64 // kg, air only
	PieceCount       int
}

// ChargeableFromPieces computes the chargeable quantity for per-piece
// entry.
//
// Air: max(total actual weight, total volume x 167).
// LCL: sum over pieces of max(weight in tons, volume in m3); an exact
// tie counts as the weight basis.
// FCL does not use this path; container count is the quantity.
func ChargeableFromPieces(schema ModeSchema, pieces []Piece) Chargeable {
	var c Chargeable
	var lclUnits float64

	for _, p := range pieces {
		n := p.count()
		c.TotalWeight += p.Weight * n
		c.TotalVolume += p.Volume() * n
		c.PieceCount += int(n)
		lclUnits += n * maxFloat(p.Weight/1000, p.Volume())
	}

	switch schema.Mode {
	case ModeLCL:
		c.Quantity = lclUnits
	default:
		c.VolumetricWeight = c.TotalVolume * schema.VolumetricFactor
		c.Quantity = maxFloat(c.TotalWeight, c.VolumetricWeight)
	}
	return c
}

// ChargeableFromOverall computes the chargeable quantity from a single
// aggregate weight/volume, using the same per-mode rules.
func ChargeableFromOverall(schema ModeSchema, overall Overall) Chargeable {
	c := Chargeable{
		TotalWeight: overall.Weight,
		TotalVolume: overall.Volume,
		PieceCount:  1,
	}
	switch schema.Mode {
	case ModeLCL:
		c.Quantity = maxFloat(overall.Weight/1000, overall.Volume)
	default:
		c.VolumetricWeight = overall.Volume * schema.VolumetricFactor
		c.Quantity = maxFloat(overall.Weight, c.VolumetricWeight)
	}
	return c
}

// ChargeableFromContainers is the FCL basis: the container count is
// the chargeable quantity, each container type carrying its own flat
// rate.
func ChargeableFromContainers(count int) Chargeable {
	if count < 0 {
		count = 0
	}
	return Chargeable{Quantity: float64(count), PieceCount: count}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
