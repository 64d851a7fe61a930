package panel

import (
	"github.com/RMahshie/roomtreat/internal/errs"
)

const (
	DefaultQRDPrime     = 7
	DefaultQRDFrequency = 500.0
	// MaxQRDPrime bounds the period length; buildable diffusers stop well below it.
	MaxQRDPrime = 53

	defaultWellWidthMM = 50.0
	defaultQRDHeightMM = 600.0
	// MaxWellDepthMM keeps a diffuser wall-mountable.
	MaxWellDepthMM = 400.0
	finThicknessMM = 6.0
)

// QRDParams describe one period of a quadratic-residue diffuser.
type QRDParams struct {
	DesignFrequency float64 `json:"design_frequency,omitempty"`
	Prime           int     `json:"prime,omitempty"`
	WellWidthMM     float64 `json:"well_width_mm,omitempty"`
	HeightMM        float64 `json:"height_mm,omitempty"`
}

// QRDDetail lists the residue sequence and the resulting well depths.
type QRDDetail struct {
	Prime         int       `json:"prime"`
	WellWidthMM   float64   `json:"well_width_mm"`
	Sequence      []int     `json:"sequence"`
	WellDepthsMM  []float64 `json:"well_depths_mm"`
	MaxDepthMM    float64   `json:"max_depth_mm"`
	LowFrequency  float64   `json:"low_frequency"`
	HighFrequency float64   `json:"high_frequency"`
}

// Residues returns n² mod N for n in [0, N).
func Residues(prime int) []int {
	out := make([]int, prime)
	for n := range out {
		out[n] = n * n % prime
	}
	return out
}

// QRDRange is the usable band: from the design frequency up to where the
// well width reaches half a wavelength.
func QRDRange(designFrequency, wellWidthMM float64) (low, high float64) {
	return designFrequency, c / (2 * wellWidthMM / 1000)
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	for i := 2; i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// DesignQRD computes depth_n = (n² mod N)·λ/(2N) for one period.
func DesignQRD(p QRDParams) (Design, error) {
	if err := positive("qrd.design_frequency", p.DesignFrequency); err != nil {
		return Design{}, err
	}
	if err := positive("qrd.well_width_mm", p.WellWidthMM); err != nil {
		return Design{}, err
	}
	if err := positive("qrd.height_mm", p.HeightMM); err != nil {
		return Design{}, err
	}
	f0 := orDefault(p.DesignFrequency, DefaultQRDFrequency)
	wellW := orDefault(p.WellWidthMM, defaultWellWidthMM)
	height := orDefault(p.HeightMM, defaultQRDHeightMM)
	prime := p.Prime
	if prime == 0 {
		prime = DefaultQRDPrime
	}
	if prime > MaxQRDPrime {
		return Design{}, errs.Validation("qrd.prime", prime, "must be at most 53")
	}
	if prime < 3 || !isPrime(prime) {
		return Design{}, errs.Validation("qrd.prime", prime, "must be a prime of at least 3")
	}

	low, high := QRDRange(f0, wellW)
	if f0 >= high {
		return Design{}, errs.Unreachable(string(QRD), f0, "well width is too wide for the design frequency")
	}

	lambdaMM := c / f0 * 1000
	seq := Residues(prime)
	depths := make([]float64, prime)
	var maxDepth float64
	for n, r := range seq {
		depths[n] = round(float64(r)*lambdaMM/float64(2*prime), 1)
		maxDepth = max(maxDepth, depths[n])
	}
	if maxDepth > MaxWellDepthMM {
		return Design{}, errs.Unreachable(string(QRD), f0, "deepest well exceeds 400 mm")
	}

	width := float64(prime)*wellW + float64(prime+1)*finThicknessMM
	bom := []BOMEntry{
		{Item: "Well divider", Dimensions: dims(maxDepth, height, finThicknessMM), Quantity: float64(prime + 1), Unit: "pcs"},
		{Item: "Back panel", Dimensions: dims(width, height, cabinetStockMM), Quantity: 1, Unit: "pcs"},
	}
	// Each well is floored with a block filling the space below its depth.
	var blocks []BOMEntry
	for _, d := range depths {
		if fill := maxDepth - d; fill > 0 {
			blocks = append(blocks, BOMEntry{Item: "Well floor block", Dimensions: dims(wellW, height, fill), Quantity: 1, Unit: "pcs"})
		}
	}

	return Design{
		Kind:              QRD,
		Quantity:          1,
		WidthMM:           width,
		HeightMM:          height,
		DepthMM:           maxDepth + cabinetStockMM,
		TargetFrequency:   f0,
		AchievedFrequency: f0,
		QRD: &QRDDetail{
			Prime:         prime,
			WellWidthMM:   wellW,
			Sequence:      seq,
			WellDepthsMM:  depths,
			MaxDepthMM:    maxDepth,
			LowFrequency:  round(low, 2),
			HighFrequency: round(high, 2),
		},
		Materials: MergeBOM(bom, blocks),
	}, nil
}
