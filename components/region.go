package components

// Region classifies which part of the figure a point lies in.
type Region uint8

const (
	RegionBody Region = iota
	RegionLeg
	RegionArm
)

// String returns the region name.
func (r Region) String() string {
	switch r {
	case RegionLeg:
		return "leg"
	case RegionArm:
		return "arm"
	default:
		return "body"
	}
}

// MaxRegionHistory bounds RegionHistory; it matches config.MaxHistorySize.
const MaxRegionHistory = 16

// RegionHistory is a fixed-size ring of recent regions for one electron.
// Recent history smooths the display transition between limb and body frames.
type RegionHistory struct {
	Entries [MaxRegionHistory]Region
	Size    uint8 // configured capacity, 1..MaxRegionHistory
	Count   uint8
	Next    uint8
}

// NewRegionHistory creates an empty history with the given capacity.
func NewRegionHistory(size int) RegionHistory {
	if size < 1 {
		size = 1
	}
	if size > MaxRegionHistory {
		size = MaxRegionHistory
	}
	return RegionHistory{Size: uint8(size)}
}

// Push records a region, evicting the oldest entry when full.
func (h *RegionHistory) Push(r Region) {
	if h.Size == 0 {
		h.Size = 1
	}
	h.Entries[h.Next] = r
	h.Next = (h.Next + 1) % h.Size
	if h.Count < h.Size {
		h.Count++
	}
}

// Fraction returns the share of recorded entries equal to r, 0 when empty.
func (h *RegionHistory) Fraction(r Region) float64 {
	if h.Count == 0 {
		return 0
	}
	n := 0
	for i := uint8(0); i < h.Count; i++ {
		if h.Entries[i] == r {
			n++
		}
	}
	return float64(n) / float64(h.Count)
}
