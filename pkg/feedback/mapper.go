// Package feedback maps intensity scores to discrete severity tiers for
// actuation hosts to render.
package feedback

import "fmt"

// Tier is the discrete severity of one intensity score.
type Tier int

const (
	// TierLow covers calm movement well below the tremor range.
	TierLow Tier = iota
	// TierMedium covers elevated movement approaching a tremor.
	TierMedium
	// TierHigh covers sustained high-intensity oscillation.
	TierHigh
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Color returns the rendering hint used by light-based actuation.
func (t Tier) Color() string {
	switch t {
	case TierLow:
		return "green"
	case TierMedium:
		return "yellow"
	case TierHigh:
		return "red"
	default:
		return "off"
	}
}

// Mapper converts intensity scores to tiers. It is stateless across calls.
type Mapper struct {
	low  float64
	high float64
}

// NewMapper creates a mapper with the given tier boundaries. Intensities
// below low map to TierLow, intensities at or above high map to TierHigh,
// everything between maps to TierMedium.
func NewMapper(low, high float64) (*Mapper, error) {
	if low < 0 {
		return nil, fmt.Errorf("low threshold must not be negative, got %g", low)
	}
	if high <= low {
		return nil, fmt.Errorf("high threshold %g must be greater than low threshold %g", high, low)
	}
	return &Mapper{low: low, high: high}, nil
}

// MapTier classifies one intensity score.
func (m *Mapper) MapTier(intensity float64) Tier {
	switch {
	case intensity < m.low:
		return TierLow
	case intensity < m.high:
		return TierMedium
	default:
		return TierHigh
	}
}
