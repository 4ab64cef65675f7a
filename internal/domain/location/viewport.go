// internal/domain/location/viewport.go

package location

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Viewport is a geographic bounding box. The wire form is
// "west,south,east,north" with west < east and south < north.
type Viewport struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// ParseViewport parses the wire form of a bounding box. It rejects anything
// that is not four finite, correctly ordered coordinates.
func ParseViewport(s string) (*Viewport, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("viewport: expected 4 coordinates, got %d", len(parts))
	}

	coords := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("viewport: coordinate %d: %w", i, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("viewport: coordinate %d is not finite", i)
		}
		coords[i] = v
	}

	vp := &Viewport{West: coords[0], South: coords[1], East: coords[2], North: coords[3]}
	if vp.West >= vp.East {
		return nil, fmt.Errorf("viewport: west %v is not left of east %v", vp.West, vp.East)
	}
	if vp.South >= vp.North {
		return nil, fmt.Errorf("viewport: south %v is not below north %v", vp.South, vp.North)
	}
	return vp, nil
}

// String returns the wire form "west,south,east,north".
func (v *Viewport) String() string {
	return strings.Join([]string{
		formatCoord(v.West),
		formatCoord(v.South),
		formatCoord(v.East),
		formatCoord(v.North),
	}, ",")
}

// Equal reports whether two viewport descriptors are the same. A nil viewport
// is the "no spatial filter" descriptor and only equals another nil.
func (v *Viewport) Equal(other *Viewport) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.West == other.West &&
		v.South == other.South &&
		v.East == other.East &&
		v.North == other.North
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
