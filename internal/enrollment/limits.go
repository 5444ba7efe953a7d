package enrollment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Bounds of the "Cantidad de relaciones a mostrar" slider.
const (
	MinLimit     = 10
	MaxLimit     = 500
	DefaultLimit = 50
)

// ErrInvalidLimit is returned for limits that are not integers.
var ErrInvalidLimit = errors.New("invalid limit")

// Bounds is the range a caller may pick a row limit from.
type Bounds struct {
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
	Default int `json:"default" yaml:"default"`
}

func DefaultBounds() Bounds {
	return Bounds{Min: MinLimit, Max: MaxLimit, Default: DefaultLimit}
}

// Clamp pulls n into [Min, Max].
func (b Bounds) Clamp(n int) int {
	if n < b.Min {
		return b.Min
	}
	if n > b.Max {
		return b.Max
	}
	return n
}

// Parse reads a limit from user input. Empty input gives the default, anything out
// of range is clamped.
func (b Bounds) Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return b.Default, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidLimit, s)
	}
	return b.Clamp(n), nil
}

// Validate reports bounds that no slider could represent.
func (b Bounds) Validate() error {
	if b.Min < 1 {
		return fmt.Errorf("limits: min must be positive, got %d", b.Min)
	}
	if b.Min > b.Max {
		return fmt.Errorf("limits: min %d is above max %d", b.Min, b.Max)
	}
	if b.Default < b.Min || b.Default > b.Max {
		return fmt.Errorf("limits: default %d is outside [%d, %d]", b.Default, b.Min, b.Max)
	}
	return nil
}
