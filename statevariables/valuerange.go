package statevariables

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueRange represents the allowedValueRange of a numeric state variable.
// The range is inclusive: [Min, Max]. A zero Step means the description did
// not declare one.
type ValueRange struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step,omitempty"`
}

// Contains reports whether v lies within the bounds. Step is not enforced.
func (r ValueRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r ValueRange) String() string {
	if r.Step != 0 {
		return fmt.Sprintf("[%s..%s step %s]", formatNumber(r.Min), formatNumber(r.Max), formatNumber(r.Step))
	}
	return fmt.Sprintf("[%s..%s]", formatNumber(r.Min), formatNumber(r.Max))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
