package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	cartErrors "github.com/ezoic/cart/pkg/errors"
)

// IntRange is a half-open integer range written "start:stop", like Python's
// range(start, stop).
type IntRange struct {
	Start int `validate:"min=0"`
	Stop  int `validate:"gtfield=Start"`
}

// ParseIntRange parses "start:stop".
func ParseIntRange(s string) (IntRange, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return IntRange{}, cartErrors.NewValidationError("range", "want start:stop", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return IntRange{}, cartErrors.Wrapf(err, "invalid range start %q", lo)
	}
	stop, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return IntRange{}, cartErrors.Wrapf(err, "invalid range stop %q", hi)
	}
	return IntRange{Start: start, Stop: stop}, nil
}

// Values returns start, start+1, ..., stop-1.
func (r IntRange) Values() []any {
	out := make([]any, 0, max(r.Stop-r.Start, 0))
	for v := r.Start; v < r.Stop; v++ {
		out = append(out, v)
	}
	return out
}

// Len returns the number of values.
func (r IntRange) Len() int {
	return max(r.Stop-r.Start, 0)
}

func (r IntRange) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.Stop)
}

// Decode implements envconfig.Decoder.
func (r *IntRange) Decode(value string) error {
	parsed, err := ParseIntRange(value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UnmarshalYAML accepts "start:stop".
func (r *IntRange) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return r.Decode(s)
}

// MarshalYAML writes "start:stop".
func (r IntRange) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}
