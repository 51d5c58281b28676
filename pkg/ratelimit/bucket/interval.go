package bucket

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vnykmshr/gatrack/pkg/common/errors"
)

// Interval is the length of one replenishment period. It has millisecond
// resolution in configuration but is stored as a time.Duration.
type Interval time.Duration

// Named intervals accepted by ParseInterval.
const (
	Second Interval = Interval(time.Second)
	Minute Interval = Interval(time.Minute)
	Hour   Interval = Interval(time.Hour)
	Day    Interval = Interval(24 * time.Hour)
)

var namedIntervals = map[string]Interval{
	"sec":    Second,
	"second": Second,
	"min":    Minute,
	"minute": Minute,
	"hr":     Hour,
	"hour":   Hour,
	"day":    Day,
}

// Millis returns an Interval of ms milliseconds.
func Millis(ms float64) Interval {
	return Interval(ms * float64(time.Millisecond))
}

// ParseInterval resolves s to an Interval. It accepts the names
// second|sec, minute|min, hour|hr and day, or a decimal count of
// milliseconds. Any other value is a configuration error.
func ParseInterval(s string) (Interval, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if iv, ok := namedIntervals[name]; ok {
		return iv, nil
	}

	ms, err := strconv.ParseFloat(name, 64)
	if err != nil {
		return 0, errors.NewValidationError("bucket", "interval", s, "unrecognized interval").
			WithHint("use second, minute, hour, day or a number of milliseconds")
	}
	iv := Millis(ms)
	if iv <= 0 {
		return 0, errors.NewValidationError("bucket", "interval", s, "must be positive").
			WithHint("value must be greater than 0")
	}
	return iv, nil
}

// Duration returns the interval as a time.Duration.
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv)
}

// Millis returns the interval length in milliseconds.
func (iv Interval) Millis() float64 {
	return float64(iv) / float64(time.Millisecond)
}

// String returns the symbolic name for the named intervals and the
// millisecond count otherwise.
func (iv Interval) String() string {
	switch iv {
	case Second:
		return "second"
	case Minute:
		return "minute"
	case Hour:
		return "hour"
	case Day:
		return "day"
	}
	return strconv.FormatFloat(iv.Millis(), 'f', -1, 64)
}

// UnmarshalYAML accepts either a number of milliseconds or a symbolic name.
func (iv *Interval) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("bucket: interval must be a scalar, got %v", node.Tag)
	}
	parsed, err := ParseInterval(node.Value)
	if err != nil {
		return err
	}
	*iv = parsed
	return nil
}

// MarshalYAML writes the interval in the form UnmarshalYAML reads.
func (iv Interval) MarshalYAML() (interface{}, error) {
	return iv.String(), nil
}
