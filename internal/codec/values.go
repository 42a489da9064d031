package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// decoder reads typed values out of a record and keeps the first error.
// Missing fields decode to their zero value.
type decoder struct {
	f   fields
	err error
}

func (d *decoder) fail(names []string, v any, want string) {
	if d.err == nil {
		d.err = fmt.Errorf("field %s: got %T, want %s", names[0], v, want)
	}
}

func (d *decoder) int(names []string) int {
	v, ok := d.f.lookup(names)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		if n != math.Trunc(n) {
			d.fail(names, v, "integer")
			return 0
		}
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			d.fail(names, v, "integer")
			return 0
		}
		return int(i)
	}
	d.fail(names, v, "integer")
	return 0
}

func (d *decoder) float(names []string) float64 {
	v, ok := d.f.lookup(names)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			d.fail(names, v, "number")
			return 0
		}
		return x
	}
	d.fail(names, v, "number")
	return 0
}

func (d *decoder) string(names []string) string {
	v, ok := d.f.lookup(names)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(names, v, "string")
	}
	return s
}

// enum reads a string value as is. An integer is taken as an index into
// ordinals, the enum values in declaration order.
func (d *decoder) enum(names []string, ordinals []string) string {
	v, ok := d.f.lookup(names)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	i := d.int(names)
	if d.err != nil {
		return ""
	}
	if i < 0 || i >= len(ordinals) {
		d.fail(names, v, fmt.Sprintf("ordinal below %d", len(ordinals)))
		return ""
	}
	return ordinals[i]
}

func (d *decoder) bool(names []string) bool {
	v, ok := d.f.lookup(names)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(names, v, "bool")
	}
	return b
}

func (d *decoder) strings(names []string) []string {
	v, ok := d.f.lookup(names)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				d.fail(names, item, "string list")
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	d.fail(names, v, "string list")
	return nil
}

// Layouts accepted for dates. Legacy documents omit the zone and may carry
// seven fractional digits.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses a date in any of the accepted layouts. Values without a
// zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func (d *decoder) time(names []string) time.Time {
	v, ok := d.f.lookup(names)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := ParseTime(t)
		if err != nil && d.err == nil {
			d.err = fmt.Errorf("field %s: %w", names[0], err)
		}
		return parsed
	}
	d.fail(names, v, "date string")
	return time.Time{}
}
