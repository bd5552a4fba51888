package pattern

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"dcimsort/dcim/media"
)

// DateTimePart names one timestamp unit read by a DateTimePattern, with its
// own emission order within the component.
type DateTimePart struct {
	Index int
	Unit  media.Unit
}

// Defaults for DateTimePattern fields left empty in configuration.
const (
	DefaultDateTimeSeparator = "-"
	DefaultDateTimeValue     = "unknown"
)

// DateTimePattern composes a component from embedded timestamp units,
// zero-padded to fixed width. When the bag carries no timestamp at all it
// either substitutes the filesystem timestamp (if configured) or emits the
// default value for the whole segment. When only some of the requested
// units are present, the missing ones render empty and the join proceeds;
// per-unit defaults are deliberately not substituted.
type DateTimePattern struct {
	parts         []DateTimePart
	separator     string
	defaultValue  string
	fsTimestampFB bool
}

// NewDateTimePattern creates the pattern. Parts are emitted in ascending
// index order; an empty part list defaults to Year, Month.
func NewDateTimePattern(parts []DateTimePart, separator, defaultValue string, fsTimestampFallback bool) *DateTimePattern {
	if len(parts) == 0 {
		parts = []DateTimePart{
			{Index: 0, Unit: media.UnitYear},
			{Index: 1, Unit: media.UnitMonth},
		}
	}
	sorted := make([]DateTimePart, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	if separator == "" {
		separator = DefaultDateTimeSeparator
	}
	if defaultValue == "" {
		defaultValue = DefaultDateTimeValue
	}

	return &DateTimePattern{
		parts:         sorted,
		separator:     separator,
		defaultValue:  defaultValue,
		fsTimestampFB: fsTimestampFallback,
	}
}

func (p *DateTimePattern) sealed() {}

func (p *DateTimePattern) evaluate(bag *media.Bag) (string, bool) {
	if !bag.HasAnyUnit() {
		if p.fsTimestampFB && !bag.FSTimestamp.IsZero() {
			return p.renderTime(bag.FSTimestamp), true
		}
		return p.defaultValue, true
	}

	rendered := make([]string, 0, len(p.parts))
	for _, part := range p.parts {
		v, ok := bag.Unit(part.Unit)
		if !ok {
			rendered = append(rendered, "")
			continue
		}
		rendered = append(rendered, formatUnit(part.Unit, v))
	}
	return strings.Join(rendered, p.separator), true
}

func (p *DateTimePattern) renderTime(ts time.Time) string {
	rendered := make([]string, 0, len(p.parts))
	for _, part := range p.parts {
		rendered = append(rendered, formatUnit(part.Unit, unitFromTime(part.Unit, ts)))
	}
	return strings.Join(rendered, p.separator)
}

func formatUnit(u media.Unit, v int) string {
	if u == media.UnitYear {
		return fmt.Sprintf("%04d", v)
	}
	return fmt.Sprintf("%02d", v)
}

func unitFromTime(u media.Unit, ts time.Time) int {
	switch u {
	case media.UnitYear:
		return ts.Year()
	case media.UnitMonth:
		return int(ts.Month())
	case media.UnitDay:
		return ts.Day()
	case media.UnitHour:
		return ts.Hour()
	case media.UnitMinute:
		return ts.Minute()
	default:
		return ts.Second()
	}
}
