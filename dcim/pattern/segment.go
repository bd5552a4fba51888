// Package pattern implements the segment pattern engine: composable rules
// that derive one destination directory level each from a file's metadata.
package pattern

import (
	"strings"

	"dcimsort/dcim/media"
)

// Segment is one path-generation rule. The set of implementations is closed:
// new kinds are added by extending this package and the Evaluate dispatch,
// never through runtime registration.
type Segment interface {
	sealed()
}

// Evaluate runs a segment against a metadata bag. It returns the produced
// path component and whether the segment fired. Inapplicable segments
// contribute nothing to the path but never abort the chain.
func Evaluate(s Segment, bag *media.Bag) (string, bool) {
	var component string
	var applicable bool

	switch seg := s.(type) {
	case *MakeModelPattern:
		component, applicable = seg.evaluate(bag)
	case *ScreenshotPattern:
		component, applicable = seg.evaluate(bag)
	case *DateTimePattern:
		component, applicable = seg.evaluate(bag)
	case *SimpleFileTypePattern:
		component, applicable = seg.evaluate(bag)
	default:
		return "", false
	}

	if !applicable {
		return "", false
	}
	return sanitizeComponent(component), true
}

// sanitizeComponent keeps a component a single path level. Separators that
// leaked in through metadata values are flattened, not split.
func sanitizeComponent(s string) string {
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
