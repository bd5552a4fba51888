package pattern

import (
	"fmt"
	"regexp"

	"dcimsort/dcim/media"
)

// DefaultScreenshotValue is the component emitted for detected screenshots
// when the configuration does not override it.
const DefaultScreenshotValue = "screenshots"

// ScreenshotPattern emits a fixed component for files identified as
// screenshots, either by the extractor's metadata hint or by matching the
// filename against an optional pattern. For everything else it stays
// passive: it does not fire and contributes nothing to the path.
type ScreenshotPattern struct {
	value           string
	filenamePattern *regexp.Regexp
}

// NewScreenshotPattern creates a flag-only screenshot pattern.
func NewScreenshotPattern(value string) *ScreenshotPattern {
	if value == "" {
		value = DefaultScreenshotValue
	}
	return &ScreenshotPattern{value: value}
}

// NewScreenshotPatternMatching creates a screenshot pattern that additionally
// matches filenames against expr. An invalid expression is a configuration
// error.
func NewScreenshotPatternMatching(value, expr string, caseInsensitive bool) (*ScreenshotPattern, error) {
	if expr == "" {
		return nil, fmt.Errorf("screenshot filename pattern must not be empty")
	}
	if caseInsensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid screenshot filename pattern: %w", err)
	}
	p := NewScreenshotPattern(value)
	p.filenamePattern = re
	return p, nil
}

func (p *ScreenshotPattern) sealed() {}

func (p *ScreenshotPattern) evaluate(bag *media.Bag) (string, bool) {
	nameMatches := p.filenamePattern != nil && p.filenamePattern.MatchString(bag.Filename)
	if bag.IsScreenshot || nameMatches {
		return p.value, true
	}
	return "", false
}
