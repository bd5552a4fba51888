package pattern

import (
	"regexp"
	"sort"
	"strings"

	"dcimsort/dcim/media"
)

// CaseNormalization controls how a composed device component is cased.
type CaseNormalization string

const (
	CaseLower CaseNormalization = "lowercase"
	CaseUpper CaseNormalization = "uppercase"
	CaseNone  CaseNormalization = "none"
)

// ParseCaseNormalization converts a config value to a CaseNormalization.
func ParseCaseNormalization(s string) (CaseNormalization, bool) {
	switch strings.ToLower(s) {
	case "lowercase", "lower":
		return CaseLower, true
	case "uppercase", "upper":
		return CaseUpper, true
	case "none":
		return CaseNone, true
	case "":
		// unset in config: the constructor default applies
		return "", true
	default:
		return "", false
	}
}

// DevicePart names one attribute read by a MakeModelPattern, with its own
// emission order within the component.
type DevicePart struct {
	Index int
	Attr  string
}

// Defaults for MakeModelPattern fields left empty in configuration.
const (
	DefaultMakeModelSeparator = "_"
	DefaultDeviceName         = "unknown"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// MakeModelPattern composes a component from the device make and model
// attributes. It always fires: when both attributes are absent it emits the
// configured fallback literal instead of the joined defaults.
type MakeModelPattern struct {
	parts         []DevicePart
	replaceSpaces bool
	defaultMake   string
	defaultModel  string
	separator     string
	caseNorm      CaseNormalization
	fallback      string
}

// NewMakeModelPattern creates the pattern. Parts are emitted in ascending
// index order; an empty part list defaults to Make, Model.
func NewMakeModelPattern(parts []DevicePart, replaceSpaces bool, defaultMake, defaultModel, separator string, caseNorm CaseNormalization, fallback string) *MakeModelPattern {
	if len(parts) == 0 {
		parts = []DevicePart{
			{Index: 0, Attr: media.AttrMake},
			{Index: 1, Attr: media.AttrModel},
		}
	}
	sorted := make([]DevicePart, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	if defaultMake == "" {
		defaultMake = DefaultDeviceName
	}
	if defaultModel == "" {
		defaultModel = DefaultDeviceName
	}
	if separator == "" {
		separator = DefaultMakeModelSeparator
	}
	if caseNorm == "" {
		caseNorm = CaseLower
	}

	return &MakeModelPattern{
		parts:         sorted,
		replaceSpaces: replaceSpaces,
		defaultMake:   defaultMake,
		defaultModel:  defaultModel,
		separator:     separator,
		caseNorm:      caseNorm,
		fallback:      fallback,
	}
}

func (p *MakeModelPattern) sealed() {}

func (p *MakeModelPattern) evaluate(bag *media.Bag) (string, bool) {
	makeVal, makePresent := bag.Attr(media.AttrMake)
	modelVal, modelPresent := bag.Attr(media.AttrModel)
	if !makePresent {
		makeVal = p.defaultMake
	}
	if !modelPresent {
		modelVal = p.defaultModel
	}

	// both defaults in use: the device is unidentifiable, emit the fallback
	if !makePresent && !modelPresent {
		return p.fallback, true
	}

	resolved := make([]string, 0, len(p.parts))
	for _, part := range p.parts {
		var v string
		switch part.Attr {
		case media.AttrMake:
			v = makeVal
		case media.AttrModel:
			v = modelVal
		default:
			v, _ = bag.Attr(part.Attr)
		}
		if p.replaceSpaces {
			v = whitespaceRun.ReplaceAllString(v, "_")
		}
		resolved = append(resolved, v)
	}

	return p.normalizeCase(strings.Join(resolved, p.separator)), true
}

func (p *MakeModelPattern) normalizeCase(s string) string {
	switch p.caseNorm {
	case CaseLower:
		return strings.ToLower(s)
	case CaseUpper:
		return strings.ToUpper(s)
	default:
		return s
	}
}

// Fallback returns the literal emitted when make and model are both absent.
func (p *MakeModelPattern) Fallback() string {
	return p.fallback
}
