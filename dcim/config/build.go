package config

import (
	"fmt"
	"strings"

	"dcimsort/dcim/media"
	"dcimsort/dcim/pattern"
	"dcimsort/dcim/sorting"
)

// Recognized segment type values.
const (
	TypeMakeModelPattern      = "MakeModelPattern"
	TypeScreenshotPattern     = "ScreenshotPattern"
	TypeDateTimePattern       = "DateTimePattern"
	TypeSimpleFileTypePattern = "SimpleFileTypePattern"
)

// BuildRouter validates the two chain configurations and constructs the
// immutable router. Unknown segment types, duplicate indexes and invalid
// regexes all fail construction.
func (c *SorterConfig) BuildRouter() (*pattern.Router, error) {
	supported, err := buildChain(pattern.ChainSupported, c.Supported)
	if err != nil {
		return nil, err
	}
	fallback, err := buildChain(pattern.ChainFallback, c.Fallback)
	if err != nil {
		return nil, err
	}
	return pattern.NewRouter(supported, fallback), nil
}

// BuildPolicy validates and constructs the collision policy.
func (c *SorterConfig) BuildPolicy() (sorting.DuplicateResolution, error) {
	policy, err := sorting.ParseDuplicateResolution(c.DuplicateResolution.Strategy, c.DuplicateResolution.Mode)
	if err != nil {
		return sorting.DuplicateResolution{}, fmt.Errorf("%w: %v", ErrIllegalValue, err)
	}
	return policy, nil
}

func buildChain(tag pattern.ChainTag, cfg ChainConfig) (*pattern.Chain, error) {
	segments := make([]pattern.IndexedSegment, 0, len(cfg.Segments))
	for _, sc := range cfg.Segments {
		seg, err := buildSegment(sc)
		if err != nil {
			return nil, fmt.Errorf("%s chain, segment index %d: %w", tag, sc.Index, err)
		}
		segments = append(segments, pattern.IndexedSegment{Index: sc.Index, Segment: seg})
	}
	return pattern.NewChain(tag, segments)
}

func buildSegment(sc SegmentConfig) (pattern.Segment, error) {
	switch sc.Type {
	case TypeMakeModelPattern:
		return buildMakeModel(sc)
	case TypeScreenshotPattern:
		return buildScreenshot(sc)
	case TypeDateTimePattern:
		return buildDateTime(sc)
	case TypeSimpleFileTypePattern:
		return buildFileType(sc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSegmentType, sc.Type)
	}
}

func buildMakeModel(sc SegmentConfig) (pattern.Segment, error) {
	parts := make([]pattern.DevicePart, 0, len(sc.Parts))
	for _, pc := range sc.Parts {
		attr, err := deviceAttr(pc.Value)
		if err != nil {
			return nil, err
		}
		parts = append(parts, pattern.DevicePart{Index: pc.Index, Attr: attr})
	}

	caseNorm, ok := pattern.ParseCaseNormalization(sc.CaseNormalization)
	if !ok {
		return nil, fmt.Errorf("%w: caseNormalization %q", ErrIllegalValue, sc.CaseNormalization)
	}

	replaceSpaces := true
	if sc.ReplaceSpaces != nil {
		replaceSpaces = *sc.ReplaceSpaces
	}

	return pattern.NewMakeModelPattern(parts, replaceSpaces, sc.DefaultMake, sc.DefaultModel, sc.Separator, caseNorm, sc.Fallback), nil
}

func deviceAttr(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "make":
		return media.AttrMake, nil
	case "model":
		return media.AttrModel, nil
	default:
		return "", fmt.Errorf("%w: device part %q", ErrIllegalValue, value)
	}
}

func buildScreenshot(sc SegmentConfig) (pattern.Segment, error) {
	if sc.FilenamePattern == "" {
		return pattern.NewScreenshotPattern(sc.Value), nil
	}
	seg, err := pattern.NewScreenshotPatternMatching(sc.Value, sc.FilenamePattern, sc.CaseInsensitive)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegex, err)
	}
	return seg, nil
}

func buildDateTime(sc SegmentConfig) (pattern.Segment, error) {
	parts := make([]pattern.DateTimePart, 0, len(sc.Parts))
	for _, pc := range sc.Parts {
		unit, ok := media.ParseUnit(pc.Value)
		if !ok {
			return nil, fmt.Errorf("%w: datetime part %q", ErrIllegalValue, pc.Value)
		}
		parts = append(parts, pattern.DateTimePart{Index: pc.Index, Unit: unit})
	}
	return pattern.NewDateTimePattern(parts, sc.Separator, sc.DefaultValue, sc.FallbackFsTimestamp), nil
}

func buildFileType(sc SegmentConfig) (pattern.Segment, error) {
	labels := make(map[media.FileKind]string, len(sc.Labels))
	for key, label := range sc.Labels {
		kind, err := fileKind(key)
		if err != nil {
			return nil, err
		}
		labels[kind] = label
	}
	return pattern.NewSimpleFileTypePattern(labels), nil
}

func fileKind(key string) (media.FileKind, error) {
	switch media.FileKind(strings.ToLower(key)) {
	case media.KindVideo:
		return media.KindVideo, nil
	case media.KindPicture:
		return media.KindPicture, nil
	case media.KindAudio:
		return media.KindAudio, nil
	case media.KindText:
		return media.KindText, nil
	case media.KindDocument:
		return media.KindDocument, nil
	case media.KindOther:
		return media.KindOther, nil
	default:
		return "", fmt.Errorf("%w: file kind %q", ErrIllegalValue, key)
	}
}
