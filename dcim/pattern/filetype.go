package pattern

import (
	"dcimsort/dcim/media"
)

// DefaultFileTypeLabels returns the directory names emitted per file kind
// when the configuration does not override them.
func DefaultFileTypeLabels() map[media.FileKind]string {
	return map[media.FileKind]string{
		media.KindVideo:    "videos",
		media.KindPicture:  "pictures",
		media.KindAudio:    "audio_files",
		media.KindText:     "text_files",
		media.KindDocument: "documents",
		media.KindOther:    "other",
	}
}

// SimpleFileTypePattern emits a label per coarse file kind. It always fires;
// kinds without an explicit label fall through to the Other label.
type SimpleFileTypePattern struct {
	labels map[media.FileKind]string
}

// NewSimpleFileTypePattern creates the pattern. Labels missing from the
// given map are filled in from DefaultFileTypeLabels.
func NewSimpleFileTypePattern(labels map[media.FileKind]string) *SimpleFileTypePattern {
	merged := DefaultFileTypeLabels()
	for kind, label := range labels {
		if label != "" {
			merged[kind] = label
		}
	}
	return &SimpleFileTypePattern{labels: merged}
}

func (p *SimpleFileTypePattern) sealed() {}

func (p *SimpleFileTypePattern) evaluate(bag *media.Bag) (string, bool) {
	if label, ok := p.labels[bag.Kind]; ok {
		return label, true
	}
	return p.labels[media.KindOther], true
}
