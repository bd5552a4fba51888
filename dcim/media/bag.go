package media

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileKind is the coarse classification of a file derived from its extension.
type FileKind string

const (
	KindVideo    FileKind = "video"
	KindPicture  FileKind = "picture"
	KindAudio    FileKind = "audio"
	KindText     FileKind = "text"
	KindDocument FileKind = "document"
	KindOther    FileKind = "other"
)

// KindForExtension maps a file extension (without dot, any case) to a FileKind.
func KindForExtension(ext string) FileKind {
	switch strings.ToLower(ext) {
	case "mov", "mp4", "mpeg", "mpg", "ts", "mkv", "avi":
		return KindVideo
	case "jpg", "jpeg", "png", "heic", "gif", "bmp", "tiff":
		return KindPicture
	case "mp3", "wav", "flac", "ogg", "wma", "m4a":
		return KindAudio
	case "txt", "ini", "json":
		return KindText
	case "pdf", "doc", "docx", "rtf", "odt":
		return KindDocument
	default:
		return KindOther
	}
}

// Unit identifies one timestamp component carried in a bag.
type Unit string

const (
	UnitYear   Unit = "Year"
	UnitMonth  Unit = "Month"
	UnitDay    Unit = "Day"
	UnitHour   Unit = "Hour"
	UnitMinute Unit = "Minute"
	UnitSecond Unit = "Second"
)

// Units lists all timestamp units in their natural order.
var Units = []Unit{UnitYear, UnitMonth, UnitDay, UnitHour, UnitMinute, UnitSecond}

// ParseUnit converts a config string ("year", "Month", ...) to a Unit.
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(s) {
	case "year":
		return UnitYear, true
	case "month":
		return UnitMonth, true
	case "day":
		return UnitDay, true
	case "hour":
		return UnitHour, true
	case "minute":
		return UnitMinute, true
	case "second":
		return UnitSecond, true
	default:
		return "", false
	}
}

// Well-known attribute names stored in a bag.
const (
	AttrMake  = "Make"
	AttrModel = "Model"
)

// Bag is the read-only per-file attribute view consumed by segment patterns.
// Absence of an attribute is a first-class state, not an error. The bag is
// populated once by the metadata extractor and never mutated afterwards.
type Bag struct {
	Filename     string
	Extension    string // without leading dot
	Kind         FileKind
	Supported    bool // extractor recognized an embedded-metadata capable format
	IsScreenshot bool // set by the extractor from metadata hints
	FSTimestamp  time.Time // filesystem mtime; zero value means absent

	attrs map[string]string
}

// NewBag creates a bag for the given filename, deriving extension and kind.
func NewBag(filename string) *Bag {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	return &Bag{
		Filename:  filename,
		Extension: ext,
		Kind:      KindForExtension(ext),
		attrs:     make(map[string]string),
	}
}

// SetAttr records an attribute value. Empty values are treated as absent.
func (b *Bag) SetAttr(name, value string) {
	if value == "" {
		delete(b.attrs, name)
		return
	}
	b.attrs[name] = value
}

// Attr returns the named attribute and whether it is present.
func (b *Bag) Attr(name string) (string, bool) {
	v, ok := b.attrs[name]
	return v, ok
}

// SetTimestamp records all timestamp units from t.
func (b *Bag) SetTimestamp(t time.Time) {
	b.SetAttr(string(UnitYear), strconv.Itoa(t.Year()))
	b.SetAttr(string(UnitMonth), strconv.Itoa(int(t.Month())))
	b.SetAttr(string(UnitDay), strconv.Itoa(t.Day()))
	b.SetAttr(string(UnitHour), strconv.Itoa(t.Hour()))
	b.SetAttr(string(UnitMinute), strconv.Itoa(t.Minute()))
	b.SetAttr(string(UnitSecond), strconv.Itoa(t.Second()))
}

// Unit returns the numeric value of a timestamp unit. Values that are not
// numeric or fall outside the unit's valid range read as absent.
func (b *Bag) Unit(u Unit) (int, bool) {
	raw, ok := b.attrs[string(u)]
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	if !unitInRange(u, v) {
		return 0, false
	}
	return v, true
}

// HasAnyUnit reports whether at least one timestamp unit is present.
func (b *Bag) HasAnyUnit() bool {
	for _, u := range Units {
		if _, ok := b.Unit(u); ok {
			return true
		}
	}
	return false
}

func unitInRange(u Unit, v int) bool {
	switch u {
	case UnitYear:
		return v >= 0 && v <= 9999
	case UnitMonth:
		return v >= 1 && v <= 12
	case UnitDay:
		return v >= 1 && v <= 31
	case UnitHour:
		return v >= 0 && v <= 23
	case UnitMinute, UnitSecond:
		return v >= 0 && v <= 59
	default:
		return false
	}
}

// Identity names one concrete source file for the duration of a sort run.
// Size and ModTime double as the comparable signal for Compare policies.
type Identity struct {
	ID      uuid.UUID
	Path    string
	Size    int64
	ModTime time.Time
}

// NewIdentity creates an identity for a source file.
func NewIdentity(path string, size int64, modTime time.Time) Identity {
	return Identity{
		ID:      uuid.New(),
		Path:    path,
		Size:    size,
		ModTime: modTime,
	}
}

// Comparable reports whether the identity carries enough signal for a
// Compare duplicate-resolution policy to decide.
func (id Identity) Comparable() bool {
	return id.Size > 0 || !id.ModTime.IsZero()
}

// Info couples a file identity with its extracted metadata bag.
type Info struct {
	Identity
	Bag *Bag
}
