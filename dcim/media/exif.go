package media

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	exiflib "github.com/rwcarlsen/goexif/exif"
)

// Extractor reads embedded metadata from media files and fills bags. It is
// the only component that touches file content during metadata collection.
type Extractor struct {
	log zerolog.Logger
}

// NewExtractor creates a metadata extractor.
func NewExtractor(log zerolog.Logger) *Extractor {
	return &Extractor{log: log.With().Str("component", "extractor").Logger()}
}

// exif-capable formats routed through the supported chain
func isSupportedFormat(ext string) bool {
	switch strings.ToLower(ext) {
	case "jpg", "jpeg", "png", "heic", "tiff":
		return true
	default:
		return false
	}
}

// Enrich populates bag with embedded metadata from the file at path. A file
// of a supported format stays supported even when it carries no usable EXIF
// block; the patterns then fall back to their configured defaults.
func (e *Extractor) Enrich(path string, bag *Bag) {
	bag.Supported = isSupportedFormat(bag.Extension)
	if !bag.Supported {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("cannot open file for metadata extraction")
		return
	}
	defer f.Close()

	x, err := exiflib.Decode(f)
	if err != nil {
		e.log.Debug().Err(err).Str("path", path).Msg("no EXIF metadata")
		return
	}

	if tag, err := x.Get(exiflib.Make); err == nil {
		if v, err := tag.StringVal(); err == nil {
			bag.SetAttr(AttrMake, strings.TrimSpace(v))
		}
	}
	if tag, err := x.Get(exiflib.Model); err == nil {
		if v, err := tag.StringVal(); err == nil {
			bag.SetAttr(AttrModel, strings.TrimSpace(v))
		}
	}
	if ts, err := x.DateTime(); err == nil {
		bag.SetTimestamp(ts)
	}
	if tag, err := x.Get(exiflib.UserComment); err == nil {
		if v, err := tag.StringVal(); err == nil {
			if strings.Contains(strings.ToLower(v), "screenshot") {
				bag.IsScreenshot = true
			}
		}
	}
}
