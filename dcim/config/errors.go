package config

import "errors"

// Configuration errors are fatal at startup: the run fails before any file
// is routed.
var (
	ErrUnknownSegmentType = errors.New("unknown segment type")
	ErrInvalidRegex       = errors.New("filename pattern is not a valid regex")
	ErrIllegalValue       = errors.New("illegal configuration value")
)
