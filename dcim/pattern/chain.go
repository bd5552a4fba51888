package pattern

import (
	"errors"
	"fmt"
	"path"
	"sort"

	"dcimsort/dcim/media"
)

// ErrDuplicateIndex reports two segments sharing an index within one chain.
var ErrDuplicateIndex = errors.New("duplicate segment index")

// ChainTag distinguishes the two pipelines a configuration defines.
type ChainTag string

const (
	ChainSupported ChainTag = "supported"
	ChainFallback  ChainTag = "fallback"
)

// IndexedSegment pairs a segment with its evaluation order within a chain.
type IndexedSegment struct {
	Index   int
	Segment Segment
}

// Chain is an ordered sequence of segments forming one path-generation
// pipeline. It is immutable after construction and safe for concurrent use.
type Chain struct {
	tag      ChainTag
	segments []IndexedSegment
}

// NewChain creates a chain from indexed segments. Indexes must be unique
// within the chain; gaps are permitted. Segments are evaluated in ascending
// index order.
func NewChain(tag ChainTag, segments []IndexedSegment) (*Chain, error) {
	seen := make(map[int]struct{}, len(segments))
	for _, s := range segments {
		if _, dup := seen[s.Index]; dup {
			return nil, fmt.Errorf("%w: index %d in %s chain", ErrDuplicateIndex, s.Index, tag)
		}
		seen[s.Index] = struct{}{}
	}

	ordered := make([]IndexedSegment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	return &Chain{tag: tag, segments: ordered}, nil
}

// Tag returns the chain's pipeline tag.
func (c *Chain) Tag() ChainTag {
	return c.tag
}

// Len returns the number of segments in the chain.
func (c *Chain) Len() int {
	return len(c.segments)
}

// Compose evaluates every segment in order and joins the emitted components
// into one relative directory path. Inapplicable segments append nothing,
// not even an empty level. The file's own name is not part of the result.
func (c *Chain) Compose(bag *media.Bag) string {
	components := make([]string, 0, len(c.segments))
	for _, s := range c.segments {
		if component, ok := Evaluate(s.Segment, bag); ok {
			components = append(components, component)
		}
	}
	return path.Join(components...)
}

// Router selects the pipeline for each file and yields its relative
// destination path. Construct once from configuration; read-only afterwards.
type Router struct {
	supported *Chain
	fallback  *Chain
}

// NewRouter creates a router over the two configured chains.
func NewRouter(supported, fallback *Chain) *Router {
	return &Router{supported: supported, fallback: fallback}
}

// Route composes the relative destination directory for the file described
// by bag. Files the extractor reported as metadata-capable go through the
// supported chain, everything else through the fallback chain. Routing is
// deterministic: the same bag always yields the same path.
func (r *Router) Route(bag *media.Bag) string {
	if bag.Supported {
		return r.supported.Compose(bag)
	}
	return r.fallback.Compose(bag)
}
