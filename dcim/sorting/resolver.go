// Package sorting holds the collision policy state machine and the file
// operations that commit routed files to the destination tree.
package sorting

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	radix "github.com/armon/go-radix"
	"github.com/rs/zerolog"

	"dcimsort/dcim/media"
)

// Strategy is the top-level duplicate resolution strategy.
type Strategy string

const (
	StrategyIgnore    Strategy = "ignore"
	StrategyOverwrite Strategy = "overwrite"
	StrategyCompare   Strategy = "compare"
)

// Comparison selects the winner for a Compare strategy.
type Comparison string

const (
	CompareRename      Comparison = "rename"
	CompareFavorTarget Comparison = "favor_target"
	CompareFavorSource Comparison = "favor_source"
)

// DuplicateResolution is the configured collision policy. Immutable for the
// lifetime of a sort run.
type DuplicateResolution struct {
	Strategy Strategy
	Compare  Comparison // only meaningful with StrategyCompare
}

// DefaultDuplicateResolution ignores colliding files, leaving the first
// mapping untouched.
func DefaultDuplicateResolution() DuplicateResolution {
	return DuplicateResolution{Strategy: StrategyIgnore}
}

// ParseDuplicateResolution converts config values into a policy.
func ParseDuplicateResolution(strategy, mode string) (DuplicateResolution, error) {
	switch Strategy(strings.ToLower(strategy)) {
	case StrategyIgnore:
		return DuplicateResolution{Strategy: StrategyIgnore}, nil
	case StrategyOverwrite:
		return DuplicateResolution{Strategy: StrategyOverwrite}, nil
	case StrategyCompare:
		switch Comparison(strings.ToLower(mode)) {
		case CompareRename:
			return DuplicateResolution{Strategy: StrategyCompare, Compare: CompareRename}, nil
		case CompareFavorTarget:
			return DuplicateResolution{Strategy: StrategyCompare, Compare: CompareFavorTarget}, nil
		case CompareFavorSource:
			return DuplicateResolution{Strategy: StrategyCompare, Compare: CompareFavorSource}, nil
		default:
			return DuplicateResolution{}, fmt.Errorf("illegal value for duplicateResolution strategy=%q: %q", strategy, mode)
		}
	default:
		return DuplicateResolution{}, fmt.Errorf("illegal value for duplicateResolution strategy: %q", strategy)
	}
}

// Outcome is the resolver's decision for one candidate path.
type Outcome string

const (
	OutcomePlace   Outcome = "place"
	OutcomeSkip    Outcome = "skip"
	OutcomeReplace Outcome = "replace"
	OutcomeRenamed Outcome = "place_renamed"
)

// Resolution describes what the mover should do with a file.
type Resolution struct {
	Outcome  Outcome
	Path     string         // final relative path, possibly renamed
	Previous media.Identity // prior owner, set for OutcomeReplace
}

// ErrComparisonUndecidable reports that a Compare policy was selected but
// one of the colliding files lacks the size/timestamp signal needed to
// decide. The caller chooses whether to skip the file or abort the run.
var ErrComparisonUndecidable = errors.New("comparison strategy selected but files carry no comparable signal")

// maximum rename candidates probed before giving up on a collision
const maxRenameAttempts = 999

// OccupiedFunc reports whether a relative destination path is taken outside
// the index, typically by a file already on disk in the target tree.
type OccupiedFunc func(rel string) bool

// Resolver owns the per-run destination index: the mapping from resolved
// relative path to the identity of the file granted that path. All checks
// and insertions are serialized, so no two files are concurrently granted
// the same destination. The index lives for one sort run; create a fresh
// resolver per run.
type Resolver struct {
	policy   DuplicateResolution
	occupied OccupiedFunc

	mu    sync.Mutex
	index *radix.Tree
	log   zerolog.Logger
}

// NewResolver creates a resolver with an empty destination index. The
// occupied probe may be nil; when set, rename candidates it reports as taken
// are never granted.
func NewResolver(policy DuplicateResolution, occupied OccupiedFunc, log zerolog.Logger) *Resolver {
	return &Resolver{
		policy:   policy,
		occupied: occupied,
		index:    radix.New(),
		log:      log.With().Str("component", "resolver").Logger(),
	}
}

// Resolve applies the collision policy to a candidate relative path.
// Unoccupied paths are granted directly; occupied paths dispatch on the
// configured strategy.
func (r *Resolver) Resolve(candidate string, id media.Identity) (Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, occupied := r.index.Get(candidate)
	if !occupied {
		r.index.Insert(candidate, id)
		return Resolution{Outcome: OutcomePlace, Path: candidate}, nil
	}
	prev := existing.(media.Identity)

	switch r.policy.Strategy {
	case StrategyIgnore:
		return Resolution{Outcome: OutcomeSkip, Path: candidate}, nil

	case StrategyOverwrite:
		r.index.Insert(candidate, id)
		return Resolution{Outcome: OutcomeReplace, Path: candidate, Previous: prev}, nil

	case StrategyCompare:
		if !prev.Comparable() || !id.Comparable() {
			return Resolution{}, fmt.Errorf("%w: %s vs %s", ErrComparisonUndecidable, prev.Path, id.Path)
		}
		switch r.policy.Compare {
		case CompareFavorTarget:
			return Resolution{Outcome: OutcomeSkip, Path: candidate}, nil
		case CompareFavorSource:
			r.index.Insert(candidate, id)
			return Resolution{Outcome: OutcomeReplace, Path: candidate, Previous: prev}, nil
		default: // CompareRename
			renamed, ok := r.freeName(candidate)
			if !ok {
				r.log.Warn().Str("path", candidate).Msg("no free rename candidate, skipping")
				return Resolution{Outcome: OutcomeSkip, Path: candidate}, nil
			}
			r.index.Insert(renamed, id)
			return Resolution{Outcome: OutcomeRenamed, Path: renamed}, nil
		}

	default:
		return Resolution{}, fmt.Errorf("unknown duplicate resolution strategy: %q", r.policy.Strategy)
	}
}

// freeName probes "path.001" style suffixes until one is free in the index
// and not reported occupied on disk. Callers hold the index lock.
func (r *Resolver) freeName(candidate string) (string, bool) {
	for n := 1; n <= maxRenameAttempts; n++ {
		renamed := fmt.Sprintf("%s.%03d", candidate, n)
		if _, taken := r.index.Get(renamed); taken {
			continue
		}
		if r.occupied != nil && r.occupied(renamed) {
			continue
		}
		return renamed, true
	}
	return "", false
}

// RegisterOccupant grants path to id only if no entry holds it yet. The
// check and the insertion happen under one lock acquisition, so concurrent
// registrations of the same occupant collapse into one. It reports whether
// the entry was created.
func (r *Resolver) RegisterOccupant(path string, id media.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.index.Get(path); taken {
		return false
	}
	r.index.Insert(path, id)
	return true
}

// Owner returns the identity currently granted the given relative path.
func (r *Resolver) Owner(path string) (media.Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.index.Get(path)
	if !ok {
		return media.Identity{}, false
	}
	return v.(media.Identity), true
}

// Len returns the number of granted destination paths.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index.Len()
}

// Reset discards the destination index so no entries leak into a
// subsequent run.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = radix.New()
}
