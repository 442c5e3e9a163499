// Package dictionary validates dictionary-backed codes such as complaint
// category, source channel, severity level and feedback ratings.
//
// The valid sets are configuration data: a Source loads a Snapshot and the
// Registry answers lookups against the latest one.
package dictionary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
	"go.uber.org/zap"
)

// Kind names one dictionary
type Kind string

const (
	KindCategory Kind = "complaint_type"
	KindSource   Kind = "complaint_source"
	KindLevel    Kind = "complaint_level"
	KindRating   Kind = "feedback_rating"
)

// Valid reports whether k is one of the known dictionaries
func (k Kind) Valid() bool {
	switch k {
	case KindCategory, KindSource, KindLevel, KindRating:
		return true
	}
	return false
}

// Entry is one code in a dictionary
type Entry struct {
	Code  string   `json:"code" yaml:"code"`
	Label string   `json:"label" yaml:"label"`
	Score *float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

// Snapshot maps each kind to its entries
type Snapshot map[Kind][]Entry

// Source loads a dictionary snapshot
type Source interface {
	Load(ctx context.Context) (Snapshot, error)
}

// Registry holds the current snapshot and answers lookups
type Registry struct {
	mu     sync.RWMutex
	source Source
	index  map[Kind]map[string]Entry
	logger *zap.SugaredLogger
}

// NewRegistry creates a registry backed by source. Call Reload before use.
func NewRegistry(source Source, logger *zap.SugaredLogger) *Registry {
	return &Registry{
		source: source,
		index:  make(map[Kind]map[string]Entry),
		logger: logger,
	}
}

// NewStaticRegistry creates a registry preloaded with snap
func NewStaticRegistry(snap Snapshot) *Registry {
	r := &Registry{logger: zap.NewNop().Sugar()}
	r.index = buildIndex(snap)
	return r
}

// Reload replaces the snapshot with a fresh one from the source
func (r *Registry) Reload(ctx context.Context) error {
	if r.source == nil {
		return nil
	}
	snap, err := r.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}

	index := buildIndex(snap)
	r.mu.Lock()
	r.index = index
	r.mu.Unlock()

	r.logger.Infow("Dictionary loaded",
		"category", len(index[KindCategory]),
		"source", len(index[KindSource]),
		"level", len(index[KindLevel]),
		"rating", len(index[KindRating]),
	)
	return nil
}

// Run reloads the registry every interval until ctx is done. A failed reload
// keeps the previous snapshot.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.source == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Dictionary reloader stopped")
			return
		case <-ticker.C:
			if err := r.Reload(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warnw("Dictionary reload failed, keeping previous snapshot", "error", err)
			}
		}
	}
}

// Lookup returns the entry for code in kind
func (r *Registry) Lookup(kind Kind, code string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.index[kind][code]
	return e, ok
}

// Validate returns a ValidationError on field unless code belongs to kind
func (r *Registry) Validate(kind Kind, field, code string) error {
	if strings.TrimSpace(code) == "" {
		return apperrors.Required(field)
	}
	if _, ok := r.Lookup(kind, code); !ok {
		return apperrors.NewValidationError(field, fmt.Sprintf("unknown %s code %q", kind, code))
	}
	return nil
}

// Score returns the numeric score attached to a code
func (r *Registry) Score(kind Kind, field, code string) (float64, error) {
	if err := r.Validate(kind, field, code); err != nil {
		return 0, err
	}
	e, _ := r.Lookup(kind, code)
	if e.Score == nil {
		return 0, apperrors.NewValidationError(field, fmt.Sprintf("%s code %q carries no score", kind, code))
	}
	return *e.Score, nil
}

// Entries lists the codes of kind, sorted by code
func (r *Registry) Entries(kind Kind) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.index[kind]))
	for _, e := range r.index[kind] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func buildIndex(snap Snapshot) map[Kind]map[string]Entry {
	index := make(map[Kind]map[string]Entry, len(snap))
	for kind, entries := range snap {
		codes := make(map[string]Entry, len(entries))
		for _, e := range entries {
			codes[e.Code] = e
		}
		index[kind] = codes
	}
	return index
}
