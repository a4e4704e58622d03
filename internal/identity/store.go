// Package identity implements the in-memory identity-matching engine: a store
// of (label, embedding) pairs and the nearest-neighbor search that turns a
// face embedding into an identity decision.
//
// The store never talks to the embedding model. It trusts its caller to feed
// it vectors produced by a single, consistent model, and only enforces the
// invariants it owns: unique labels, fixed dimension, deterministic matching.
package identity

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDim is the embedding dimension of dlib-style face descriptors.
const DefaultDim = 128

// DefaultThreshold is the maximum Euclidean distance at which a nearest
// neighbor is accepted as a genuine match. 0.6 is the empirically calibrated
// separation point for 128-dim dlib descriptors; other embedding models need
// their own calibration (see config.Calibration).
const DefaultThreshold = 0.6

// Record is one registered identity. Records are immutable once stored;
// the store hands out copies, never handles into its internal slices.
type Record struct {
	UID       string
	Label     string
	Embedding []float32
	CreatedAt time.Time
}

// Match is the result of an Identify call. When Matched is false the zero
// values of the remaining fields are meaningless.
type Match struct {
	Matched    bool
	UID        string
	Label      string
	Distance   float64
	Confidence float64
}

// Store holds all registered identities behind a single RWMutex. Register
// takes the write lock around the duplicate check and the append as one
// atomic unit (first committer wins a label race); Identify holds the read
// lock for the whole scan so a registration is never observed half-applied.
//
// No operation performs I/O; everything completes in CPU time bounded by
// N*D, so there is no context or cancellation inside the store.
type Store struct {
	mu       sync.RWMutex
	dim      int
	records  []Record
	byLabel  map[string]int
	searcher Searcher
}

// Option configures a Store.
type Option func(*Store)

// WithSearcher replaces the default linear-scan nearest-neighbor strategy.
func WithSearcher(s Searcher) Option {
	return func(st *Store) { st.searcher = s }
}

// WithDistanceFunc replaces the distance metric of the default linear scan.
// Ignored when WithSearcher is also given.
func WithDistanceFunc(f DistanceFunc) Option {
	return func(st *Store) { st.searcher = linearSearcher{distance: f} }
}

// NewStore creates an empty store for embeddings of the given dimension.
// A dim of zero or less falls back to DefaultDim.
func NewStore(dim int, opts ...Option) *Store {
	if dim <= 0 {
		dim = DefaultDim
	}
	s := &Store{
		dim:      dim,
		byLabel:  make(map[string]int),
		searcher: linearSearcher{distance: EuclideanDistance},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dim returns the embedding dimension this store was created with.
func (s *Store) Dim() int {
	return s.dim
}

// Register stores a new identity and returns the total record count. The
// label is trimmed of surrounding whitespace and must be unique
// (case-sensitive exact match). No vector math happens at registration; all
// cost is deferred to query time.
// validateEmbedding rejects vectors of the wrong dimension and vectors with
// NaN or infinite components. A NaN component makes every distance NaN, which
// compares false against any threshold and would turn garbage input into a
// confident match.
func (s *Store) validateEmbedding(embedding []float32) error {
	if len(embedding) != s.dim {
		return invalidInputf("embedding has %d dimensions, store expects %d", len(embedding), s.dim)
	}
	for i, v := range embedding {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return invalidInputf("embedding component %d is not finite", i)
		}
	}
	return nil
}

func (s *Store) Register(label string, embedding []float32) (int, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, invalidInputf("label must not be empty")
	}
	if err := s.validateEmbedding(embedding); err != nil {
		return 0, err
	}

	// The store owns its vectors; copy so callers can't mutate them later.
	vec := make([]float32, s.dim)
	copy(vec, embedding)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byLabel[label]; exists {
		return 0, &DuplicateError{Label: label}
	}

	s.records = append(s.records, Record{
		UID:       uuid.NewString(),
		Label:     label,
		Embedding: vec,
		CreatedAt: time.Now().UTC(),
	})
	s.byLabel[label] = len(s.records) - 1

	return len(s.records), nil
}

// Identify scans all registered identities for the nearest neighbor of the
// query embedding and accepts it when its distance is strictly below the
// threshold. An empty store and a best distance at or above the threshold
// both yield a no-match result, not an error: a store with only poor matches
// must report "nobody", never "best available".
//
// Confidence is 1 - distance/threshold clamped to [0, 1]: a heuristic
// normalization of how far below the threshold the match fell, not a
// calibrated probability.
func (s *Store) Identify(embedding []float32, threshold float64) (Match, error) {
	if err := s.validateEmbedding(embedding); err != nil {
		return Match{}, err
	}
	if threshold <= 0 {
		return Match{}, invalidInputf("threshold must be positive, got %g", threshold)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, dist, ok := s.searcher.Nearest(embedding, s.records)
	if !ok || dist >= threshold {
		return Match{}, nil
	}

	confidence := 1 - dist/threshold
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	rec := s.records[idx]
	return Match{
		Matched:    true,
		UID:        rec.UID,
		Label:      rec.Label,
		Distance:   dist,
		Confidence: confidence,
	}, nil
}

// Get returns a copy of the record registered under the given label.
func (s *Store) Get(label string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.byLabel[strings.TrimSpace(label)]
	if !exists {
		return Record{}, false
	}
	rec := s.records[idx]
	vec := make([]float32, len(rec.Embedding))
	copy(vec, rec.Embedding)
	rec.Embedding = vec
	return rec, true
}

// Count returns the number of registered identities.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Remove deletes the identity with the given label (exact match) and reports
// whether it existed. Later records shift down, preserving relative
// insertion order for tie-breaking.
func (s *Store) Remove(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.byLabel[strings.TrimSpace(label)]
	if !exists {
		return false
	}

	removed := s.records[idx].Label
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	delete(s.byLabel, removed)
	for i := idx; i < len(s.records); i++ {
		s.byLabel[s.records[i].Label] = i
	}
	return true
}

// Load bulk-inserts previously persisted records, preserving their UIDs and
// creation times. Used to rebuild the in-memory state from durable storage at
// startup; the same invariants hold as for Register.
func (s *Store) Load(records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		label := strings.TrimSpace(rec.Label)
		if label == "" {
			return invalidInputf("persisted record %q has an empty label", rec.UID)
		}
		if err := s.validateEmbedding(rec.Embedding); err != nil {
			return fmt.Errorf("persisted record %q: %w", label, err)
		}
		if _, exists := s.byLabel[label]; exists {
			return &DuplicateError{Label: label}
		}

		vec := make([]float32, s.dim)
		copy(vec, rec.Embedding)
		uid := rec.UID
		if uid == "" {
			uid = uuid.NewString()
		}
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		s.records = append(s.records, Record{
			UID:       uid,
			Label:     label,
			Embedding: vec,
			CreatedAt: createdAt,
		})
		s.byLabel[label] = len(s.records) - 1
	}
	return nil
}

// Records returns a copy of all registered identities in insertion order.
// Embedding slices are copied as well, so callers can't reach back into the
// store.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec
		out[i].Embedding = make([]float32, len(rec.Embedding))
		copy(out[i].Embedding, rec.Embedding)
	}
	return out
}
