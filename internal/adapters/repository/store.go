// Package repository stores submitted analyses in an in-memory database.
package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/oplozada/estadistica/internal/domain/model"
	"github.com/oplozada/estadistica/internal/domain/types"
	"github.com/oplozada/estadistica/pkg/metrics"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	tableAnalysis = "analysis"

	indexID          = "id"
	indexStatus      = "status"
	indexFingerprint = "fingerprint"
)

// Store provides read/write access to analyses.
type Store interface {
	// Create inserts a new analysis. Returns ErrExists if the ID is taken.
	Create(ctx context.Context, a model.Analysis) error
	// Update replaces an existing analysis. Returns ErrNotFound if it is unknown.
	Update(ctx context.Context, a model.Analysis) error
	// Get returns the analysis with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (model.Analysis, error)
	// FindByFingerprint returns the most recent analysis with the fingerprint.
	FindByFingerprint(ctx context.Context, fingerprint string) (model.Analysis, error)
	// List returns analyses ordered by creation time. An empty status lists all.
	List(ctx context.Context, status model.Status) ([]model.Analysis, error)
	// Delete removes an analysis. Returns ErrNotFound if it is unknown.
	Delete(ctx context.Context, id string) error
	// Count returns the number of stored analyses.
	Count(ctx context.Context) int
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableAnalysis: {
				Name: tableAnalysis,
				Indexes: map[string]*memdb.IndexSchema{
					indexID: {
						Name:    indexID,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					indexStatus: {
						Name:    indexStatus,
						Indexer: &memdb.StringFieldIndex{Field: "Status"},
					},
					indexFingerprint: {
						Name:         indexFingerprint,
						AllowMissing: true,
						Indexer:      &memdb.StringFieldIndex{Field: "Fingerprint"},
					},
				},
			},
		},
	}
}

// MemStore implements Store on go-memdb. Objects are copied in and out so
// callers never share memory with the database.
type MemStore struct {
	db          *memdb.MemDB
	maxAnalyses int
}

// NewMemStore creates an empty store.
func NewMemStore(opts ...Option) (*MemStore, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("create analysis database: %w", err)
	}
	s := &MemStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateStoredAnalyses(0)
	return s, nil
}

// Create inserts a new analysis.
func (s *MemStore) Create(_ context.Context, a model.Analysis) error { //nolint:gocritic // hugeParam: stored by copy
	tx := s.db.Txn(true)
	defer tx.Abort()

	existing, err := tx.First(tableAnalysis, indexID, a.ID)
	if err != nil {
		return fmt.Errorf("lookup analysis %s: %w", a.ID, err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrExists, a.ID)
	}
	if err := tx.Insert(tableAnalysis, clone(&a)); err != nil {
		return fmt.Errorf("insert analysis %s: %w", a.ID, err)
	}
	if err := s.trim(tx); err != nil {
		return err
	}
	count := s.count(tx)
	tx.Commit()

	metrics.UpdateStoredAnalyses(count)
	return nil
}

// Update replaces an existing analysis.
func (s *MemStore) Update(_ context.Context, a model.Analysis) error { //nolint:gocritic // hugeParam: stored by copy
	tx := s.db.Txn(true)
	defer tx.Abort()

	existing, err := tx.First(tableAnalysis, indexID, a.ID)
	if err != nil {
		return fmt.Errorf("lookup analysis %s: %w", a.ID, err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, a.ID)
	}
	if err := tx.Insert(tableAnalysis, clone(&a)); err != nil {
		return fmt.Errorf("update analysis %s: %w", a.ID, err)
	}
	tx.Commit()
	return nil
}

// Get returns the analysis with the given ID.
func (s *MemStore) Get(_ context.Context, id string) (model.Analysis, error) {
	tx := s.db.Txn(false)
	defer tx.Abort()

	obj, err := tx.First(tableAnalysis, indexID, id)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("lookup analysis %s: %w", id, err)
	}
	if obj == nil {
		return model.Analysis{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *clone(obj.(*model.Analysis)), nil
}

// FindByFingerprint returns the most recently created analysis with the fingerprint.
func (s *MemStore) FindByFingerprint(_ context.Context, fingerprint string) (model.Analysis, error) {
	tx := s.db.Txn(false)
	defer tx.Abort()

	it, err := tx.Get(tableAnalysis, indexFingerprint, fingerprint)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("lookup fingerprint: %w", err)
	}
	var latest *model.Analysis
	for obj := it.Next(); obj != nil; obj = it.Next() {
		a := obj.(*model.Analysis)
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return model.Analysis{}, fmt.Errorf("%w: fingerprint %s", ErrNotFound, fingerprint)
	}
	return *clone(latest), nil
}

// List returns analyses ordered by creation time, oldest first.
func (s *MemStore) List(_ context.Context, status model.Status) ([]model.Analysis, error) {
	tx := s.db.Txn(false)
	defer tx.Abort()

	var (
		it  memdb.ResultIterator
		err error
	)
	if status == "" {
		it, err = tx.Get(tableAnalysis, indexID)
	} else {
		it, err = tx.Get(tableAnalysis, indexStatus, string(status))
	}
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	out := []model.Analysis{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, *clone(obj.(*model.Analysis)))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes an analysis.
func (s *MemStore) Delete(_ context.Context, id string) error {
	tx := s.db.Txn(true)
	defer tx.Abort()

	obj, err := tx.First(tableAnalysis, indexID, id)
	if err != nil {
		return fmt.Errorf("lookup analysis %s: %w", id, err)
	}
	if obj == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := tx.Delete(tableAnalysis, obj); err != nil {
		return fmt.Errorf("delete analysis %s: %w", id, err)
	}
	count := s.count(tx)
	tx.Commit()

	metrics.UpdateStoredAnalyses(count)
	return nil
}

// Count returns the number of stored analyses.
func (s *MemStore) Count(_ context.Context) int {
	tx := s.db.Txn(false)
	defer tx.Abort()
	return s.count(tx)
}

func (s *MemStore) count(tx *memdb.Txn) int {
	it, err := tx.Get(tableAnalysis, indexID)
	if err != nil {
		return 0
	}
	n := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		n++
	}
	return n
}

// trim drops the oldest finished analyses while the store is over capacity.
func (s *MemStore) trim(tx *memdb.Txn) error {
	if s.maxAnalyses == 0 {
		return nil
	}
	for excess := s.count(tx) - s.maxAnalyses; excess > 0; excess-- {
		var oldest *model.Analysis
		for _, status := range []model.Status{model.StatusDone, model.StatusFailed} {
			it, err := tx.Get(tableAnalysis, indexStatus, string(status))
			if err != nil {
				return fmt.Errorf("scan %s analyses: %w", status, err)
			}
			for obj := it.Next(); obj != nil; obj = it.Next() {
				a := obj.(*model.Analysis)
				if oldest == nil || a.CreatedAt.Before(oldest.CreatedAt) {
					oldest = a
				}
			}
		}
		if oldest == nil {
			return nil
		}
		if err := tx.Delete(tableAnalysis, oldest); err != nil {
			return fmt.Errorf("evict analysis %s: %w", oldest.ID, err)
		}
	}
	return nil
}

func clone(a *model.Analysis) *model.Analysis {
	c := *a
	if a.Scores != nil {
		c.Scores = make([]types.ScoreRow, len(a.Scores))
		for i, row := range a.Scores {
			c.Scores[i] = append(types.ScoreRow(nil), row...)
		}
	}
	if a.Result != nil {
		r := *a.Result
		r.RankSums = append([]float64(nil), a.Result.RankSums...)
		c.Result = &r
	}
	return &c
}
