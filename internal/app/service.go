// Package service wires the ranking and concordance packages to the analysis
// store, the fingerprint index and the worker pool, and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/oplozada/estadistica/internal/adapters/mq/queue"
	"github.com/oplozada/estadistica/internal/adapters/mq/worker"
	"github.com/oplozada/estadistica/internal/adapters/repository"
	"github.com/oplozada/estadistica/internal/domain/concordance"
	"github.com/oplozada/estadistica/internal/domain/dedupe"
	"github.com/oplozada/estadistica/internal/domain/model"
	"github.com/oplozada/estadistica/internal/domain/ranking"
	"github.com/oplozada/estadistica/internal/domain/types"
	"github.com/oplozada/estadistica/pkg/logger"
	"github.com/oplozada/estadistica/pkg/metrics"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

const stopTimeout = 30 * time.Second

// Service evaluates concordance synchronously and runs submitted analyses
// through the queue and worker pool.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   queue.Queue
	pool    *worker.Pool
	cancel  context.CancelFunc

	workerCount int
	queueSize   int
	dedupeSize  int
	maxAnalyses int
	maxRaters   int
	maxObjects  int
	alpha       float64
	order       ranking.Order
	now         func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1_000,
		dedupeSize:  10_000,
		maxAnalyses: 10_000,
		maxRaters:   1_000,
		maxObjects:  1_000,
		alpha:       concordance.DefaultAlpha,
		order:       ranking.Descending,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the store, fingerprint index and queue, and launches the
// workers. Workers outlive ctx; Stop ends them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	store, err := repository.NewMemStore(repository.WithMaxAnalyses(s.maxAnalyses))
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	s.store = store
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.store)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "concordance service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Float64("alpha", s.alpha),
		logger.String("rankOrder", s.order.String()),
	)
	return nil
}

// Stop closes the queue, waits for queued analyses to finish and stops the
// workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "concordance service stopped")
}

// Evaluate computes Kendall's W for the score matrix. A zero alpha selects the
// configured default.
func (s *Service) Evaluate(ctx context.Context, scores []types.ScoreRow, alpha float64) (types.Result, error) {
	if alpha == 0 {
		alpha = s.alpha
	}
	if err := s.checkLimits(scores); err != nil {
		metrics.RecordInputError("limits")
		return types.Result{}, err
	}

	start := time.Now()
	res, err := concordance.EvaluateScores(scores, alpha, ranking.WithOrder(s.order))
	if err != nil {
		metrics.RecordInputError("evaluate")
		return types.Result{}, err
	}
	metrics.RecordEvaluation(res.W, res.Concordant, float64(time.Since(start).Microseconds())/1000)

	s.log().Debug(ctx, "evaluated concordance",
		logger.Int("raters", res.Raters),
		logger.Int("objects", res.N),
		logger.Float64("w", res.W),
		logger.Bool("concordant", res.Concordant),
	)
	return res, nil
}

// Adjust ranks one rater's scores and appends the tie-correction term.
func (s *Service) Adjust(_ context.Context, row types.ScoreRow) (types.AdjustedRow, error) {
	if len(row) > s.maxObjects {
		metrics.RecordInputError("limits")
		return nil, fmt.Errorf("%w: %d objects, at most %d", ErrLimit, len(row), s.maxObjects)
	}
	adjusted, err := ranking.Adjust(row, ranking.WithOrder(s.order))
	if err != nil {
		metrics.RecordInputError("adjust")
		return nil, err
	}
	return adjusted, nil
}

// Submit stores the matrix as a pending analysis and queues it. A matrix
// already submitted with the same alpha returns the earlier analysis with
// duplicate set.
func (s *Service) Submit(ctx context.Context, scores []types.ScoreRow, alpha float64) (model.Analysis, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.Analysis{}, false, ErrNotStarted
	}
	if alpha == 0 {
		alpha = s.alpha
	}
	if err := s.checkLimits(scores); err != nil {
		metrics.RecordInputError("limits")
		return model.Analysis{}, false, err
	}

	fp := s.fingerprint(scores, alpha)
	id := uuid.NewString()

	if owner, seen := s.deduper.SeenAndRecord(ctx, fp, id); seen {
		existing, err := s.store.Get(ctx, owner)
		if err == nil {
			metrics.RecordAnalysisDuplicate()
			return existing, true, nil
		}
		// The earlier analysis was dropped from the store; start over.
		s.deduper.Unrecord(ctx, fp)
		if _, seen := s.deduper.SeenAndRecord(ctx, fp, id); seen {
			return model.Analysis{}, false, fmt.Errorf("submit: fingerprint %s: %w", fp, err)
		}
	}

	now := s.now()
	a := model.Analysis{
		ID:          id,
		Fingerprint: fp,
		Status:      model.StatusPending,
		Alpha:       alpha,
		Scores:      copyScores(scores),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, a); err != nil {
		s.deduper.Unrecord(ctx, fp)
		return model.Analysis{}, false, fmt.Errorf("submit: %w", err)
	}

	if err := s.queue.Enqueue(ctx, a); err != nil {
		s.deduper.Unrecord(ctx, fp)
		if derr := s.store.Delete(ctx, id); derr != nil {
			s.log().Error(ctx, "rollback of rejected analysis failed", logger.String("id", id), logger.Error(derr))
		}
		if errors.Is(err, queue.ErrFull) {
			return model.Analysis{}, false, fmt.Errorf("%w: %d pending", ErrBackpressure, s.queue.Len())
		}
		return model.Analysis{}, false, fmt.Errorf("submit: %w", err)
	}

	metrics.RecordAnalysisSubmitted()
	s.log().Debug(ctx, "analysis queued", logger.String("id", id), logger.String("fingerprint", fp))
	return a, false, nil
}

// Analysis returns a submitted analysis by ID.
func (s *Service) Analysis(ctx context.Context, id string) (model.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.store == nil {
		return model.Analysis{}, ErrNotStarted
	}
	return s.store.Get(ctx, id)
}

// Analyses lists submitted analyses, oldest first. An empty status lists all.
func (s *Service) Analyses(ctx context.Context, status model.Status) ([]model.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store.List(ctx, status)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"alpha":       s.alpha,
		"rankOrder":   s.order.String(),
		"maxRaters":   s.maxRaters,
		"maxObjects":  s.maxObjects,
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.queue.Len()
		stored := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["activeWorkers"] = s.pool.Active()
		stats["storedAnalyses"] = stored
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredAnalyses(stored)
	}
	return stats
}

func (s *Service) checkLimits(scores []types.ScoreRow) error {
	if len(scores) > s.maxRaters {
		return fmt.Errorf("%w: %d raters, at most %d", ErrLimit, len(scores), s.maxRaters)
	}
	for i, row := range scores {
		if len(row) > s.maxObjects {
			return fmt.Errorf("%w: row %d has %d objects, at most %d", ErrLimit, i+1, len(row), s.maxObjects)
		}
	}
	return nil
}

// fingerprint hashes alpha, the ranking direction and every score so equal
// submissions map to the same analysis.
func (s *Service) fingerprint(scores []types.ScoreRow, alpha float64) string {
	h := xxhash.New()
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = h.Write(buf[:])
	}

	write(math.Float64bits(alpha))
	write(uint64(s.order))
	write(uint64(len(scores)))
	for _, row := range scores {
		write(uint64(len(row)))
		for _, v := range row {
			write(math.Float64bits(v))
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get().Named("service")
}

func copyScores(scores []types.ScoreRow) []types.ScoreRow {
	out := make([]types.ScoreRow, len(scores))
	for i, row := range scores {
		out[i] = append(types.ScoreRow(nil), row...)
	}
	return out
}
