package service

import (
	"time"

	"github.com/oplozada/estadistica/internal/domain/ranking"
	"github.com/oplozada/estadistica/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of evaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending analyses.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the fingerprint index.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxAnalyses caps the number of stored analyses. Zero keeps all of them.
func WithMaxAnalyses(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxAnalyses = n
		}
	}
}

// WithAlpha sets the significance level used when a request passes zero.
func WithAlpha(alpha float64) Option {
	return func(s *Service) {
		if alpha > 0 && alpha < 1 {
			s.alpha = alpha
		}
	}
}

// WithRankOrder sets the ranking direction.
func WithRankOrder(order ranking.Order) Option {
	return func(s *Service) {
		s.order = order
	}
}

// WithLimits caps the number of raters and objects accepted per matrix.
// Non-positive values leave the corresponding limit unchanged.
func WithLimits(maxRaters, maxObjects int) Option {
	return func(s *Service) {
		if maxRaters > 0 {
			s.maxRaters = maxRaters
		}
		if maxObjects > 0 {
			s.maxObjects = maxObjects
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for analysis timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
