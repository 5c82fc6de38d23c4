package repository

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithMaxAnalyses caps the number of stored analyses. When a new analysis
// would exceed the cap the oldest finished analysis is dropped. Pending
// analyses are never dropped. Zero disables the cap.
func WithMaxAnalyses(n int) Option {
	return func(s *MemStore) {
		if n >= 0 {
			s.maxAnalyses = n
		}
	}
}
