package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithCapacityHint pre-sizes the ID index.
func WithCapacityHint(n int) Option {
	return func(s *TreapStore) {
		if n > 0 {
			s.capacityHint = n
		}
	}
}
