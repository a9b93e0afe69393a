package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: total points DESC, then entry ID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst.

type node struct {
	id    string
	total int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aTotal, aID) appears before (bTotal, bID).
func less(aTotal int, aID string, bTotal int, bID string) bool {
	if aTotal != bTotal {
		return aTotal > bTotal
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, total int, prio uint64) *node {
	if n == nil {
		return &node{id: id, total: total, prio: prio, size: 1}
	}
	if less(total, id, n.total, n.id) {
		n.left = insert(n.left, id, total, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, total, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, total int) *node {
	if n == nil {
		return nil
	}
	switch {
	case total == n.total && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, total)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, total)
		}
	case less(total, id, n.total, n.id):
		n.left = deleteNode(n.left, id, total)
	default:
		n.right = deleteNode(n.right, id, total)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes hold a total strictly greater than total.
func countAbove(n *node, total int) int {
	count := 0
	for n != nil {
		if n.total > total {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit IDs in rank order.
func collectTopN(n *node, limit int, out *[]string) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.id)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore keeps scored entries in memory, ordered in a treap.
type TreapStore struct {
	mu           sync.RWMutex
	root         *node
	byID         map[string]model.ScoredEntry
	capacityHint int
	closed       bool
}

// NewTreapStore constructs an empty in-memory store.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]model.ScoredEntry, s.capacityHint)
	metrics.UpdateStoreRecords(0)
	return s
}

// Put implements Store.Put in O(log n) expected time.
func (s *TreapStore) Put(ctx context.Context, e model.ScoredEntry) error { //nolint:gocritic // hugeParam: value semantics
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkEntry(e); err != nil {
		return err
	}
	start := time.Now()
	defer func() { metrics.RecordStoreWriteLatency(DriverMemory, sinceMillis(start)) }()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if old, ok := s.byID[e.ID]; ok {
		s.root = deleteNode(s.root, old.ID, old.Points.Total)
	}
	s.byID[e.ID] = e
	s.root = insert(s.root, e.ID, e.Points.Total, rand.Uint64())
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStoreRecords(count)
	return nil
}

// Get returns the entry and its rank in O(log n) expected time.
func (s *TreapStore) Get(ctx context.Context, id string) (Ranked, error) {
	if err := ctx.Err(); err != nil {
		return Ranked{}, err
	}
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(DriverMemory, sinceMillis(start)) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return Ranked{}, ErrNotFound
	}
	return Ranked{Rank: countAbove(s.root, e.Points.Total) + 1, Entry: e}, nil
}

// TopN returns the best n entries.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Ranked, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(DriverMemory, sinceMillis(start)) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &ids)

	out := make([]Ranked, len(ids))
	for i, id := range ids {
		out[i] = Ranked{Entry: s.byID[id]}
	}
	assignRanksWithTies(out, 1)
	return out, nil
}

// Count returns the number of stored entries.
func (s *TreapStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

// Close marks the store closed; later writes fail with ErrClosed.
func (s *TreapStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func sinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
