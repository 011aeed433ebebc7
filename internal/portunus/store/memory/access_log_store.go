package memory

import (
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/store"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

// AccessLogStore is an in-memory append-only log of access decisions.
type AccessLogStore struct {
	mu      sync.Mutex
	entries []types.AccessLogEntry
}

func NewAccessLogStore() *AccessLogStore {
	return &AccessLogStore{}
}

func (s *AccessLogStore) Append(_ context.Context, e types.AccessLogEntry) (types.AccessLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.Seq = int64(len(s.entries)) + 1
	s.entries = append(s.entries, e)
	return e, nil
}

// Query snapshots the log each time the sequence is ranged over, so a
// returned sequence can be iterated again and sees later appends.
func (s *AccessLogStore) Query(ctx context.Context, f store.LogFilter) iter.Seq2[types.AccessLogEntry, error] {
	return func(yield func(types.AccessLogEntry, error) bool) {
		s.mu.Lock()
		matched := make([]types.AccessLogEntry, 0, len(s.entries))
		for _, e := range s.entries {
			if f.Match(e) {
				matched = append(matched, e)
			}
		}
		s.mu.Unlock()

		// Stable sort keeps insertion order among equal timestamps.
		slices.SortStableFunc(matched, func(a, b types.AccessLogEntry) int {
			return b.Timestamp.Compare(a.Timestamp)
		})

		for i, e := range matched {
			if f.Limit > 0 && i >= f.Limit {
				return
			}
			if err := ctx.Err(); err != nil {
				yield(types.AccessLogEntry{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Entries returns a copy of all entries in append order.  Test-only helper.
func (s *AccessLogStore) Entries() []types.AccessLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.AccessLogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
