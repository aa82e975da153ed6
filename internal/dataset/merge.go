package dataset

// Row is a keyed record whose columns can be filled one fetch at a time.
type Row[R any] interface {
	Key() string
	IsUnset(column string) bool
	// Fill returns the receiver with its missing columns taken from fetched.
	Fill(fetched R) R
}

// state is the key-ordered content of a dataset.
type state[R Row[R]] struct {
	order []string
	rows  map[string]R
}

func newState[R Row[R]]() state[R] {
	return state[R]{rows: make(map[string]R)}
}

// upsert folds a fetched batch into s. Existing keys keep their position and
// their completed columns; new keys are appended in batch order; a key seen
// twice in the same batch keeps its first row. It returns the number of keys
// inserted.
func (s *state[R]) upsert(batch []R) int {
	inserted := 0
	seen := make(map[string]struct{}, len(batch))
	for _, row := range batch {
		key := row.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if current, ok := s.rows[key]; ok {
			s.rows[key] = current.Fill(row)
			continue
		}
		s.rows[key] = row
		s.order = append(s.order, key)
		inserted++
	}
	return inserted
}

func (s state[R]) list() []R {
	out := make([]R, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.rows[key])
	}
	return out
}

// Merge joins a fetched batch onto existing rows without touching existing.
// See upsert for the precedence rules.
func Merge[R Row[R]](existing, fetched []R) []R {
	s := newState[R]()
	s.upsert(existing)
	s.upsert(fetched)
	return s.list()
}
