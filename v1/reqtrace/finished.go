package reqtrace

import "github.com/eapache/queue"

// finishedSet remembers the most recently finished request ids. The oldest id
// is forgotten once limit is exceeded. Not safe for concurrent use.
type finishedSet struct {
	limit int
	order *queue.Queue
	ids   map[RequestID]struct{}
}

func newFinishedSet(limit int) *finishedSet {
	return &finishedSet{
		limit: limit,
		order: queue.New(),
		ids:   make(map[RequestID]struct{}),
	}
}

func (s *finishedSet) add(id RequestID) {
	if s.limit <= 0 {
		return
	}
	if _, ok := s.ids[id]; ok {
		return
	}

	s.ids[id] = struct{}{}
	s.order.Add(id)

	for s.order.Length() > s.limit {
		oldest := s.order.Remove().(RequestID)
		delete(s.ids, oldest)
	}
}

func (s *finishedSet) contains(id RequestID) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *finishedSet) len() int {
	return len(s.ids)
}
