package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kafei-ai/treeflow/pkg/errors"
	"github.com/kafei-ai/treeflow/pkg/graph"
	"github.com/kafei-ai/treeflow/pkg/pipeline"
)

// subscriberBuffer is the number of undelivered graphs an SSE subscriber may
// lag behind before older ones are dropped.
const subscriberBuffer = 4

// session is one client's interactive tree: an Orchestrator plus the SSE
// subscribers watching it. mu serializes every Orchestrator call.
type session struct {
	id     string
	mu     sync.Mutex
	orch   *pipeline.Orchestrator
	follow atomic.Bool // replaced when the watched source changes

	lastSeen atomic.Int64

	subMu  sync.Mutex
	subs   map[chan []byte]struct{}
	closed bool
}

func newSession(opts pipeline.Options, logger *log.Logger) *session {
	s := &session{
		id:   uuid.NewString(),
		subs: make(map[chan []byte]struct{}),
	}
	s.orch = pipeline.New(opts,
		pipeline.WithLogger(logger.With("session", s.id)),
		pipeline.WithListener(s.publish),
	)
	s.touch(time.Now())
	return s
}

func (s *session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *session) idleSince() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// publish fans a graph out to subscribers. It runs on the goroutine that
// drove the Orchestrator, so it never blocks: a full subscriber loses its
// oldest pending graph.
func (s *session) publish(u pipeline.Update) {
	data, err := json.Marshal(u.Graph)
	if err != nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- data:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- data
		}
	}
}

func (s *session) subscribe() (chan []byte, bool) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed {
		return nil, false
	}
	ch := make(chan []byte, subscriberBuffer)
	s.subs[ch] = struct{}{}
	return ch, true
}

func (s *session) unsubscribe(ch chan []byte) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}

func (s *session) subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

// close ends every subscriber stream.
func (s *session) close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.closed = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

// snapshot is the externally visible session state.
type snapshot struct {
	ID       string      `json:"id"`
	Paths    []string    `json:"paths"`
	Expanded []string    `json:"expanded"`
	Graph    graph.Graph `json:"graph"`
}

// snapshotLocked must be called with s.mu held.
func (s *session) snapshotLocked() snapshot {
	return snapshot{
		ID:       s.id,
		Paths:    s.orch.Paths(),
		Expanded: s.orch.Expansion().Paths(),
		Graph:    s.orch.Graph(),
	}
}

// =============================================================================
// Session Registry
// =============================================================================

type sessions struct {
	mu   sync.RWMutex
	byID map[string]*session
	now  func() time.Time
}

func newSessions() *sessions {
	return &sessions{byID: make(map[string]*session), now: time.Now}
}

func (r *sessions) add(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.id] = s
}

func (r *sessions) get(id string) (*session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	s, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	s.touch(r.now())
	return s, nil
}

func (r *sessions) remove(id string) bool {
	r.mu.Lock()
	s, ok := r.byID[id]
	delete(r.byID, id)
	r.mu.Unlock()
	if ok {
		s.close()
	}
	return ok
}

func (r *sessions) following() []*session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*session
	for _, s := range r.byID {
		if s.follow.Load() {
			out = append(out, s)
		}
	}
	return out
}

func (r *sessions) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// evictIdle drops sessions untouched for ttl that have no live stream.
func (r *sessions) evictIdle(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var evicted []*session
	for id, s := range r.byID {
		if s.idleSince().Before(cutoff) && s.subscribers() == 0 {
			delete(r.byID, id)
			evicted = append(evicted, s)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
		s.close()
	}
	return len(evicted)
}

func (r *sessions) closeAll() {
	r.mu.Lock()
	all := r.byID
	r.byID = make(map[string]*session)
	r.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}
