// Package msgsync keeps a room's message list up to date by polling and
// emits one notification per newly arrived message from another user.
package msgsync

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"classchat/internal/metrics"
	"classchat/internal/models"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = 1500 * time.Millisecond

// Handlers receive the synchronizer's output. Nil handlers are skipped.
//
// Handlers run on the polling goroutine while the session is locked, so
// they must not call Start, Stop or Refresh synchronously.
type Handlers struct {
	// Notify is called once per new message from someone else.
	Notify func(models.Message)
	// OnMessagesUpdated is called after each successful poll with the
	// full page, oldest-first.
	OnMessagesUpdated func([]models.Message)
	// OnError is called once per failed poll with a *FetchError.
	OnError func(error)
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithInterval sets the polling interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// Synchronizer polls one room at a time.
type Synchronizer struct {
	fetcher  Fetcher
	handlers Handlers
	interval time.Duration
	logger   zerolog.Logger

	mu   sync.Mutex
	sess *session
}

// session is the lifetime of one Start call.
type session struct {
	roomID string
	ctx    context.Context
	cancel context.CancelFunc

	// pollMu keeps at most one poll in flight.
	pollMu sync.Mutex

	// mu guards stopped and state, and is held while handlers run.
	mu      sync.Mutex
	stopped bool
	state   *State

	// viewMu guards the published snapshot read by the accessors.
	viewMu   sync.RWMutex
	messages []models.Message
	seen     int
}

// New creates a stopped Synchronizer.
func New(fetcher Fetcher, handlers Handlers, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		fetcher:  fetcher,
		handlers: handlers,
		interval: DefaultInterval,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins polling roomID on behalf of identity. The first poll runs
// immediately. A session already running, for any room, is stopped first
// and its seen set dropped.
func (s *Synchronizer) Start(roomID, identity string) error {
	if roomID == "" {
		return ErrEmptyRoom
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		roomID: roomID,
		ctx:    ctx,
		cancel: cancel,
		state:  NewState(identity),
	}

	s.mu.Lock()
	prev := s.sess
	s.sess = sess
	s.mu.Unlock()

	if prev != nil {
		prev.stop()
		s.logger.Info().Str("room", prev.roomID).Msg("sync stopped")
	}

	metrics.SeenMessages.Set(0)
	s.logger.Info().
		Str("room", roomID).
		Str("identity", identity).
		Dur("interval", s.interval).
		Msg("sync started")

	go s.run(sess)
	return nil
}

// Stop cancels polling. Once it returns, no new poll starts, no poll result
// is applied and no handler runs for the stopped session. A fetch already
// under way is canceled and its result dropped. Safe to call when not
// running.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	sess := s.sess
	s.sess = nil
	s.mu.Unlock()

	if sess == nil {
		return
	}
	sess.stop()
	s.logger.Info().Str("room", sess.roomID).Msg("sync stopped")
}

// Refresh runs one poll now, after any poll already in flight. The fetch
// error, if any, is returned as well as passed to OnError. If ctx ends
// while waiting for the poll in flight, its error is returned and no
// fetch is made.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	sess := s.current()
	if sess == nil {
		return ErrNotRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopWatch := context.AfterFunc(sess.ctx, cancel)
	defer stopWatch()

	sess.pollMu.Lock()
	defer sess.pollMu.Unlock()
	if err := ctx.Err(); err != nil {
		if sess.ctx.Err() != nil {
			return ErrNotRunning
		}
		return err
	}
	return s.poll(ctx, sess)
}

// Running reports whether a room session is active.
func (s *Synchronizer) Running() bool {
	return s.current() != nil
}

// RoomID returns the room being polled, or "" when stopped.
func (s *Synchronizer) RoomID() string {
	if sess := s.current(); sess != nil {
		return sess.roomID
	}
	return ""
}

// SeenCount returns the size of the current session's seen set.
func (s *Synchronizer) SeenCount() int {
	sess := s.current()
	if sess == nil {
		return 0
	}
	sess.viewMu.RLock()
	defer sess.viewMu.RUnlock()
	return sess.seen
}

// Messages returns a copy of the last published message list.
func (s *Synchronizer) Messages() []models.Message {
	sess := s.current()
	if sess == nil {
		return nil
	}
	sess.viewMu.RLock()
	defer sess.viewMu.RUnlock()
	out := make([]models.Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

func (s *Synchronizer) current() *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

func (s *Synchronizer) run(sess *session) {
	sess.pollMu.Lock()
	_ = s.poll(sess.ctx, sess)
	sess.pollMu.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.ctx.Done():
			return
		case <-ticker.C:
			if !sess.pollMu.TryLock() {
				metrics.TicksSkipped.Inc()
				continue
			}
			if sess.ctx.Err() != nil {
				sess.pollMu.Unlock()
				return
			}
			_ = s.poll(sess.ctx, sess)
			sess.pollMu.Unlock()
		}
	}
}

// poll must be called with sess.pollMu held.
func (s *Synchronizer) poll(ctx context.Context, sess *session) error {
	if sess.isStopped() {
		return ErrNotRunning
	}

	start := time.Now()
	batch, err := s.fetcher.FetchMessages(ctx, sess.roomID)
	metrics.PollDuration.Observe(time.Since(start).Seconds())

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.stopped {
		metrics.PollsTotal.WithLabelValues("discarded").Inc()
		s.logger.Debug().Str("room", sess.roomID).Msg("poll result discarded after stop")
		return ErrNotRunning
	}

	if err != nil {
		ferr := &FetchError{RoomID: sess.roomID, Err: err}
		metrics.PollsTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("room", sess.roomID).Msg("poll failed")
		if s.handlers.OnError != nil {
			s.handlers.OnError(ferr)
		}
		return ferr
	}

	messages := Normalize(batch)
	fresh := sess.state.Reconcile(messages)
	seen := sess.state.Len()

	sess.viewMu.Lock()
	sess.messages = messages
	sess.seen = seen
	sess.viewMu.Unlock()

	metrics.PollsTotal.WithLabelValues("ok").Inc()
	metrics.SeenMessages.Set(float64(seen))
	s.logger.Debug().
		Str("room", sess.roomID).
		Int("fetched", len(messages)).
		Int("new", len(fresh)).
		Int("seen", seen).
		Dur("latency", time.Since(start)).
		Msg("poll completed")

	for _, m := range fresh {
		metrics.Notifications.Inc()
		if s.handlers.Notify != nil {
			s.handlers.Notify(m)
		}
	}

	if s.handlers.OnMessagesUpdated != nil {
		out := make([]models.Message, len(messages))
		copy(out, messages)
		s.handlers.OnMessagesUpdated(out)
	}
	return nil
}

func (sess *session) isStopped() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.stopped
}

func (sess *session) stop() {
	sess.mu.Lock()
	sess.stopped = true
	sess.mu.Unlock()
	sess.cancel()
}
