package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/qrstudio/core/cookie"
	"github.com/dmitrymomot/qrstudio/core/logger"
	"github.com/dmitrymomot/qrstudio/internal/studio"
	"github.com/dmitrymomot/qrstudio/pkg/broadcast"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
)

// Session defaults.
const (
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSessionCookie = "qrstudio_session"
	DefaultMaxSessions   = 10000
)

// Preview is pushed to live pages after every render.
type Preview struct {
	Markup string `json:"svg"`
	Ready  bool   `json:"ready"`
}

func newPreview(g qrcode.Graphic, ok bool) Preview {
	if !ok {
		return Preview{}
	}
	return Preview{Markup: string(g.Markup), Ready: true}
}

// Session is one visitor's form state.
type Session struct {
	ID       string
	Studio   *studio.Studio
	previews *broadcast.MemoryBroadcaster[Preview]
	lastSeen atomic.Int64
	holds    atomic.Int32
}

// Subscribe returns a stream of previews that ends with ctx or with the
// session.
func (s *Session) Subscribe(ctx context.Context) broadcast.Subscriber[Preview] {
	return s.previews.Subscribe(ctx)
}

// Preview returns the currently displayed graphic as a Preview.
func (s *Session) Preview() Preview {
	return newPreview(s.Studio.Graphic())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

func (s *Session) held() bool {
	return s.holds.Load() > 0
}

// SessionOption configures a Sessions store.
type SessionOption func(*Sessions)

// WithSessionTTL sets how long an idle session is kept.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(s *Sessions) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithCookieName(name string) SessionOption {
	return func(s *Sessions) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithStudioOptions are applied to every new session's Studio.
func WithStudioOptions(opts ...studio.Option) SessionOption {
	return func(s *Sessions) {
		s.studioOpts = append(s.studioOpts, opts...)
	}
}

// WithMaxSessions caps the number of stored sessions. When the store is
// full the least recently seen session is evicted.
func WithMaxSessions(n int) SessionOption {
	return func(s *Sessions) {
		if n > 0 {
			s.max = n
		}
	}
}

func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Sessions) {
		if l != nil {
			s.logger = l
		}
	}
}

// Sessions keeps one Studio per visitor, keyed by a signed cookie.
type Sessions struct {
	mu         sync.Mutex
	items      map[string]*Session
	cookies    *cookie.Manager
	cookieName string
	ttl        time.Duration
	max        int
	studioOpts []studio.Option
	logger     *slog.Logger
	now        func() time.Time
}

// NewSessions creates an empty store.
func NewSessions(cookies *cookie.Manager, opts ...SessionOption) *Sessions {
	s := &Sessions{
		items:      make(map[string]*Session),
		cookies:    cookies,
		cookieName: DefaultSessionCookie,
		ttl:        DefaultSessionTTL,
		max:        DefaultMaxSessions,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("sessions"))
	return s
}

// Acquire returns the session named by the request cookie, creating a new
// one when there is none or it is unknown. The cookie is (re)issued on
// every call so it expires together with the idle session.
func (s *Sessions) Acquire(w http.ResponseWriter, r *http.Request) (*Session, error) {
	now := s.now()

	id, err := s.cookies.GetSigned(r, s.cookieName)
	if err != nil && !errors.Is(err, cookie.ErrCookieNotFound) {
		s.logger.DebugContext(r.Context(), "session cookie rejected", logger.Error(err))
	}

	sess, known := s.Get(id)
	if known {
		sess.touch(now)
	} else {
		sess = s.create(now)
	}

	if err := s.cookies.SetSigned(w, s.cookieName, sess.ID, cookie.WithMaxAge(int(s.ttl.Seconds()))); err != nil {
		if !known {
			s.remove(sess.ID)
		}
		return nil, err
	}
	return sess, nil
}

// Hold keeps sess from being swept until the returned release is called.
// Live connections hold their session for as long as they are open.
func (s *Sessions) Hold(sess *Session) (release func()) {
	sess.holds.Add(1)
	sess.touch(s.now())

	var once sync.Once
	return func() {
		once.Do(func() {
			sess.touch(s.now())
			sess.holds.Add(-1)
		})
	}
}

func (s *Sessions) create(now time.Time) *Session {
	sess := &Session{
		ID:       uuid.NewString(),
		previews: broadcast.NewMemoryBroadcaster[Preview](4),
	}
	sess.touch(now)

	hub := sess.previews
	opts := append(append([]studio.Option(nil), s.studioOpts...),
		studio.WithObserver(func(g qrcode.Graphic, ok bool) {
			_ = hub.Broadcast(context.Background(), broadcast.Message[Preview]{Data: newPreview(g, ok)})
		}),
	)
	sess.Studio = studio.New(opts...)

	s.mu.Lock()
	var evicted *Session
	if len(s.items) >= s.max {
		evicted = s.evictLocked(now)
	}
	s.items[sess.ID] = sess
	s.mu.Unlock()

	if evicted != nil {
		_ = evicted.previews.Close()
		s.logger.Debug("session evicted", logger.SessionID(evicted.ID))
	}
	s.logger.Debug("session created", logger.SessionID(sess.ID))
	return sess
}

// evictLocked removes the least recently seen session, preferring ones
// without live connections.
func (s *Sessions) evictLocked(now time.Time) *Session {
	var victim *Session
	for _, sess := range s.items {
		switch {
		case victim == nil:
			victim = sess
		case victim.held() != sess.held():
			if victim.held() {
				victim = sess
			}
		case sess.idleSince(now) > victim.idleSince(now):
			victim = sess
		}
	}
	if victim != nil {
		delete(s.items, victim.ID)
	}
	return victim
}

// Get looks a session up by id.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	return sess, ok
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Sessions) remove(id string) {
	s.mu.Lock()
	sess, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()
	if ok {
		_ = sess.previews.Close()
	}
}

// Sweep drops sessions idle longer than the TTL and returns how many were
// removed. Held sessions are kept.
func (s *Sessions) Sweep() int {
	now := s.now()

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.items {
		if !sess.held() && sess.idleSince(now) > s.ttl {
			expired = append(expired, sess)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		_ = sess.previews.Close()
	}
	if len(expired) > 0 {
		s.logger.Debug("sessions swept", slog.Int("removed", len(expired)))
	}
	return len(expired)
}

// Close drops every session.
func (s *Sessions) Close() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range items {
		_ = sess.previews.Close()
	}
}

// Run sweeps every interval until ctx is done, then closes the store.
// The returned function fits errgroup.Group.Go.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) func() error {
	if interval <= 0 {
		interval = s.ttl / 2
	}
	return func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer s.Close()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.Sweep()
			}
		}
	}
}
