package dashboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"recept-slider/internal/recipe"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "recept_session"

// Flash levels
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Flash is a message shown once on the next page render.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Session is the state of one browser: the current input masses, its own
// recipe list and a pending flash message. Sessions never share state.
type Session struct {
	ID string

	mu     sync.Mutex
	masses recipe.Masses
	store  *recipe.Store
	flash  *Flash
}

func newSession() *Session {
	return &Session{
		ID:     uuid.NewString(),
		masses: recipe.DefaultMasses(),
		store:  recipe.NewStore(),
	}
}

func (s *Session) Masses() recipe.Masses {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.masses
}

func (s *Session) SetMasses(m recipe.Masses) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masses = m
}

// Recipes is the session's recipe store.
func (s *Session) Recipes() *recipe.Store {
	return s.store
}

func (s *Session) SetFlash(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = &Flash{Level: level, Message: message}
}

// TakeFlash returns the pending flash and clears it.
func (s *Session) TakeFlash() *Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flash
	s.flash = nil
	return f
}

// Sessions keeps live sessions in a TTL cache. Every access extends the
// session's lifetime.
type Sessions struct {
	cache    *cache.Cache
	ttl      time.Duration
	onChange func(n int)
}

func NewSessions(ttl time.Duration, onChange func(n int)) *Sessions {
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	if onChange == nil {
		onChange = func(int) {}
	}

	s := &Sessions{
		cache:    cache.New(ttl, cleanup),
		ttl:      ttl,
		onChange: onChange,
	}
	s.cache.OnEvicted(func(string, interface{}) {
		s.onChange(s.cache.ItemCount())
	})
	return s
}

// Lookup returns the session named by the request cookie, if it is still
// alive.
func (s *Sessions) Lookup(r *http.Request) (*Session, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}
	v, ok := s.cache.Get(c.Value)
	if !ok {
		return nil, false
	}
	sess := v.(*Session)
	s.cache.Set(sess.ID, sess, s.ttl)
	return sess, true
}

// Acquire returns the request's session, creating one when needed. The cookie
// is non-nil when the client must be told about a new session.
func (s *Sessions) Acquire(r *http.Request) (*Session, *http.Cookie) {
	if sess, ok := s.Lookup(r); ok {
		return sess, nil
	}

	sess := newSession()
	s.cache.Set(sess.ID, sess, s.ttl)
	s.onChange(s.cache.ItemCount())

	return sess, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Count is the number of live sessions.
func (s *Sessions) Count() int {
	return s.cache.ItemCount()
}
