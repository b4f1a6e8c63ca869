package dashboard

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recept-slider/internal/recipe"
)

func TestSessionsAcquire(t *testing.T) {
	var last atomic.Int64
	sessions := NewSessions(time.Hour, func(n int) { last.Store(int64(n)) })

	sess, cookie := sessions.Acquire(httptest.NewRequest("GET", "/", nil))
	require.NotNil(t, cookie)
	assert.Equal(t, SessionCookie, cookie.Name)
	assert.Equal(t, sess.ID, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, recipe.DefaultMasses(), sess.Masses())
	assert.Equal(t, 1, sessions.Count())
	assert.Equal(t, int64(1), last.Load())

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	again, c := sessions.Acquire(req)
	assert.Nil(t, c)
	assert.Same(t, sess, again)

	stale := httptest.NewRequest("GET", "/", nil)
	stale.AddCookie(&http.Cookie{Name: SessionCookie, Value: "unknown"})
	fresh, c := sessions.Acquire(stale)
	require.NotNil(t, c)
	assert.NotEqual(t, sess.ID, fresh.ID)
	assert.Equal(t, 2, sessions.Count())
}

func TestSessionsExpire(t *testing.T) {
	sessions := NewSessions(50*time.Millisecond, nil)

	_, cookie := sessions.Acquire(httptest.NewRequest("GET", "/", nil))
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)

	time.Sleep(100 * time.Millisecond)

	_, ok := sessions.Lookup(req)
	assert.False(t, ok)
}

func TestSessionFlashIsTakenOnce(t *testing.T) {
	sess := newSession()
	assert.Nil(t, sess.TakeFlash())

	sess.SetFlash(FlashWarning, "let op")
	f := sess.TakeFlash()
	require.NotNil(t, f)
	assert.Equal(t, FlashWarning, f.Level)
	assert.Equal(t, "let op", f.Message)
	assert.Nil(t, sess.TakeFlash())
}
