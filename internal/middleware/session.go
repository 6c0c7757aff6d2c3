package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/Andessonreis/corre-aqui-dash/internal/config"
)

const sessionTokenKey = "token"

// SessionManager keeps the JWT in a signed cookie so browser clients do not
// have to manage the Authorization header
type SessionManager struct {
	store *sessions.CookieStore
	name  string
}

func NewSessionManager(cfg *config.SessionConfig) *SessionManager {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, name: cfg.Name}
}

// Save stores token until expiresAt
func (m *SessionManager) Save(c *gin.Context, token string, expiresAt time.Time) error {
	session, _ := m.store.Get(c.Request, m.name)
	session.Values[sessionTokenKey] = token
	session.Options.MaxAge = int(time.Until(expiresAt).Seconds())
	return session.Save(c.Request, c.Writer)
}

// Token returns the stored token, empty when there is none or the cookie was tampered with
func (m *SessionManager) Token(c *gin.Context) string {
	session, err := m.store.Get(c.Request, m.name)
	if err != nil {
		return ""
	}
	token, _ := session.Values[sessionTokenKey].(string)
	return token
}

// Clear expires the cookie
func (m *SessionManager) Clear(c *gin.Context) error {
	session, _ := m.store.Get(c.Request, m.name)
	delete(session.Values, sessionTokenKey)
	session.Options.MaxAge = -1
	return session.Save(c.Request, c.Writer)
}
