package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

// SignInRoute is where unauthenticated visitors of protected pages are sent
const SignInRoute = "/signin"

// ProtectedPrefixes are the client routes that need a session
var ProtectedPrefixes = []string{"/dashboard", "/profile-setup"}

// IsProtected reports whether path is, or is below, a protected prefix
func IsProtected(path string) bool {
	for _, prefix := range ProtectedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// RouteGuard redirects page requests for protected routes to the sign-in page
// when there is no valid session. Other paths pass through untouched.
func RouteGuard(tokens *utils.TokenIssuer, sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsProtected(c.Request.URL.Path) {
			c.Next()
			return
		}

		if _, err := requestClaims(c, tokens, sessions); err != nil {
			c.Redirect(http.StatusFound, SignInRoute)
			c.Abort()
			return
		}

		c.Next()
	}
}
