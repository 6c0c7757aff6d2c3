package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error    string            `json:"error"`
	Kind     apperr.Kind       `json:"kind"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// RespondError renders err with the status of its kind. Internal and upstream
// causes are logged and never sent to the client.
func RespondError(c *gin.Context, err error) {
	appErr := apperr.As(err)

	if appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindUpstream {
		zerolog.Ctx(c.Request.Context()).Error().
			Stack().
			Err(appErr.Cause()).
			Str("kind", string(appErr.Kind)).
			Msg(appErr.Message)
	}

	c.JSON(appErr.Kind.Status(), ErrorResponse{
		Error:    appErr.Message,
		Kind:     appErr.Kind,
		Fields:   appErr.Fields,
		Redirect: appErr.Redirect,
	})
}

// AbortWithError renders err and stops the handler chain
func AbortWithError(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}
