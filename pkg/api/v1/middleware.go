package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/beam-cloud/mailtriage/pkg/session"
)

const (
	contextKeySessionID   = "session_id"
	contextKeySessionData = "session_data"
)

// NewGmailAuthMiddleware sends browsers without a stored Gmail token to the
// consent flow and exposes the session to handlers otherwise.
func NewGmailAuthMiddleware(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, data, err := sessions.Load(c)
			if err != nil || !data.Authorized() {
				return c.Redirect(http.StatusFound, routeAuthorize)
			}

			c.Set(contextKeySessionID, id)
			c.Set(contextKeySessionData, data)
			return next(c)
		}
	}
}

func sessionFromContext(c echo.Context) (string, *session.Data) {
	id, _ := c.Get(contextKeySessionID).(string)
	data, _ := c.Get(contextKeySessionData).(*session.Data)
	return id, data
}
