package apiv1

import (
	"context"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/beam-cloud/mailtriage/pkg/classify"
	"github.com/beam-cloud/mailtriage/pkg/session"
	"github.com/beam-cloud/mailtriage/pkg/types"
)

const (
	routeIndex     = "/"
	routeAuthorize = "/authorize"
	routeCallback  = "/oauth2callback"
	routeClassify  = "/classify"
	routeReset     = "/reset"
)

// OAuthProvider runs the Gmail consent flow
type OAuthProvider interface {
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	TokenSource(ctx context.Context, token *oauth2.Token) oauth2.TokenSource
}

// JobRunner runs one classification job for an authorized mailbox
type JobRunner interface {
	Run(ctx context.Context, ts oauth2.TokenSource, start, end string) (*classify.Result, error)
}

// WebGroup serves the browser-facing pages
type WebGroup struct {
	sessions *session.Manager
	provider OAuthProvider
	runner   JobRunner
	export   types.ExportConfig
}

func NewWebGroup(g *echo.Group, sessions *session.Manager, provider OAuthProvider, runner JobRunner, export types.ExportConfig) *WebGroup {
	wg := &WebGroup{
		sessions: sessions,
		provider: provider,
		runner:   runner,
		export:   export,
	}

	requireAuth := NewGmailAuthMiddleware(sessions)

	g.GET(routeIndex, wg.Index)
	g.GET(routeAuthorize, wg.Authorize)
	g.GET(routeCallback, wg.Callback)
	g.GET(routeClassify, wg.ClassifyForm, requireAuth)
	g.POST(routeClassify, wg.Classify, requireAuth)
	g.GET(routeReset, wg.Reset)

	return wg
}

func (wg *WebGroup) Index(c echo.Context) error {
	_, data, err := wg.sessions.Load(c)
	return renderIndexPage(c, err == nil && data.Authorized())
}
