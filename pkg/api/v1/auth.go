package apiv1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/beam-cloud/mailtriage/pkg/oauth"
)

const (
	errMsgSessionInvalid = "認証セッションが無効か期限切れです。もう一度お試しください。"
	errMsgNoAuthCode     = "認可コードがありません。"
	errMsgTokenExchange  = "トークンの取得に失敗しました。"
	errMsgSessionSave    = "セッションの保存に失敗しました。"
)

// Authorize starts the consent flow with a fresh state value
func (wg *WebGroup) Authorize(c echo.Context) error {
	id, data, err := wg.sessions.Ensure(c)
	if err != nil {
		log.Error().Err(err).Msg("failed to load session")
		return HTTPInternalServerError("failed to load session")
	}

	state, err := oauth.NewState()
	if err != nil {
		return HTTPInternalServerError("failed to generate state")
	}

	data.State = state
	if err := wg.sessions.Save(c, id, data); err != nil {
		log.Error().Err(err).Str("session_id", id).Msg("failed to save session")
		return HTTPInternalServerError("failed to save session")
	}

	return c.Redirect(http.StatusFound, wg.provider.AuthorizeURL(state))
}

// Callback completes the consent flow and stores the token in the session
func (wg *WebGroup) Callback(c echo.Context) error {
	state := c.QueryParam("state")
	code := c.QueryParam("code")
	errParam := c.QueryParam("error")

	id, data, err := wg.sessions.Load(c)
	if err != nil || data.State == "" || state != data.State {
		return renderErrorPage(c, http.StatusBadRequest, errMsgSessionInvalid)
	}

	if errParam != "" {
		return renderErrorPage(c, http.StatusBadRequest, "Googleの認可に失敗しました: "+errParam)
	}

	if code == "" {
		return renderErrorPage(c, http.StatusBadRequest, errMsgNoAuthCode)
	}

	token, err := wg.provider.Exchange(c.Request().Context(), code)
	if err != nil {
		log.Error().Err(err).Str("session_id", id).Msg("oauth token exchange failed")
		return renderErrorPage(c, http.StatusBadGateway, errMsgTokenExchange)
	}

	data.State = ""
	data.Token = token
	if err := wg.sessions.Save(c, id, data); err != nil {
		log.Error().Err(err).Str("session_id", id).Msg("failed to save session")
		return renderErrorPage(c, http.StatusInternalServerError, errMsgSessionSave)
	}

	log.Info().Str("session_id", id).Msg("gmail authorized")
	return c.Redirect(http.StatusFound, routeClassify)
}

// Reset removes stored credentials
func (wg *WebGroup) Reset(c echo.Context) error {
	if err := wg.sessions.Destroy(c); err != nil {
		log.Warn().Err(err).Msg("failed to delete session")
	}
	return c.Redirect(http.StatusFound, routeIndex)
}
