package apiv1

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/beam-cloud/mailtriage/pkg/export"
	"github.com/beam-cloud/mailtriage/pkg/types"
)

const (
	errMsgInvalidDates    = "日付の指定が正しくありません。開始日は必須で、終了日は開始日以降にしてください。"
	errMsgInvalidLLMKey   = "LLMのAPIキーが無効です。設定を確認してください。"
	errMsgClassifyFailed  = "メールの取得または分類に失敗しました。"
	errMsgExportFailed    = "CSVの作成に失敗しました。"
	defaultExportDir      = "static"
	attachmentContentType = "text/csv; charset=utf-8"
)

type ClassifyRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

func (wg *WebGroup) ClassifyForm(c echo.Context) error {
	return renderClassifyPage(c, http.StatusOK, classifyPageData{})
}

// Classify runs the job synchronously and returns the CSV as a download
func (wg *WebGroup) Classify(c echo.Context) error {
	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return HTTPBadRequest("invalid form submission")
	}

	sessionID, data := sessionFromContext(c)
	ctx := c.Request().Context()
	ts := wg.provider.TokenSource(ctx, data.Token)

	result, err := wg.runner.Run(ctx, ts, req.StartDate, req.EndDate)
	if err != nil {
		form := classifyPageData{StartDate: req.StartDate, EndDate: req.EndDate}
		switch {
		case errors.Is(err, types.ErrInvalidDateRange):
			form.Error = errMsgInvalidDates
			return renderClassifyPage(c, http.StatusBadRequest, form)
		case errors.Is(err, types.ErrInvalidLLMCredentials):
			form.Error = errMsgInvalidLLMKey
			return renderClassifyPage(c, http.StatusBadRequest, form)
		}

		log.Error().Err(err).Str("session_id", sessionID).Msg("classification failed")
		return renderErrorPage(c, http.StatusBadGateway, errMsgClassifyFailed)
	}

	// Keep a refreshed access token for the next run
	if token, err := ts.Token(); err == nil && data.Token != nil && token.AccessToken != data.Token.AccessToken {
		data.Token = token
		if err := wg.sessions.Save(c, sessionID, data); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to save refreshed token")
		}
	}

	path := wg.exportPath()
	if err := export.WriteFile(path, result.Rows, export.Options{BOM: wg.export.BOM}); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to write csv")
		return renderErrorPage(c, http.StatusInternalServerError, errMsgExportFailed)
	}

	log.Info().
		Str("job_id", result.JobID).
		Int("rows", result.Total).
		Dur("duration", result.Duration).
		Str("path", path).
		Msg("csv exported")

	c.Response().Header().Set(echo.HeaderContentType, attachmentContentType)
	return c.Attachment(path, filepath.Base(path))
}

func (wg *WebGroup) exportPath() string {
	dir := wg.export.Path
	if dir == "" {
		dir = defaultExportDir
	}
	name := wg.export.FileName
	if name == "" {
		name = export.DefaultFileName
	}
	return filepath.Join(dir, name)
}
