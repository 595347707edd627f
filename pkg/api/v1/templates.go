package apiv1

import (
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	pageTitle         = "Mail Triage"
	pageTitleIndex    = "Gmail 分類ツール"
	pageTitleClassify = "メールを分類"
	pageTitleError    = "エラー"
)

var (
	indexTemplate    = template.Must(template.New("index").Parse(indexHTML))
	classifyTemplate = template.Must(template.New("classify").Parse(classifyHTML))
	errorTemplate    = template.Must(template.New("error").Parse(errorHTML))
)

type indexPageData struct {
	Title      string
	Authorized bool
}

type classifyPageData struct {
	Title     string
	StartDate string
	EndDate   string
	Error     string
}

type errorPageData struct {
	Title   string
	Message string
}

func renderIndexPage(c echo.Context, authorized bool) error {
	return renderPage(c, http.StatusOK, indexTemplate, indexPageData{
		Title:      pageTitleIndex,
		Authorized: authorized,
	})
}

func renderClassifyPage(c echo.Context, code int, data classifyPageData) error {
	data.Title = pageTitleClassify
	return renderPage(c, code, classifyTemplate, data)
}

func renderErrorPage(c echo.Context, code int, message string) error {
	return renderPage(c, code, errorTemplate, errorPageData{
		Title:   pageTitleError,
		Message: message,
	})
}

func renderPage(c echo.Context, code int, tmpl *template.Template, data any) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return tmpl.Execute(c.Response(), data)
}

const baseStyles = `
	*, *::before, *::after { box-sizing: border-box; }
	body {
		font-family: -apple-system, BlinkMacSystemFont, "Hiragino Sans", "Noto Sans JP", "Segoe UI", sans-serif;
		line-height: 1.6;
		margin: 0;
		min-height: 100vh;
		display: flex;
		align-items: center;
		justify-content: center;
		background: #fafafa;
		color: #111;
	}
	@media (prefers-color-scheme: dark) {
		body { background: #111; color: #fafafa; }
		.card { background: #1a1a1a; border-color: #333; }
		.secondary { color: #888; }
		input { background: #222; color: #fafafa; border-color: #444; }
	}
	.card {
		max-width: 440px;
		width: 100%;
		padding: 40px 32px;
		background: #fff;
		border: 1px solid #e5e5e5;
		border-radius: 12px;
		margin: 16px;
	}
	h1 {
		font-size: 22px;
		font-weight: 600;
		margin: 0 0 16px 0;
	}
	p { margin: 0 0 16px 0; }
	.secondary { color: #666; font-size: 14px; }
	.error { color: #dc2626; font-size: 14px; }
	ul.links { list-style: none; padding: 0; margin: 0; }
	ul.links li { margin: 0 0 12px 0; }
	label { display: block; font-size: 14px; margin: 0 0 4px 0; }
	input {
		width: 100%;
		padding: 8px 10px;
		border: 1px solid #ddd;
		border-radius: 6px;
		margin: 0 0 16px 0;
		font-size: 14px;
	}
	a, button {
		display: inline-block;
		background: #111;
		color: #fff;
		border: none;
		padding: 10px 20px;
		border-radius: 6px;
		font-size: 14px;
		cursor: pointer;
		text-decoration: none;
	}
	a.plain { background: none; color: inherit; padding: 0; text-decoration: underline; }
	@media (prefers-color-scheme: dark) {
		a, button { background: #fafafa; color: #111; }
	}
`

const indexHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>{{.Title}} - ` + pageTitle + `</title>
	<style>` + baseStyles + `</style>
</head>
<body>
	<div class="card">
		<h1>{{.Title}}</h1>
		<p class="secondary">期間を指定してGmailのメールを取得し、カテゴリ・タグ・要約を付けたCSVをダウンロードします。</p>
		<ul class="links">
			{{if .Authorized}}
			<li><a href="/classify">メールを分類する</a></li>
			<li><a class="plain" href="/reset">認証情報をリセット</a></li>
			{{else}}
			<li><a href="/authorize">Gmailに接続</a></li>
			{{end}}
		</ul>
	</div>
</body>
</html>`

const classifyHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>{{.Title}} - ` + pageTitle + `</title>
	<style>` + baseStyles + `</style>
</head>
<body>
	<div class="card">
		<h1>{{.Title}}</h1>
		{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
		<form method="post" action="/classify">
			<label for="start_date">開始日</label>
			<input type="date" id="start_date" name="start_date" value="{{.StartDate}}" required>
			<label for="end_date">終了日(任意・当日を含む)</label>
			<input type="date" id="end_date" name="end_date" value="{{.EndDate}}">
			<button type="submit">分類してCSVをダウンロード</button>
		</form>
		<p class="secondary"><a class="plain" href="/">トップへ戻る</a></p>
	</div>
</body>
</html>`

const errorHTML = `<!DOCTYPE html>
<html lang="ja">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>{{.Title}} - ` + pageTitle + `</title>
	<style>` + baseStyles + `</style>
</head>
<body>
	<div class="card">
		<h1>{{.Title}}</h1>
		<p>{{.Message}}</p>
		<p class="secondary"><a class="plain" href="/">トップへ戻る</a></p>
	</div>
</body>
</html>`
