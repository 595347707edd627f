package mail

import (
	"encoding/base64"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"google.golang.org/api/gmail/v1"
)

// DefaultMaxPartDepth bounds how deep the payload walk descends. Nesting is
// chosen by the sender, so the walk never follows it unbounded.
const DefaultMaxPartDepth = 32

const (
	mimeTextPlain = "text/plain"
	mimeTextHTML  = "text/html"
)

// ExtractBody returns the best plain-text body for a payload:
//  1. the first text/plain leaf, depth-first, searching nested parts
//  2. the first text/html leaf, converted to text
//  3. a single-part payload's inline body (HTML converted to text)
func ExtractBody(payload *gmail.MessagePart, maxDepth int) string {
	if payload == nil {
		return ""
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxPartDepth
	}

	if text := findLeaf(payload, mimeTextPlain, 0, maxDepth); text != "" {
		return text
	}

	if htmlBody := findLeaf(payload, mimeTextHTML, 0, maxDepth); htmlBody != "" {
		return HTMLToText(htmlBody)
	}

	if len(payload.Parts) == 0 && payload.Body != nil {
		decoded := decodeBodyData(payload.Body.Data)
		if strings.HasPrefix(payload.MimeType, mimeTextHTML) {
			return HTMLToText(decoded)
		}
		return decoded
	}

	return ""
}

// ExtractPlainText returns only the first text/plain leaf
func ExtractPlainText(payload *gmail.MessagePart, maxDepth int) string {
	if payload == nil {
		return ""
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxPartDepth
	}
	return findLeaf(payload, mimeTextPlain, 0, maxDepth)
}

// findLeaf walks the part tree depth-first and returns the decoded body of the
// first leaf with the target MIME type. Parts deeper than maxDepth are skipped.
func findLeaf(part *gmail.MessagePart, mimeType string, depth, maxDepth int) string {
	if part == nil || depth > maxDepth {
		return ""
	}

	if len(part.Parts) == 0 {
		if !strings.HasPrefix(part.MimeType, mimeType) || part.Body == nil {
			return ""
		}
		return decodeBodyData(part.Body.Data)
	}

	for _, sub := range part.Parts {
		if text := findLeaf(sub, mimeType, depth+1, maxDepth); text != "" {
			return text
		}
	}
	return ""
}

// decodeBodyData decodes Gmail's base64url body data, padded or not
func decodeBodyData(data string) string {
	if data == "" {
		return ""
	}

	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.URLEncoding.DecodeString(data)
		if err != nil {
			padded := strings.TrimRight(data, "=")
			switch len(padded) % 4 {
			case 2:
				padded += "=="
			case 3:
				padded += "="
			}
			decoded, _ = base64.URLEncoding.DecodeString(padded)
		}
	}

	return string(decoded)
}

var (
	blockElements = map[string]bool{
		"p": true, "div": true, "br": true, "li": true, "tr": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"table": true, "ul": true, "ol": true, "blockquote": true,
	}
	skipElements = map[string]bool{"script": true, "style": true, "head": true, "title": true}

	spaceRun     = regexp.MustCompile(`[ \t\r\f\x{00a0}]+`)
	blankLineRun = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText renders an HTML fragment as plain text. Block elements become line
// breaks; script and style content is dropped.
func HTMLToText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))

	var b strings.Builder
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return normalizeText(b.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipElements[tag] && tt == html.StartTagToken {
				skipDepth++
			}
			if blockElements[tag] {
				b.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipElements[tag] && skipDepth > 0 {
				skipDepth--
			}
			if blockElements[tag] {
				b.WriteByte('\n')
			}

		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	text := strings.Join(lines, "\n")
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
