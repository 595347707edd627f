package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/gmail/v1"
)

func part(mimeType, data string, parts ...*gmail.MessagePart) *gmail.MessagePart {
	p := &gmail.MessagePart{MimeType: mimeType, Parts: parts}
	if data != "" {
		p.Body = &gmail.MessagePartBody{Data: data}
	}
	return p
}

func TestExtractBody_PlainTextDirect(t *testing.T) {
	payload := part("text/plain", "SGVsbG8gV29ybGQh") // "Hello World!"
	assert.Equal(t, "Hello World!", ExtractBody(payload, 0))
}

func TestExtractBody_PlainTextInParts(t *testing.T) {
	payload := part("multipart/alternative", "",
		part("text/html", "PGRpdj5IaSAmYW1wOyBieWU8L2Rpdj4"),
		part("text/plain", "UGxhaW4gdGV4dCBib2R5"), // "Plain text body"
	)
	assert.Equal(t, "Plain text body", ExtractBody(payload, 0))
}

func TestExtractBody_NestedMultipart(t *testing.T) {
	payload := part("multipart/mixed", "",
		part("multipart/alternative", "",
			part("text/plain", "TmVzdGVkIHBsYWluIHRleHQ="), // "Nested plain text", padded
			part("text/html", "PGRpdj5IaSAmYW1wOyBieWU8L2Rpdj4"),
		),
		part("application/pdf", ""),
	)
	assert.Equal(t, "Nested plain text", ExtractBody(payload, 0))
}

func TestExtractBody_FirstPlainLeafWins(t *testing.T) {
	payload := part("multipart/mixed", "",
		part("multipart/alternative", "",
			part("text/plain", "5pel5pys6Kqe44Gu5pys5paH44Gn44GZ"), // "日本語の本文です"
		),
		part("text/plain", "SGVsbG8gV29ybGQh"),
	)
	assert.Equal(t, "日本語の本文です", ExtractBody(payload, 0))
}

func TestExtractBody_HTMLOnlyMultipart(t *testing.T) {
	payload := part("multipart/alternative", "",
		part("text/html", "PHA-SFRNTCA8Yj5vbmx5PC9iPjwvcD48c2NyaXB0PngoKTwvc2NyaXB0Pg"),
	)
	assert.Equal(t, "HTML only", ExtractBody(payload, 0))
	assert.Equal(t, "", ExtractPlainText(payload, 0))
}

func TestExtractBody_InlineSinglePart(t *testing.T) {
	payload := part("text/calendar", "aW5saW5lIGJvZHk") // "inline body"
	assert.Equal(t, "inline body", ExtractBody(payload, 0))
}

func TestExtractBody_InlineHTML(t *testing.T) {
	payload := part("text/html", "PGRpdj5IaSAmYW1wOyBieWU8L2Rpdj4")
	assert.Equal(t, "Hi & bye", ExtractBody(payload, 0))
}

func TestExtractBody_Empty(t *testing.T) {
	assert.Equal(t, "", ExtractBody(nil, 0))
	assert.Equal(t, "", ExtractBody(part("multipart/mixed", "", part("image/png", "")), 0))
}

func TestExtractBody_DepthGuard(t *testing.T) {
	leaf := part("text/plain", "ZGVlcA") // "deep"
	root := leaf
	for i := 0; i < 40; i++ {
		root = part("multipart/mixed", "", root)
	}

	assert.Equal(t, "", ExtractPlainText(root, DefaultMaxPartDepth))
	assert.Equal(t, "deep", ExtractPlainText(root, 64))
}

func TestDecodeBodyData(t *testing.T) {
	assert.Equal(t, "Hello World!", decodeBodyData("SGVsbG8gV29ybGQh"))
	assert.Equal(t, "inline body", decodeBodyData("aW5saW5lIGJvZHk="))
	assert.Equal(t, "inline body", decodeBodyData("aW5saW5lIGJvZHk"))
	assert.Equal(t, "", decodeBodyData(""))
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{name: "simple", html: "<p>Hello World</p>", expected: "Hello World"},
		{name: "entities", html: "Hello &amp; Goodbye &lt;test&gt;", expected: "Hello & Goodbye <test>"},
		{name: "line breaks", html: "Line 1<br>Line 2<br/>Line 3", expected: "Line 1\nLine 2\nLine 3"},
		{name: "script and style", html: "<style>body{color:red}</style><script>alert('x')</script><p>Content</p>", expected: "Content"},
		{name: "collapses blank lines", html: "<p>A</p><p></p><p></p><p>B</p>", expected: "A\n\nB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTMLToText(tt.html))
		})
	}
}
