package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"

	"github.com/beam-cloud/mailtriage/pkg/types"
)

// fakeGmail serves two pages of message ids and full messages by id
type fakeGmail struct {
	t        *testing.T
	queries  []string
	tokens   []string
	messages map[string]map[string]any
	pages    [][]string
}

func (f *fakeGmail) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	assert.Equal(f.t, "Bearer test-token", r.Header.Get("Authorization"))

	if strings.HasSuffix(r.URL.Path, "/users/me/messages") {
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		pageToken := r.URL.Query().Get("pageToken")
		f.tokens = append(f.tokens, pageToken)

		idx := 0
		if pageToken != "" {
			idx = 1
		}
		resp := map[string]any{}
		var msgs []map[string]string
		for _, id := range f.pages[idx] {
			msgs = append(msgs, map[string]string{"id": id, "threadId": id})
		}
		resp["messages"] = msgs
		if idx+1 < len(f.pages) {
			resp["nextPageToken"] = "page-2"
		}
		json.NewEncoder(w).Encode(resp)
		return
	}

	id := path.Base(r.URL.Path)
	msg, ok := f.messages[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 404, "message": "not found"}})
		return
	}
	assert.Equal(f.t, "full", r.URL.Query().Get("format"))
	json.NewEncoder(w).Encode(msg)
}

func newTestClient(t *testing.T, fake *fakeGmail, cfg types.MailConfig) *Client {
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg.Endpoint = srv.URL + "/"
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	client, err := NewClient(context.Background(), cfg, ts)
	require.NoError(t, err)
	return client
}

func TestClient_ListMessageIDs_FollowsPages(t *testing.T) {
	fake := &fakeGmail{t: t, pages: [][]string{{"a", "b"}, {"c"}}}
	client := newTestClient(t, fake, types.MailConfig{})

	ids, err := client.ListMessageIDs(context.Background(), "after:2024/01/01")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, []string{"", "page-2"}, fake.tokens)
	assert.Equal(t, "after:2024/01/01", fake.queries[0])
}

func TestClient_ListMessageIDs_MaxMessages(t *testing.T) {
	fake := &fakeGmail{t: t, pages: [][]string{{"a", "b"}, {"c"}}}
	client := newTestClient(t, fake, types.MailConfig{MaxMessages: 2})

	ids, err := client.ListMessageIDs(context.Background(), "after:2024/01/01")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Len(t, fake.tokens, 1)
}

func TestClient_GetMessage(t *testing.T) {
	fake := &fakeGmail{t: t, messages: map[string]map[string]any{
		"m1": {
			"id":           "m1",
			"threadId":     "t1",
			"snippet":      "snippet text",
			"internalDate": "1704067200000", // 2024-01-01T00:00:00Z
			"labelIds":     []string{"INBOX"},
			"payload": map[string]any{
				"mimeType": "multipart/alternative",
				"headers": []map[string]string{
					{"name": "subject", "value": "請求書のご案内"},
					{"name": "From", "value": "Billing <billing@example.com>"},
				},
				"parts": []map[string]any{
					{"mimeType": "text/plain", "body": map[string]any{"data": "SGVsbG8gV29ybGQh"}},
				},
			},
		},
	}}
	client := newTestClient(t, fake, types.MailConfig{TimeZone: "UTC"})

	msg, err := client.GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", msg.ID)
	assert.Equal(t, "請求書のご案内", msg.Subject)
	assert.Equal(t, "Billing <billing@example.com>", msg.From)
	assert.Equal(t, "Hello World!", msg.Body)
	assert.Equal(t, "snippet text", msg.Snippet)
	assert.Equal(t, []string{"INBOX"}, msg.Labels)
	assert.True(t, msg.ReceivedAt.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-01T00:00:00Z", msg.ReceivedAt.Format(time.RFC3339))
}

func TestClient_GetMessage_NotFound(t *testing.T) {
	fake := &fakeGmail{t: t, messages: map[string]map[string]any{}}
	client := newTestClient(t, fake, types.MailConfig{})

	_, err := client.GetMessage(context.Background(), "missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "get message missing")
}

func TestParseMessage_NoPayload(t *testing.T) {
	msg := ParseMessage(&gmail.Message{Id: "x", InternalDate: 0}, time.UTC, 0)
	assert.Equal(t, "x", msg.ID)
	assert.Equal(t, "", msg.Subject)
	assert.Equal(t, "", msg.Body)
}
