package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.WhatsAppConfig{
		AccessToken:   "secret",
		PhoneNumberID: "1234",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
	})
}

func TestSendTextMessage(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/1234/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	})

	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "919800000000", Body: strings.Repeat("a", 5000)})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)

	assert.Equal(t, "919800000000", got["to"])
	text := got["text"].(map[string]any)
	assert.Len(t, text["body"], maxBodyLength)
}

func TestSendTextMessageAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid parameter","code":100}}`))
	})

	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "91", Body: "hi"})
	require.Error(t, err)
	assert.Equal(t, "whatsapp api error: code=100, message=Invalid parameter", err.Error())
}

func TestSendTextMessageRequiresRecipient(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{BaseURL: "http://127.0.0.1:1", APIVersion: "v20.0"})
	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{Body: "hi"})
	assert.ErrorIs(t, err, ErrEmptyRecipient)
}

func TestTruncateBodyKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"short", "Cafe Verde", "Cafe Verde"},
		{"ascii cut", "sunflower", "sunf"},
		{"split accent", "Café", "Caf"},
		{"emoji", "ab\U0001F331", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateBody(tt.body, 4)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}

	long := strings.Repeat("a", maxBodyLength-1) + "é"
	got := truncateBody(long, maxBodyLength)
	assert.Len(t, got, maxBodyLength-1)
	assert.True(t, utf8.ValidString(got))
}
