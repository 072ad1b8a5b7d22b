package whatsapp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pantry/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.WhatsAppConfig{BaseURL: srv.URL, APIVersion: "v20.0", AccessToken: "tok", PhoneNumberID: "123"})
}

func TestSendTextMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v20.0/123/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "text", body["type"])
		assert.Equal(t, "66800000000", body["to"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"messages":[{"id":"wamid.1"}]}`)
	})

	resp, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "66800000000", Body: "hello"})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.1", resp.Messages[0].ID)
}

func TestSendButtonMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Interactive struct {
				Action struct {
					Buttons []struct {
						Reply struct {
							ID    string `json:"id"`
							Title string `json:"title"`
						} `json:"reply"`
					} `json:"buttons"`
				} `json:"action"`
			} `json:"interactive"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Interactive.Action.Buttons, 2)
		assert.Equal(t, "remove:5", body.Interactive.Action.Buttons[0].Reply.ID)
		assert.Len(t, []rune(body.Interactive.Action.Buttons[1].Reply.Title), 20)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"messages":[{"id":"wamid.2"}]}`)
	})

	_, err := client.SendButtonMessage(context.Background(), SendButtonMessageRequest{
		To:   "66800000000",
		Body: "Which one?",
		Buttons: []Button{
			{ID: "remove:5", Title: "2024-04-03"},
			{ID: "remove:6", Title: "a very long button title indeed"},
		},
	})
	require.NoError(t, err)
}

func TestSendButtonMessageRejectsTooMany(t *testing.T) {
	client := NewClient(config.WhatsAppConfig{BaseURL: "http://unused", APIVersion: "v1"})
	_, err := client.SendButtonMessage(context.Background(), SendButtonMessageRequest{Buttons: make([]Button, 4)})
	assert.Error(t, err)
}

func TestSendReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad recipient","code":131030}}`)
	})

	_, err := client.SendTextMessage(context.Background(), SendTextMessageRequest{To: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=131030")
	assert.Contains(t, err.Error(), "bad recipient")
}
