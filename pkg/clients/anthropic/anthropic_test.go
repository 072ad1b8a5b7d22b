package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pantry/internal/config"
)

func newTestClient(t *testing.T, reply string, status int) *anthropicClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("x-api-key"))

		var body messageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		assert.Contains(t, body.System, "2024-04-01")
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "{", body.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		out, _ := json.Marshal(map[string]any{"content": []map[string]string{{"text": reply}}})
		_, _ = io.WriteString(w, string(out))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(config.AIConfig{AnthropicKey: "key", Model: "test-model"}).(*anthropicClient)
	client.url = srv.URL
	return client
}

var today = civil.Date{Year: 2024, Month: 4, Day: 1}

func TestExtractVoiceCommand(t *testing.T) {
	client := newTestClient(t, `"action":"ADD","item":" กีวี ","is_fixed_date":false,"date_value":"2","date_unit":"year"}`, http.StatusOK)

	got, err := client.ExtractVoiceCommand(context.Background(), "ซื้อกีวี อีก 2 ปีหมดอายุ", today)
	require.NoError(t, err)
	assert.Equal(t, &VoiceExtraction{Action: "add", Item: "กีวี", DateValue: "2", DateUnit: "year"}, got)
}

func TestExtractVoiceCommandRejectsGarbage(t *testing.T) {
	client := newTestClient(t, `sorry, I cannot help`, http.StatusOK)

	_, err := client.ExtractVoiceCommand(context.Background(), "hello", today)
	assert.ErrorContains(t, err, "unmarshal ai response")
}

func TestExtractVoiceCommandAPIError(t *testing.T) {
	client := newTestClient(t, `x`, http.StatusTooManyRequests)

	_, err := client.ExtractVoiceCommand(context.Background(), "add milk", today)
	assert.ErrorContains(t, err, "status=429")
}

func TestCleanJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSON("{```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSON(`{{"a":1}`))
	assert.Equal(t, `{"a":1}`, cleanJSON(` {"a":1} `))
}
