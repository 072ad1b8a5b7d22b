package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoiceCommand(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		action VoiceAction
		items  []string
	}{
		{name: "empty", text: "   ", action: VoiceUnknown},
		{name: "smalltalk", text: "what's for dinner", action: VoiceUnknown},
		{name: "english add", text: "Please add milk and eggs", action: VoiceAdd, items: []string{"milk", "eggs"}},
		{name: "english add with expiry", text: "bought salmon expires tomorrow", action: VoiceAdd, items: []string{"salmon"}},
		{name: "thai add", text: "ซื้อนมและไข่", action: VoiceAdd, items: []string{"นม", "ไข่"}},
		{name: "thai add relative date", text: "ซื้อกีวี อีก 2 ปีหมดอายุ", action: VoiceAdd, items: []string{"กีวี"}},
		{name: "thai remove beats add prefix", text: "เอาออกหมู", action: VoiceRemove, items: []string{"หมู"}},
		{name: "english remove", text: "remove basil, spinach", action: VoiceRemove, items: []string{"basil", "spinach"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseVoiceCommand(tt.text)
			assert.Equal(t, tt.action, cmd.Action)
			assert.Equal(t, tt.items, cmd.Items)
			assert.Equal(t, tt.text, cmd.Raw)
		})
	}
}

func TestStockRecordName(t *testing.T) {
	withRef := StockRecord{Ingredient: &IngredientRef{ID: 3, Name: "Milk"}, IngredientName: "legacy"}
	assert.Equal(t, "Milk", withRef.Name())

	legacy := StockRecord{IngredientName: "Eggs"}
	assert.Equal(t, "Eggs", legacy.Name())

	assert.Equal(t, "", StockRecord{}.Name())
}

func TestStockRecordDecodesAPIShape(t *testing.T) {
	payload := `{
		"id": 12,
		"ingredient": {"id": 4, "name": "นม", "unit_of_measure": "ml", "common": false},
		"quantity": "1.50",
		"expiration_date": "2024-04-03",
		"date_added": "2024-03-30",
		"disable": false
	}`

	var rec StockRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Equal(t, int64(12), rec.ID)
	assert.Equal(t, "นม", rec.Name())
	require.True(t, rec.Quantity.Valid)
	assert.Equal(t, "1.5", rec.Quantity.Decimal.String())
	require.NotNil(t, rec.ExpirationDate)
	assert.Equal(t, "2024-04-03", rec.ExpirationDate.String())
	assert.Equal(t, "2024-03-30", rec.DateAdded.String())
}

func TestStockRecordNullExpiration(t *testing.T) {
	var rec StockRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"ingredient_name":"salt","quantity":null,"expiration_date":null,"date_added":"2024-01-01"}`), &rec))

	assert.Nil(t, rec.ExpirationDate)
	assert.False(t, rec.Quantity.Valid)
	assert.Equal(t, "salt", rec.Name())
}

func TestStockWriteRequestOmitsUnsetFields(t *testing.T) {
	disable := true
	body, err := json.Marshal(StockWriteRequest{Disable: &disable})
	require.NoError(t, err)
	assert.JSONEq(t, `{"disable":true}`, string(body))
}

func TestWebhookPayloadMessages(t *testing.T) {
	payload := `{
		"object": "whatsapp_business_account",
		"entry": [{"id": "1", "changes": [
			{"field": "messages", "value": {"messages": [
				{"from": "66811111111", "id": "wamid.a", "type": "text", "text": {"body": "add milk"}}
			]}},
			{"field": "messages", "value": {"messages": [
				{"from": "66811111111", "id": "wamid.b", "type": "interactive",
				 "interactive": {"type": "button_reply", "button_reply": {"id": "remove:4", "title": "Eggs"}}},
				{"from": "66811111111", "id": "wamid.c", "type": "image"}
			]}}
		]}]
	}`

	var p WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(payload), &p))

	msgs := p.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "add milk", msgs[0].Body())
	assert.Equal(t, "remove:4", msgs[1].Body())
	assert.Equal(t, "", msgs[2].Body())
	assert.Empty(t, WebhookPayload{}.Messages())
}
