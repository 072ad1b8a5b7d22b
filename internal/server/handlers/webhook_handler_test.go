package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

type stubMessaging struct {
	handled   int
	handleErr error
	notified  []string
	notifyErr error
}

func (s *stubMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || token != "verify-me" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (s *stubMessaging) HandleWebhook(_ context.Context, p models.WebhookPayload) error {
	s.handled += len(p.Messages())
	return s.handleErr
}

func (s *stubMessaging) Notify(_ context.Context, message string) error {
	s.notified = append(s.notified, message)
	return s.notifyErr
}

func webhookEngine(svc *stubMessaging) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/notify", h.Notify)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookVerify(t *testing.T) {
	r := webhookEngine(&stubMessaging{})

	w := serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	w = serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=42", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookReceiveAcknowledgesFailures(t *testing.T) {
	svc := &stubMessaging{handleErr: errors.New("upstream down")}
	r := webhookEngine(svc)

	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"1","type":"text","text":{"body":"add milk"}}]}}]}]}`
	w := serve(r, http.MethodPost, "/webhook", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.handled)

	w = serve(r, http.MethodPost, "/webhook", "{broken")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookNotify(t *testing.T) {
	svc := &stubMessaging{}
	r := webhookEngine(svc)

	assert.Equal(t, http.StatusAccepted, serve(r, http.MethodPost, "/notify", `{"message":"Milk expires Friday"}`).Code)
	assert.Equal(t, []string{"Milk expires Friday"}, svc.notified)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/notify", `{}`).Code)

	svc.notifyErr = errors.New("meta down")
	assert.Equal(t, http.StatusBadGateway, serve(r, http.MethodPost, "/notify", `{"message":"x"}`).Code)
}
