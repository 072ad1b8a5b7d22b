package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/voice"
	client "github.com/mamadbah2/pantry/pkg/clients/whatsapp"
)

// ErrNoRecipient is returned by Notify when no household number is configured.
var ErrNoRecipient = errors.New("no notification recipient configured")

const (
	sendTimeout = 10 * time.Second
	maxButtons  = 3
	failedReply = "Sorry, something went wrong while updating the pantry. Please try again."
)

// MessagingService describes the operations the HTTP layer and jobs can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	Notify(ctx context.Context, message string) error
}

// VoiceHandler applies pantry commands. *voice.Service satisfies it.
type VoiceHandler interface {
	Handle(ctx context.Context, userID, transcript string) (*voice.Outcome, error)
	HandleChoice(ctx context.Context, userID, choiceID string) (*voice.Outcome, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg    config.WhatsAppConfig
	client client.Client
	voice  VoiceHandler
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, voice VoiceHandler, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:    cfg,
		client: client,
		voice:  voice,
		logger: logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, msg := range payload.Messages() {
		if err := s.handleInboundMessage(ctx, msg); err != nil {
			s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := strings.TrimSpace(msg.Body())
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}

	userID := "wa:" + msg.From

	var (
		outcome *voice.Outcome
		err     error
	)
	if voice.IsChoice(text) {
		outcome, err = s.voice.HandleChoice(ctx, userID, text)
	} else {
		outcome, err = s.voice.Handle(ctx, userID, text)
	}
	if err != nil {
		s.logger.Warn("voice command failed", zap.String("from", msg.From), zap.Bool("partly_applied", outcome.Applied()), zap.Error(err))
		reply := failedReply
		if outcome.Applied() {
			reply += "\nAlready done: " + outcome.Reply
		}
		return s.sendText(ctx, msg.From, reply)
	}

	s.logger.Info("handled inbound command",
		zap.String("from", msg.From),
		zap.String("action", string(outcome.Action)),
		zap.Int("added", len(outcome.Added)),
		zap.Int("removed", len(outcome.Removed)))

	if len(outcome.Choices) == 0 {
		return s.sendText(ctx, msg.From, outcome.Reply)
	}
	return s.sendChoices(ctx, msg.From, outcome.Reply, outcome.Choices)
}

// sendChoices sends the reply with quick-reply buttons, three per message.
func (s *MetaWhatsAppService) sendChoices(ctx context.Context, to, body string, choices []voice.Choice) error {
	for start := 0; start < len(choices); start += maxButtons {
		end := start + maxButtons
		if end > len(choices) {
			end = len(choices)
		}

		buttons := make([]client.Button, 0, end-start)
		for _, c := range choices[start:end] {
			buttons = append(buttons, client.Button{ID: c.ID, Title: c.Title})
		}

		ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
		_, err := s.client.SendButtonMessage(ctxWithTimeout, client.SendButtonMessageRequest{
			To:      to,
			Body:    body,
			Buttons: buttons,
		})
		cancel()
		if err != nil {
			return err
		}
		body = "More:"
	}
	return nil
}

func (s *MetaWhatsAppService) sendText(ctx context.Context, to, body string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{To: to, Body: body})
	return err
}

// Notify pushes a message to the configured household number.
func (s *MetaWhatsAppService) Notify(ctx context.Context, message string) error {
	if s.cfg.NotifyTo == "" {
		return ErrNoRecipient
	}
	return s.sendText(ctx, s.cfg.NotifyTo, message)
}
