package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/microgreens/internal/config"
	"github.com/mamadbah2/microgreens/internal/domain/models"
	"github.com/mamadbah2/microgreens/internal/service/commands"
	client "github.com/mamadbah2/microgreens/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrVerification indicates a rejected webhook subscription handshake.
var ErrVerification = errors.New("webhook verification failed")

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, n models.Notification) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	deliveries *DeliveryTracker
	senders    map[string]struct{}
	logger     *zap.Logger
}

var _ MessagingService = (*MetaWhatsAppService)(nil)

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		dispatcher: dispatcher,
		deliveries: NewDeliveryTracker(),
		senders:    allowedSenders(cfg),
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", fmt.Errorf("missing mode or verify token: %w", ErrVerification)
	}
	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s: %w", mode, ErrVerification)
	}
	if verifyToken != s.cfg.VerifyToken {
		return "", fmt.Errorf("invalid verify token: %w", ErrVerification)
	}
	return challenge, nil
}

// HandleWebhook runs every staff command in the payload and replies to its sender.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}
	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := msg.Body()
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type), zap.String("message_id", msg.ID))
		return nil
	}
	if !s.authorized(msg.From) {
		s.logger.Warn("ignoring command from unknown sender", zap.String("from", msg.From), zap.String("message_id", msg.ID))
		return nil
	}
	if !s.deliveries.FirstDelivery(msg.ID) {
		s.logger.Info("skipping redelivered message", zap.String("message_id", msg.ID))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		reply = replyForError(cmd, err)
		s.logger.Warn("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
	}

	if err := s.send(ctx, msg.From, reply); err != nil {
		s.deliveries.Forget(msg.ID)
		return err
	}
	return nil
}

// authorized reports whether from may run farm commands. An empty allowlist admits everyone.
func (s *MetaWhatsAppService) authorized(from string) bool {
	if len(s.senders) == 0 {
		return true
	}
	_, ok := s.senders[normalizeNumber(from)]
	return ok
}

func allowedSenders(cfg config.WhatsAppConfig) map[string]struct{} {
	senders := make(map[string]struct{})
	for _, number := range append([]string{cfg.ManagerNumber}, cfg.AllowedSenders...) {
		if n := normalizeNumber(number); n != "" {
			senders[n] = struct{}{}
		}
	}
	return senders
}

// normalizeNumber keeps only digits, matching the form Meta reports senders in.
func normalizeNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
}

func replyForError(cmd models.Command, err error) string {
	switch {
	case errors.Is(err, commands.ErrInvalidArguments):
		return fmt.Sprintf("Could not read /%s arguments. Use Variety=number, e.g. /%s Sunflower=5 Radish=3.", cmd.Type, cmd.Type)
	case errors.Is(err, commands.ErrUnsupportedCommand):
		return "Unknown command.\n" + commands.HelpText
	default:
		return "Sorry, that did not work: " + err.Error()
	}
}

// SendOutbound pushes a notification, e.g. from the HTTP API.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, n models.Notification) error {
	return s.send(ctx, n.To, n.Message)
}

// Notify sends msg to the configured manager number, or to to when given.
func (s *MetaWhatsAppService) Notify(ctx context.Context, to, msg string) error {
	if to == "" {
		to = s.cfg.ManagerNumber
	}
	return s.send(ctx, to, msg)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   to,
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	return nil
}
