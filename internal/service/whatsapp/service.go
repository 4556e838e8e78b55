package whatsapp

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
	client "github.com/mamadbah2/stockledger/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrNoRecipient is returned when neither the request nor the config names a recipient.
var ErrNoRecipient = errors.New("no whatsapp recipient")

// Notifier pushes operator notifications.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	NotifyManager(ctx context.Context, message string) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg    config.WhatsAppConfig
	client client.Client
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{cfg: cfg, client: client, logger: logger}
}

// SendOutbound delivers one text message.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	if req.To == "" {
		return ErrNoRecipient
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	id, err := s.client.SendText(ctxWithTimeout, req.To, req.Message)
	if err != nil {
		return err
	}

	s.logger.Info("whatsapp message sent", zap.String("to", req.To), zap.String("message_id", id))
	return nil
}

// NotifyManager sends message to the configured warehouse manager.
func (s *MetaWhatsAppService) NotifyManager(ctx context.Context, message string) error {
	return s.SendOutbound(ctx, models.OutboundMessageRequest{To: s.cfg.ManagerID, Message: message})
}
