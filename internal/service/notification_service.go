package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/roster-service/internal/config"
	"github.com/spec-kit/roster-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventMemberCreated, n.handleMemberChanged)
	n.dispatcher.Subscribe(events.EventMemberUpdated, n.handleMemberChanged)
	n.dispatcher.Subscribe(events.EventMemberDeleted, n.handleMemberChanged)
	n.dispatcher.Subscribe(events.EventGroupDeleted, n.handleGroupDeleted)
	n.dispatcher.Subscribe(events.EventImportApplied, n.handleImport)
	n.dispatcher.Subscribe(events.EventImportDiscarded, n.handleImport)
}

func (n *NotificationService) handleMemberChanged(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("actor", string(event.Actor)),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleGroupDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("actor", string(event.Actor)),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleImport(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("actor", string(event.Actor)),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
