package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/fitlab-service/internal/config"
	"github.com/spec-kit/fitlab-service/internal/events"
)

// NotificationEventTypes lists the events that produce user-facing notifications.
var NotificationEventTypes = []events.EventType{
	events.EventBookingCreated,
	events.EventBookingStatusChanged,
	events.EventBookingCancelled,
	events.EventUserApproved,
	events.EventUserRejected,
	events.EventUserSuspensionChanged,
}

// NotificationService turns domain events into email and webhook notifications.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		logger: nopLogger(logger),
		cfg:    cfg,
	}
}

// Handle delivers the notifications for one event. Events without a notification are ignored.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventBookingCreated:
		return n.handleBookingCreated(ctx, event)
	case events.EventBookingStatusChanged, events.EventBookingCancelled:
		return n.handleBookingStatusChanged(ctx, event)
	case events.EventUserApproved, events.EventUserRejected:
		return n.handleApprovalDecision(ctx, event)
	case events.EventUserSuspensionChanged:
		return n.handleSuspensionChanged(ctx, event)
	}
	return nil
}

func (n *NotificationService) handleBookingCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingCreated", zap.String("booking_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleBookingStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingStatusChanged",
		zap.String("booking_id", event.SubjectID),
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleApprovalDecision(ctx context.Context, event events.Event) error {
	n.logger.Info("ApprovalDecision",
		zap.String("user_id", event.SubjectID),
		zap.String("event_type", string(event.Type)),
		zap.String("admin", event.Actor.ID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSuspensionChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("SuspensionChanged", zap.String("user_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
