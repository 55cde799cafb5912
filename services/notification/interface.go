package notification

import (
	"context"
	"fmt"

	memberRepo "flatmate/database/repository/member"
	"flatmate/models"
	"flatmate/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService defines methods for sending FCM pushes to
// members.
type NotificationService interface {
	SendMemberPush(ctx context.Context, memberID, title, body string, data map[string]string) error
	Broadcast(ctx context.Context, members []models.MemberAccount, title, body string, data map[string]string)
	SendDuesReminder(ctx context.Context, memberID string, amount float64, period string) error
}

// DefaultNotificationService is the production implementation. Client
// is the shared FCM messaging client; when nil every send is a logged
// no-op, which keeps local development working without Firebase
// credentials.
type DefaultNotificationService struct {
	Members memberRepo.MemberRepository
	Client  *messaging.Client
}

func NewDefaultNotificationService(members memberRepo.MemberRepository, client *messaging.Client) (*DefaultNotificationService, error) {
	if members == nil {
		return nil, fmt.Errorf("notification service initialization error: member repository is nil")
	}
	return &DefaultNotificationService{Members: members, Client: client}, nil
}

// SendMemberPush looks up a member's FCM token and sends a push.
func (s *DefaultNotificationService) SendMemberPush(ctx context.Context, memberID, title, body string, data map[string]string) error {
	m, err := s.Members.GetByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("SendMemberPush: could not find member %s: %w", memberID, err)
	}
	if m == nil {
		return fmt.Errorf("SendMemberPush: member %s does not exist", memberID)
	}
	return s.sendToToken(ctx, m.FCMToken, title, body, data)
}

// Broadcast pushes to every member in the slice that has a registered
// token. Individual failures are logged and skipped so one stale token
// cannot block the rest.
func (s *DefaultNotificationService) Broadcast(ctx context.Context, members []models.MemberAccount, title, body string, data map[string]string) {
	for _, m := range members {
		if m.FCMToken == "" {
			continue
		}
		if err := s.sendToToken(ctx, m.FCMToken, title, body, data); err != nil {
			utils.GetLogger().Warn("Broadcast: push failed",
				zap.String("memberId", m.ID), zap.Error(err))
		}
	}
}

// SendDuesReminder sends the monthly dues reminder push.
func (s *DefaultNotificationService) SendDuesReminder(ctx context.Context, memberID string, amount float64, period string) error {
	body := fmt.Sprintf("Your maintenance of Rs %.2f for %s is due. Please pay to avoid a late fee.", amount, period)
	return s.SendMemberPush(ctx, memberID, "Maintenance due", body, map[string]string{
		"type":   "dues_reminder",
		"period": period,
	})
}

// PaymentRecorded implements the payment service's Notifier hook: a
// best-effort confirmation push after a payment lands in the ledger.
func (s *DefaultNotificationService) PaymentRecorded(ctx context.Context, member models.MemberAccount, rec models.PaymentRecord) {
	body := fmt.Sprintf("We received Rs %.2f. Receipt %s.", rec.Amount, rec.Receipt)
	if rec.RemainingDue > 0 {
		body = fmt.Sprintf("We received Rs %.2f. Receipt %s. Rs %.2f remains due.", rec.Amount, rec.Receipt, rec.RemainingDue)
	}
	if err := s.sendToToken(ctx, member.FCMToken, "Payment received", body, map[string]string{
		"type":    "payment_recorded",
		"receipt": rec.Receipt,
	}); err != nil {
		utils.GetLogger().Warn("PaymentRecorded: push failed",
			zap.String("memberId", member.ID), zap.Error(err))
	}
}

func (s *DefaultNotificationService) sendToToken(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("notification: no FCM token registered")
	}
	if s.Client == nil {
		utils.GetLogger().Debug("notification: FCM client not configured, dropping push",
			zap.String("title", title))
		return nil
	}
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := s.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("notification: failed to send FCM message: %w", err)
	}
	return nil
}
