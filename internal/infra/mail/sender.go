package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/growthkit/leadflow/internal/usecase"
)

// ErrNotSupported marks Resend-specific operations SMTP cannot perform.
var ErrNotSupported = errors.New("not supported by SMTP delivery")

func NewSMTPSender(host string, port int, user, password string) *SMTPSender {
	s := &SMTPSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		sent:     make(map[string]sentRecord),
	}
	s.send = func(m *gomail.Message) error {
		return gomail.NewDialer(s.Host, s.Port, s.User, s.Password).DialAndSend(m)
	}
	return s
}

func (s *SMTPSender) SendEmail(_ context.Context, msg usecase.EmailMessage) (string, error) {
	if msg.ScheduledAt != nil {
		return "", fmt.Errorf("scheduled send: %w", ErrNotSupported)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.send(m); err != nil {
		return "", fmt.Errorf("send over SMTP: %w", err)
	}

	sendID := uuid.New().String()
	recipient := ""
	if len(msg.To) > 0 {
		recipient = msg.To[0]
	}

	s.mu.Lock()
	s.sent[sendID] = sentRecord{Recipient: recipient, Status: "sent"}
	s.mu.Unlock()
	return sendID, nil
}

// SendBatch degrades to sequential single sends; each message succeeds or
// fails on its own, and a failure stops the remainder so the caller can see
// exactly how far delivery got.
func (s *SMTPSender) SendBatch(ctx context.Context, msgs []usecase.EmailMessage) ([]string, error) {
	ids := make([]string, 0, len(msgs))
	for i, msg := range msgs {
		id, err := s.SendEmail(ctx, msg)
		if err != nil {
			return ids, fmt.Errorf("batch item %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *SMTPSender) UpdateEmail(context.Context, string, usecase.EmailChanges) error {
	return ErrNotSupported
}

func (s *SMTPSender) CancelEmail(context.Context, string) error {
	return ErrNotSupported
}

func (s *SMTPSender) GetEmail(_ context.Context, sendID string) (*usecase.DeliveryStatus, error) {
	s.mu.Lock()
	record, ok := s.sent[sendID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown send id %q", sendID)
	}
	return &usecase.DeliveryStatus{SendID: sendID, Recipient: record.Recipient, Status: record.Status}, nil
}

func (s *SMTPSender) ListEmails(context.Context) ([]usecase.DeliveryStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]usecase.DeliveryStatus, 0, len(s.sent))
	for id, record := range s.sent {
		statuses = append(statuses, usecase.DeliveryStatus{SendID: id, Recipient: record.Recipient, Status: record.Status})
	}
	return statuses, nil
}

func (s *SMTPSender) ListAttachments(context.Context) ([]usecase.Attachment, error) {
	return nil, ErrNotSupported
}

func (s *SMTPSender) GetAttachment(context.Context, string) (*usecase.Attachment, error) {
	return nil, ErrNotSupported
}
