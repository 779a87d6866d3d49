package mail

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/gomail.v2"

	"github.com/growthkit/leadflow/internal/usecase"
)

func stubbedSender() *SMTPSender {
	s := NewSMTPSender("localhost", 2525, "user", "pass")
	s.send = func(*gomail.Message) error { return nil }
	return s
}

func TestSendEmailRecordsLocalLedger(t *testing.T) {
	s := stubbedSender()

	id, err := s.SendEmail(context.Background(), usecase.EmailMessage{
		From: "me@co.com", To: []string{"a@b.com"}, Subject: "Hi", Body: "b",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, id)

	status, err := s.GetEmail(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, "a@b.com", status.Recipient)
	assert.Equal(t, "sent", status.Status)

	_, err = s.GetEmail(context.Background(), "not-a-send")
	assert.Error(t, err)
}

func TestScheduledSendUnsupported(t *testing.T) {
	s := stubbedSender()

	later := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	_, err := s.SendEmail(context.Background(), usecase.EmailMessage{
		From: "me@co.com", To: []string{"a@b.com"}, Subject: "Hi", Body: "b",
		ScheduledAt: &later,
	})
	assert.ErrorIs(t, err, ErrNotSupported)
}

// Run with -race: dispatch writes the ledger while the report poller reads it
// from another goroutine.
func TestLedgerIsSafeConcurrently(t *testing.T) {
	s := stubbedSender()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := s.SendEmail(context.Background(), usecase.EmailMessage{
				From: "me@co.com", To: []string{"a@b.com"}, Subject: "Hi", Body: "b",
			})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := s.ListEmails(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	statuses, err := s.ListEmails(context.Background())
	assert.NoError(t, err)
	assert.Len(t, statuses, 20)
}
