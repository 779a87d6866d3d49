package mail

import (
	"sync"

	"gopkg.in/gomail.v2"
)

// SMTPSender delivers mail over plain SMTP for environments without a
// transactional email provider. Dispatch and report polling run on
// different goroutines, so the local ledger is mutex-guarded.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string

	mu   sync.Mutex
	sent map[string]sentRecord // send id -> local delivery record

	send func(m *gomail.Message) error
}

type sentRecord struct {
	Recipient string
	Status    string
}
