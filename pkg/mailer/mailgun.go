package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun sends rendered emails from a single sender address.
type Mailgun struct {
	Sender  string
	Timeout time.Duration
	client  mg.Mailgun
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Sender: sender, Timeout: 10 * time.Second, client: mg.NewMailgun(domain, apiKey)}
}

// Send delivers one message; html is optional. The Mailgun message id is
// returned so callers can log it against the queue job.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) (string, error) {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, id, err := m.client.Send(c, msg)
	return id, err
}
