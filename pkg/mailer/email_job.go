package mailer

import "errors"

var (
	ErrNoRecipient = errors.New("email job has no recipient")
	ErrNoBody      = errors.New("email job has neither a template nor a body")
)

// EmailJob is the JSON payload carried on the download-mail queue. Either
// Template (rendered by the worker with Data) or Text/HTML must be set.
type EmailJob struct {
	ID       string         `json:"id,omitempty"`
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "download_link"
	Data     map[string]any `json:"data,omitempty"`
}

func (j EmailJob) Validate() error {
	if j.To == "" {
		return ErrNoRecipient
	}
	if j.Template == "" && j.Text == "" && j.HTML == "" {
		return ErrNoBody
	}
	return nil
}

// MessageID lets the publisher stamp the AMQP message with the job id.
func (j EmailJob) MessageID() string { return j.ID }
