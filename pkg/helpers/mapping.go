package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/ebook-storefront/pkg/mailer"
	mailtpl "github.com/oksasatya/ebook-storefront/pkg/mailer/templates"
)

// FallbackSubject is used when a job carries neither a subject nor a template.
func FallbackSubject(job *mailer.EmailJob) string {
	switch strings.ToLower(job.Template) {
	case mailtpl.DownloadLink:
		return "Your download link"
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
