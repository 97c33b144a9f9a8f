package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/ebook-storefront/config"
	"github.com/oksasatya/ebook-storefront/pkg/helpers"
	"github.com/oksasatya/ebook-storefront/pkg/mailer"
	mailtpl "github.com/oksasatya/ebook-storefront/pkg/mailer/templates"
)

type sender interface {
	Send(ctx context.Context, to, subject, text, html string) (string, error)
}

type worker struct {
	mail     sender
	resolver mailtpl.GeoResolver
	logger   *logrus.Logger
}

type verdict int

const (
	ack verdict = iota
	drop
	retry
)

// process renders and sends one queued job. Bad payloads and render errors
// are dropped. A failed send is requeued once; a redelivered job that fails
// again is dropped.
func (w *worker) process(ctx context.Context, body []byte, redelivered bool) verdict {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad message")
		return drop
	}
	if err := job.Validate(); err != nil {
		w.logger.WithError(err).WithField("job_id", job.ID).Warn("invalid job")
		return drop
	}
	log := w.logger.WithFields(logrus.Fields{"job_id": job.ID, "template": job.Template})

	helpers.EnsureRecipientAndEmail(&job)
	if w.resolver != nil {
		if g, ok := helpers.LocalizeEmailTimes(ctx, w.resolver, job.Data); ok {
			if loc, set := job.Data["Location"]; !set || loc == "" {
				job.Data["Location"] = mailtpl.FormatGeo(g)
			}
		}
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			log.WithError(err).Error("render failed")
			return drop
		}
		subject, text, html = s, t, h
	}
	if subject == "" {
		subject = helpers.FallbackSubject(&job)
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	id, err := w.mail.Send(c, job.To, subject, text, html)
	if err != nil {
		log.WithError(err).WithField("redelivered", redelivered).Warn("send failed")
		if redelivered {
			return drop
		}
		return retry
	}
	log.WithField("mailgun_id", id).Info("email sent")
	return ack
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQDownloadQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(16, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if _, err := helpers.DeclareQueue(ch, cfg.RabbitMQDownloadQueue); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQDownloadQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	w := &worker{
		mail:     mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender),
		resolver: mailtpl.IPAPIResolver{},
		logger:   logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			switch w.process(ctx, msg.Body, msg.Redelivered) {
			case ack:
				_ = msg.Ack(false)
			case retry:
				_ = msg.Nack(false, true)
			default:
				_ = msg.Nack(false, false)
			}
		}
	}()

	logger.Infof("email worker listening on queue=%s", cfg.RabbitMQDownloadQueue)
	<-ctx.Done()
	logger.Info("shutting down...")
	_ = ch.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
