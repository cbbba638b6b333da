package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nasihat/dashboard-api/config"
	"github.com/nasihat/dashboard-api/pkg/mailer"
)

// Worker that drains the email queue and delivers through Mailgun.
// Runs as its own binary so mail delivery never blocks a login request.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if !cfg.MailSendEnabled {
		log.Println("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// Prefetch for fair dispatch
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	if _, err := ch.QueueDeclare(cfg.RabbitMQEmailQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range msgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				log.Printf("bad message: %v", err)
				_ = msg.Nack(false, false)
				continue
			}
			if job.To == "" {
				log.Printf("message without recipient dropped")
				_ = msg.Nack(false, false)
				continue
			}

			subject, text := renderJob(job)
			if subject == "" || text == "" {
				log.Printf("unknown template %q for %s", job.Template, job.To)
				_ = msg.Nack(false, false)
				continue
			}

			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			if err := mg.Send(c, job.To, subject, text); err != nil {
				cancel()
				log.Printf("send to %s failed: %v", job.To, err)
				_ = msg.Nack(false, true)
				continue
			}
			cancel()
			_ = msg.Ack(false)
		}
		close(done)
	}()

	log.Printf("email worker listening on queue=%s", cfg.RabbitMQEmailQueue)
	<-stop
	log.Printf("shutting down...")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// renderJob resolves the message body: verbatim subject/text win, otherwise
// the named template is rendered from job.Data.
func renderJob(job mailer.EmailJob) (subject, text string) {
	if job.Subject != "" && job.Text != "" {
		return job.Subject, job.Text
	}

	name := fmt.Sprintf("%v", job.Data["Name"])
	if name == "" || name == "<nil>" {
		name = "there"
	}

	switch job.Template {
	case mailer.TemplateWelcome:
		subject = "Welcome to Nasihat"
		text = fmt.Sprintf(
			"Hi %s,\n\nYour account is ready. Sign in any time to track job openings, manage applications, and keep your profile up to date.\n\nThe Nasihat team\n",
			name,
		)
	case mailer.TemplateLoginNotification:
		subject = "New sign-in to your account"
		text = fmt.Sprintf(
			"Hi %s,\n\nWe noticed a new sign-in to your account. If this was you, no action is needed. If not, please reset your password.\n\nThe Nasihat team\n",
			name,
		)
	}
	return subject, text
}
