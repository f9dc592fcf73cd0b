package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v5"

	"github.com/homekeep-app/homekeep/internal/model"
)

const sendTimeout = 10 * time.Second

// Config holds Mailgun settings.
type Config struct {
	Domain      string
	APIKey      string
	SenderEmail string
	SenderName  string
}

// Service sends transactional email. All callers treat failures as
// best-effort: log and continue.
type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	enabled     bool
}

func NewService(cfg Config) *Service {
	enabled := cfg.Domain != "" && cfg.APIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.APIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.Domain,
		senderEmail: cfg.SenderEmail,
		senderName:  cfg.SenderName,
		enabled:     enabled,
	}
}

// Configured returns true when Mailgun credentials are set.
func (s *Service) Configured() bool {
	return s.enabled
}

func (s *Service) send(toEmail, subject, textBody, htmlBody string) error {
	if !s.enabled {
		return fmt.Errorf("email service not configured")
	}

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		textBody,
		toEmail,
	)
	message.SetHTML(htmlBody)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("send email to %s: %w", toEmail, err)
	}
	return nil
}

// SendBudgetAlert emails a single budget alert notification.
func (s *Service) SendBudgetAlert(toEmail, planName, message string) error {
	subject := fmt.Sprintf("Budget alert: %s", planName)
	text := message + "\n\nReview your budget in Homekeep to keep spending on track."
	html := fmt.Sprintf("<p>%s</p><p>Review your budget in Homekeep to keep spending on track.</p>", message)
	return s.send(toEmail, subject, text, html)
}

// SendWarrantyDigest emails one summary of upcoming warranty expirations.
func (s *Service) SendWarrantyDigest(toEmail string, items []model.InventoryItem, now time.Time) error {
	subject := fmt.Sprintf("%d warranties expiring soon", len(items))

	var text, html strings.Builder
	text.WriteString("The following items have warranties expiring within 90 days:\n\n")
	html.WriteString("<p>The following items have warranties expiring within 90 days:</p><ul>")
	for _, it := range items {
		days := int(it.WarrantyExpires.Sub(now).Hours() / 24)
		line := fmt.Sprintf("%s - expires %s (%d days)", it.Name, it.WarrantyExpires.Format("Jan 2, 2006"), days)
		text.WriteString("- " + line + "\n")
		html.WriteString("<li>" + line + "</li>")
	}
	html.WriteString("</ul>")

	return s.send(toEmail, subject, text.String(), html.String())
}
