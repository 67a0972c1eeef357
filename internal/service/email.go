package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"propdesk-backend/internal/config"
	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
)

type emailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// mailer delivers a rendered plain-text message.
type mailer interface {
	Send(ctx context.Context, msg emailMessage) error
}

type smtpMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func (m *smtpMailer) Send(ctx context.Context, msg emailMessage) error {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetAddressHeader("To", msg.To, msg.ToName)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(gm); err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	return nil
}

type sendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func (m *sendGridMailer) Send(ctx context.Context, msg emailMessage) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, "")

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

type emailService struct {
	mailer mailer
}

// NewEmailService picks the provider named in the email config, defaulting to SMTP.
func NewEmailService(smtpCfg config.SMTPConfig, emailCfg config.EmailConfig) EmailService {
	if emailCfg.Provider == "sendgrid" {
		return &emailService{mailer: &sendGridMailer{
			client:    sendgrid.NewSendClient(emailCfg.SendGridAPIKey),
			fromEmail: smtpCfg.From,
			fromName:  emailCfg.FromName,
		}}
	}
	return &emailService{mailer: &smtpMailer{
		host:     smtpCfg.Host,
		port:     smtpCfg.Port,
		username: smtpCfg.User,
		password: smtpCfg.Password,
		from:     smtpCfg.From,
	}}
}

func (s *emailService) send(ctx context.Context, method string, msg emailMessage) error {
	logger.ExternalServiceCall("email", method, "to", msg.To)
	err := s.mailer.Send(ctx, msg)
	logger.ExternalServiceResult("email", method, err)
	return err
}

// formatAmount renders minor units as a two-decimal amount.
func formatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

func (s *emailService) SendAgentCredentials(ctx context.Context, email, name, tempPassword string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour agent application has been approved.\n\nSign in with:\n\n  Email: %s\n  Temporary password: %s\n\nYou will be asked to choose a new password at first sign-in.\n\nBest regards,\nThe PropDesk Team", name, email, tempPassword)
	return s.send(ctx, "SendAgentCredentials", emailMessage{
		To:      email,
		ToName:  name,
		Subject: "Your PropDesk agent account",
		Body:    body,
	})
}

func (s *emailService) SendApplicationRejected(ctx context.Context, email, name, reason string) error {
	body := fmt.Sprintf("Hello %s,\n\nThank you for applying to become a PropDesk agent. Unfortunately your application was not approved.", name)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nBest regards,\nThe PropDesk Team"
	return s.send(ctx, "SendApplicationRejected", emailMessage{
		To:      email,
		ToName:  name,
		Subject: "Your PropDesk agent application",
		Body:    body,
	})
}

func (s *emailService) SendCommissionUpdate(ctx context.Context, email, name string, c *domain.AgentCommission) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	switch c.Status {
	case domain.CommissionStatusPaid:
		fmt.Fprintf(&b, "Commission #%d of %s has been paid.", c.ID, formatAmount(c.Amount))
	case domain.CommissionStatusCancelled:
		fmt.Fprintf(&b, "Commission #%d of %s has been cancelled.", c.ID, formatAmount(c.Amount))
	default:
		fmt.Fprintf(&b, "You earned a new commission #%d of %s for transaction #%d.", c.ID, formatAmount(c.Amount), c.TransactionID)
	}
	if c.Notes != "" {
		fmt.Fprintf(&b, "\n\nNotes: %s", c.Notes)
	}
	b.WriteString("\n\nBest regards,\nThe PropDesk Team")

	return s.send(ctx, "SendCommissionUpdate", emailMessage{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Commission #%d %s", c.ID, c.Status),
		Body:    b.String(),
	})
}

func (s *emailService) SendCommissionStatement(ctx context.Context, email, name string, period domain.Period, report *domain.AgentReport, commissions []domain.AgentCommission) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nYour commission statement for %s:\n\n", name, period.From.Format("January 2006"))
	fmt.Fprintf(&b, "  Commissions: %d\n  Total:       %s\n  Paid:        %s\n  Pending:     %s\n  Cancelled:   %s\n",
		report.Count, formatAmount(report.Total), formatAmount(report.Paid), formatAmount(report.Pending), formatAmount(report.Cancelled))
	if len(commissions) > 0 {
		b.WriteString("\nDetails:\n")
		for _, c := range commissions {
			fmt.Fprintf(&b, "  #%d  %s  %-9s  %s\n", c.ID, c.CreatedAt.Format("2006-01-02"), c.Status, formatAmount(c.Amount))
		}
	}
	b.WriteString("\nBest regards,\nThe PropDesk Team")

	return s.send(ctx, "SendCommissionStatement", emailMessage{
		To:      email,
		ToName:  name,
		Subject: fmt.Sprintf("Commission statement %s", period.From.Format("2006-01")),
		Body:    b.String(),
	})
}

func (s *emailService) SendPendingPayoutDigest(ctx context.Context, email string, reports []domain.AgentReport) error {
	var b strings.Builder
	var total int64
	b.WriteString("Pending commission payouts:\n\n")
	for _, r := range reports {
		fmt.Fprintf(&b, "  %-30s %s\n", r.AgentName, formatAmount(r.Pending))
		total += r.Pending
	}
	fmt.Fprintf(&b, "\n  %-30s %s\n", "Total", formatAmount(total))

	return s.send(ctx, "SendPendingPayoutDigest", emailMessage{
		To:      email,
		Subject: fmt.Sprintf("%d agents awaiting payout", len(reports)),
		Body:    b.String(),
	})
}
