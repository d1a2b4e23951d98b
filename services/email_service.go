package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"tutorhub/config"
	"tutorhub/utils"
)

// EmailService provides methods to send notification emails
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	config *config.Config
}

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		config: cfg,
	}
}

// SendEmail sends an email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// SendEnrollmentConfirmation sends an enrollment confirmation
func (s *EmailService) SendEnrollmentConfirmation(to, studentName, courseName string, joinDate time.Time) error {
	subject := "Enrollment confirmation"
	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>You have been enrolled in <b>%s</b>.</p>
		<p>Tuition is billed from: %s</p>
		<p>Your payment schedule is available in your account.</p>
	`, studentName, courseName, joinDate.Format("02.01.2006"))

	return s.SendEmail(to, subject, body)
}

// SendPaymentReminder sends a reminder for an overdue payment
func (s *EmailService) SendPaymentReminder(to, courseName string, amount decimal.Decimal, dueDate time.Time) error {
	subject := "Tuition payment overdue"
	body := fmt.Sprintf(`
		<h2>Payment reminder</h2>
		<p>Course: %s</p>
		<p>Amount due: %s</p>
		<p>Due date: %s</p>
		<p>Please settle this payment at your earliest convenience.</p>
	`, courseName, amount.StringFixed(2), dueDate.Format("02.01.2006"))

	return s.SendEmail(to, subject, body)
}

// SendPaymentReceipt sends a receipt after a payment is settled
func (s *EmailService) SendPaymentReceipt(to, courseName string, amount decimal.Decimal, receiptRef string) error {
	subject := "Payment received"
	body := fmt.Sprintf(`
		<h2>Thank you for your payment</h2>
		<p>Course: %s</p>
		<p>Amount: %s</p>
		<p>Receipt reference: %s</p>
		<p>Date: %s</p>
	`, courseName, amount.StringFixed(2), receiptRef, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}

// SendStatement sends a billing statement. When a statement PGP key is
// configured the statement body is encrypted before it leaves the system.
func (s *EmailService) SendStatement(to, statement string) error {
	subject := "Your billing statement"
	body := statement

	if s.config.Billing.StatementPGPKey != "" {
		encrypted, err := utils.PGPEncrypt(statement, s.config.Billing.StatementPGPKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt statement: %v", err)
		}
		body = fmt.Sprintf("<pre>%s</pre>", encrypted)
	}

	return s.SendEmail(to, subject, body)
}
