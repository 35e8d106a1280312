package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

type EmailService struct {
	client   *resend.Client
	from     string
	fromName string
	logger   *zap.Logger
}

func NewEmailService(apiKey, from, fromName string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:   resend.NewClient(apiKey),
		from:     from,
		fromName: fromName,
		logger:   logger,
	}
}

func (s *EmailService) SendWelcomeEmail(to, fullName string) error {
	html, err := renderTemplate(welcomeTemplate, map[string]interface{}{
		"FullName": fullName,
	})
	if err != nil {
		return err
	}
	return s.send(to, "Welcome to South East Archers!", html)
}

func (s *EmailService) SendPaymentReceipt(to, fullName, description string, amountCents int64, reference string) error {
	html, err := renderTemplate(receiptTemplate, map[string]interface{}{
		"FullName":    fullName,
		"Description": description,
		"Amount":      fmt.Sprintf("%.2f", float64(amountCents)/100),
		"Reference":   reference,
	})
	if err != nil {
		return err
	}
	return s.send(to, "Your payment receipt - South East Archers", html)
}

func (s *EmailService) SendCreditPurchaseReceipt(to, fullName string, quantity int, amountCents int64) error {
	html, err := renderTemplate(creditReceiptTemplate, map[string]interface{}{
		"FullName": fullName,
		"Quantity": quantity,
		"Amount":   fmt.Sprintf("%.2f", float64(amountCents)/100),
	})
	if err != nil {
		return err
	}
	return s.send(to, "Your credit purchase - South East Archers", html)
}

func (s *EmailService) SendCashPaymentPending(to, fullName, description, instructions string) error {
	html, err := renderTemplate(cashPendingTemplate, map[string]interface{}{
		"FullName":     fullName,
		"Description":  description,
		"Instructions": instructions,
	})
	if err != nil {
		return err
	}
	return s.send(to, "Cash payment pending - South East Archers", html)
}

func (s *EmailService) send(to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Error("failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("id", resp.Id),
	)
	return nil
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

const welcomeTemplate = `
<p>Hi {{.FullName}},</p>
<p>Welcome to South East Archers! Your membership will be activated once your
payment has been confirmed.</p>
<p>See you on the range.</p>`

const receiptTemplate = `
<p>Hi {{.FullName}},</p>
<p>We received your payment of &euro;{{.Amount}} for: {{.Description}}.</p>
<p>Reference: {{.Reference}}</p>
<p>Thank you!</p>`

const creditReceiptTemplate = `
<p>Hi {{.FullName}},</p>
<p>Your purchase of {{.Quantity}} shoot credits (&euro;{{.Amount}}) is complete
and the credits have been added to your membership.</p>`

const cashPendingTemplate = `
<p>Hi {{.FullName}},</p>
<p>We have recorded your intent to pay for: {{.Description}}.</p>
<p>{{.Instructions}}</p>`
