package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	texttemplate "text/template"

	"go-remedyflow/internal/model"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
	TMPLDir  string
}

type emailTemplate struct {
	name    string
	subject string
}

// Customers are mailed on these statuses only.
var emailTemplates = map[model.OrderStatus]emailTemplate{
	model.OrderStatusConfirmed: {"order_confirmed", "Your order %s is confirmed"},
	model.OrderStatusCancelled: {"order_cancelled", "Your order %s was cancelled"},
	model.OrderStatusShipped:   {"order_shipped", "Your order %s is on its way"},
	model.OrderStatusDelivered: {"order_delivered", "Your order %s was delivered"},
}

type EmailSender struct {
	cfg  SMTPConfig
	log  *zap.Logger
	send func(m *gomail.Message) error
}

func NewEmailSender(cfg SMTPConfig, log *zap.Logger) *EmailSender {
	s := &EmailSender{cfg: cfg, log: log}
	s.send = s.dialAndSend
	return s
}

func (s *EmailSender) OrderStatusChanged(ctx context.Context, ev model.OrderStatusEvent) error {
	tmpl, ok := emailTemplates[ev.Status]
	if !ok {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := map[string]any{
		"CustomerName": ev.CustomerName,
		"OrderNumber":  ev.OrderNumber,
		"ProductName":  ev.ProductName,
		"ProductImage": ev.ProductImage,
		"Quantity":     ev.Quantity,
		"TotalAmount":  ev.TotalAmount.StringFixed(2),
		"Status":       string(ev.Status),
		"Address":      ev.Address,
	}
	htmlBody, err := s.renderHTML(tmpl.name, data)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	plainBody, err := s.renderPlain(tmpl.name, data)
	if err != nil {
		return fmt.Errorf("render plain: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", ev.Email)
	m.SetHeader("Subject", fmt.Sprintf(tmpl.subject, ev.OrderNumber))
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.send(m); err != nil {
		return fmt.Errorf("send %s email: %w", tmpl.name, err)
	}
	s.log.Info("order email sent", zap.String("order_number", ev.OrderNumber), zap.String("template", tmpl.name))
	return nil
}

func (s *EmailSender) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	d.SSL = s.cfg.SSL
	return d.DialAndSend(m)
}

func (s *EmailSender) renderHTML(name string, data map[string]any) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.cfg.TMPLDir, name+".html"))
	if err != nil {
		return "", err
	}
	tmpl, err := htmltemplate.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *EmailSender) renderPlain(name string, data map[string]any) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.cfg.TMPLDir, name+".txt"))
	if err != nil {
		return "", err
	}
	tmpl, err := texttemplate.New(name).Parse(string(content))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
