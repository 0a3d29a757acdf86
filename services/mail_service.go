package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"social-blog/models"
	"social-blog/templates"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender delivers a fully rendered message.
type Sender interface {
	Send(email *models.Email) error
}

// MailData is the template data of the account emails.
type MailData struct {
	User *models.User
	URL  string
}

type MailService interface {
	// SendEmail renders email/<name>.txt and email/<name>.html with data and
	// delivers the result in the background.
	SendEmail(to, subject, name string, data interface{}) error
	SendText(to, subject, body string)
}

type mailService struct {
	sender Sender
	prefix string
	from   string
	text   *template.Template
	html   *htmltemplate.Template
	log    *logrus.Logger
}

func NewMailService(sender Sender, prefix, from string, log *logrus.Logger) MailService {
	return &mailService{
		sender: sender,
		prefix: prefix,
		from:   from,
		text:   template.Must(template.ParseFS(templates.FS, "email/*.txt")),
		html:   htmltemplate.Must(htmltemplate.ParseFS(templates.FS, "email/*.html")),
		log:    log,
	}
}

func (s *mailService) SendEmail(to, subject, name string, data interface{}) error {
	var text, html bytes.Buffer
	if err := s.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return fmt.Errorf("render %s.txt: %w", name, err)
	}
	if err := s.html.ExecuteTemplate(&html, name+".html", data); err != nil {
		return fmt.Errorf("render %s.html: %w", name, err)
	}

	s.deliver(&models.Email{
		From:    s.from,
		To:      []string{to},
		Subject: s.prefix + " " + subject,
		Text:    text.String(),
		HTML:    html.String(),
	})
	return nil
}

func (s *mailService) SendText(to, subject, body string) {
	s.deliver(&models.Email{
		From:    s.from,
		To:      []string{to},
		Subject: s.prefix + " " + subject,
		Text:    body,
	})
}

// deliver is fire-and-forget. Failures are logged at WARN: the admin mail
// hook fires on ERROR and must not be re-triggered by its own delivery.
func (s *mailService) deliver(email *models.Email) {
	go func() {
		if err := s.sender.Send(email); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"to":      email.To,
				"subject": email.Subject,
			}).Warn("mail delivery failed")
		}
	}()
}

type smtpSender struct {
	dialer *gomail.Dialer
}

func NewSMTPSender(host string, port int, username, password string) Sender {
	return &smtpSender{dialer: gomail.NewDialer(host, port, username, password)}
}

func (s *smtpSender) Send(email *models.Email) error {
	m := gomail.NewMessage()
	m.SetHeader("From", email.From)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Text)
	if email.HTML != "" {
		m.AddAlternative("text/html", email.HTML)
	}
	return s.dialer.DialAndSend(m)
}

type logSender struct {
	log *logrus.Logger
}

// NewLogSender logs messages instead of delivering them; used when no SMTP
// credentials are configured.
func NewLogSender(log *logrus.Logger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(email *models.Email) error {
	s.log.WithFields(logrus.Fields{
		"to":      email.To,
		"subject": email.Subject,
	}).Info("mail not sent (no transport configured)")
	s.log.Debug(email.Text)
	return nil
}

// AdminMailHook mails ERROR and worse log entries to the administrator.
type AdminMailHook struct {
	mail  MailService
	admin string
}

func NewAdminMailHook(mail MailService, admin string) *AdminMailHook {
	return &AdminMailHook{mail: mail, admin: admin}
}

func (h *AdminMailHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *AdminMailHook) Fire(entry *logrus.Entry) error {
	body, err := entry.String()
	if err != nil {
		body = entry.Message
	}
	h.mail.SendText(h.admin, "Application Error", body)
	return nil
}
