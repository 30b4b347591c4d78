package mailing

import (
	"fmt"
	"io/fs"
	"strings"
	"time"

	"html/template"

	"github.com/go-mail/mail"
	"github.com/jaytaylor/html2text"
	"go.uber.org/zap"

	"github.com/hearthhq/hearth/config"
)

// Mailer delivers invitation emails. When SMTP is disabled it turns
// into a noop so invite links stay share-it-yourself only.
type Mailer struct {
	noop          bool
	client        *mail.Dialer
	log           *zap.Logger
	cfg           *config.Configuration
	emailTemplate *template.Template
}

func (m *Mailer) baseModel(title string, message string) map[string]interface{} {
	b := make(map[string]interface{})
	b["service_name"] = m.cfg.Behaviour.Name
	b["date"] = time.Now().Format("2006-01-02 15:04")
	b["site"] = m.cfg.Behaviour.Site
	b["title"] = title
	b["message"] = message
	return b
}

// SendInviteMail sends the accept link for a pending family
// invitation to the invitee
func (m *Mailer) SendInviteMail(
	email string,
	familyName string,
	link string,
	expiresAt time.Time,
) error {
	if m.noop {
		m.log.Info("skipping email `Invite` because noop is configured")
		return nil
	}
	subject := fmt.Sprintf("You have been invited to join %s", familyName)
	base := m.baseModel(
		subject,
		fmt.Sprintf(
			"Someone invited you to join the family %s. The invitation is valid until %s.",
			familyName,
			expiresAt.Format("2006-01-02 15:04 MST"),
		),
	)
	base["link_text"] = "Accept invitation"
	base["link"] = link
	base["subject"] = subject
	return m.send(email, subject, base)
}

// SendTestEmail verifies the smtp configuration
func (m *Mailer) SendTestEmail(email string) error {
	base := m.baseModel("This is a test", "hey, your email configuration seems to be fine.")
	base["subject"] = "Your test email is here!"
	base["link"] = m.cfg.Behaviour.Site
	base["link_text"] = "test"
	return m.send(email, "Your test email is here!", base)
}

func (m *Mailer) send(email string, subject string, viewModel map[string]interface{}) error {
	buffer := new(strings.Builder)
	err := m.emailTemplate.Execute(buffer, viewModel)
	if err != nil {
		return err
	}
	html := buffer.String()
	text, err := html2text.FromString(html, html2text.Options{PrettyTables: true})
	if err != nil {
		return err
	}
	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.SMTP.Address, m.cfg.SMTP.DisplayName)
	msg.SetAddressHeader("To", email, "")
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)
	return m.client.DialAndSend(msg)
}

func NewMailer(
	log *zap.Logger,
	cfg *config.Configuration,
	files fs.FS,
) (*Mailer, error) {
	t, err := template.ParseFS(files, "template.html")
	if err != nil {
		return nil, err
	}
	s := &Mailer{
		noop:          cfg.SMTP == nil || !cfg.SMTP.Enabled,
		log:           log,
		emailTemplate: t,
		cfg:           cfg,
	}
	if !s.noop {
		s.client = mail.NewDialer(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
		)
	}
	return s, nil
}

func NewNoOpMailer(log *zap.Logger, cfg *config.Configuration) *Mailer {
	return &Mailer{
		noop: true,
		log:  log,
		cfg:  cfg,
	}
}
