package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"text/template"
	"time"

	"github.com/rs/zerolog"
)

var ErrNotConfigured = errors.New("email notifier not configured")

// QuizCompletion summarises a finished quiz for the admin mailbox.
type QuizCompletion struct {
	UserID          string
	SessionID       string
	Score           int
	MaxScore        int
	Answered        int
	Correct         int
	TotalQuestions  int
	AccuracyPercent float64
	Duration        time.Duration
	CompletedAt     time.Time
}

// EmailConfig holds SMTP configuration.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	AdminEmail   string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier mails quiz completion notices to the admin address over SMTP.
type EmailNotifier struct {
	cfg    EmailConfig
	send   sendFunc
	logger zerolog.Logger
}

func NewEmailNotifier(cfg EmailConfig, logger zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

var completionTmpl = template.Must(template.New("completion").Parse(`Subject: Quiz completado por {{.UserID}}

Hola,

Un estudiante ha completado el quiz de Excel.

Usuario: {{.UserID}}
Sesion: {{.SessionID}}
Puntaje: {{.Score}} / {{.MaxScore}}
Respuestas correctas: {{.Correct}} de {{.Answered}} respondidas ({{.TotalQuestions}} preguntas)
Precision: {{printf "%.1f" .AccuracyPercent}}%
Duracion: {{.Duration}}
Fecha: {{.CompletedAt.Format "2006-01-02 15:04:05 MST"}}
`))

// NotifyQuizCompletion sends the completion notice.
func (n *EmailNotifier) NotifyQuizCompletion(ctx context.Context, c QuizCompletion) error {
	if n.cfg.SMTPHost == "" || n.cfg.SMTPPort == 0 || n.cfg.AdminEmail == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.Duration = c.Duration.Round(time.Second)
	var body bytes.Buffer
	if err := completionTmpl.Execute(&body, c); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)
	var auth smtp.Auth
	if n.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUsername, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\n%s\r\n", n.cfg.FromEmail, n.cfg.AdminEmail, body.String()))

	if err := n.send(addr, auth, n.cfg.FromEmail, []string{n.cfg.AdminEmail}, msg); err != nil {
		n.logger.Error().Err(err).Str("user_id", c.UserID).Msg("failed to send completion email")
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info().Str("user_id", c.UserID).Msg("completion email sent")
	return nil
}
