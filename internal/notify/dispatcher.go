package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/Marcella2706/task2-GeekHaven/internal/helper"
	"github.com/Marcella2706/task2-GeekHaven/internal/mail"
	"github.com/Marcella2706/task2-GeekHaven/internal/metrics"
	"github.com/Marcella2706/task2-GeekHaven/internal/queue"
	"go.uber.org/zap"
)

// Dispatcher turns auth events into transactional mail.
type Dispatcher struct {
	Sender      mail.Sender
	FrontendURL string
	Log         *zap.Logger
}

// Handle returns an error only when a retry could help. Malformed payloads and
// unknown routing keys are dropped.
func (d *Dispatcher) Handle(ctx context.Context, m queue.Message) error {
	l := d.Log.With(zap.String("key", m.Key), zap.String("request_id", m.RequestID))

	var (
		msg  mail.Message
		kind string
		err  error
	)
	switch m.Key {
	case queue.KeyUserRegistered:
		kind = "welcome"
		msg, err = d.welcome(m.Body)
	case queue.KeyPasswordReset:
		kind = "password_reset"
		msg, err = d.passwordReset(m.Body)
	default:
		l.Debug("ignoring event")
		return nil
	}
	if err != nil {
		metrics.MailsSent.WithLabelValues(kind, "dropped").Inc()
		l.Warn("dropping malformed event", zap.Error(err))
		return nil
	}

	if err := d.Sender.Send(ctx, msg); err != nil {
		metrics.MailsSent.WithLabelValues(kind, "error").Inc()
		l.Error("send failed", zap.Error(err), zap.String("to_hash", helper.Hash8(msg.To)))
		return err
	}
	metrics.MailsSent.WithLabelValues(kind, "sent").Inc()
	l.Info("mail sent", zap.String("kind", kind), zap.String("to_hash", helper.Hash8(msg.To)))
	return nil
}

func (d *Dispatcher) welcome(body []byte) (mail.Message, error) {
	var ev queue.UserRegistered
	if err := json.Unmarshal(body, &ev); err != nil {
		return mail.Message{}, err
	}
	if ev.Email == "" {
		return mail.Message{}, fmt.Errorf("user.registered without email")
	}
	name := firstNonEmpty(ev.FullName, "there")
	text := fmt.Sprintf("Hi %s,\n\nWelcome to ReSellHub! Your %s account is ready.", name, firstNonEmpty(ev.Role, "buyer"))
	return mail.Message{
		To:      ev.Email,
		Subject: "Welcome to ReSellHub",
		Text:    text,
		HTML: fmt.Sprintf(`<p>Hi %s,</p><p>Welcome to ReSellHub! Your %s account is ready.</p>`,
			html.EscapeString(name), html.EscapeString(firstNonEmpty(ev.Role, "buyer"))),
	}, nil
}

func (d *Dispatcher) passwordReset(body []byte) (mail.Message, error) {
	var ev queue.PasswordResetRequested
	if err := json.Unmarshal(body, &ev); err != nil {
		return mail.Message{}, err
	}
	if ev.Email == "" || ev.Token == "" {
		return mail.Message{}, fmt.Errorf("user.password_reset without email or token")
	}
	link := d.ResetLink(ev.Token)
	text := fmt.Sprintf("Hi %s,\n\nUse this link to choose a new password:\n%s\n\nIf you did not ask for this, ignore this email.",
		firstNonEmpty(ev.FullName, "there"), link)
	return mail.Message{
		To:      ev.Email,
		Subject: "Reset your ReSellHub password",
		Text:    text,
		HTML: fmt.Sprintf(`<p>Hi %s,</p><p><a href="%s">Choose a new password</a></p><p>If you did not ask for this, ignore this email.</p>`,
			html.EscapeString(firstNonEmpty(ev.FullName, "there")), html.EscapeString(link)),
	}, nil
}

func (d *Dispatcher) ResetLink(token string) string {
	return strings.TrimRight(d.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
