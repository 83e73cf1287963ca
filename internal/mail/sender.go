package mail

import (
	"context"
	"fmt"

	"github.com/Marcella2706/task2-GeekHaven/internal/helper"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResend(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) Send(ctx context.Context, m Message) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{m.To},
		Subject: m.Subject,
		Html:    m.HTML,
		Text:    m.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	zap.L().Debug("mail sent", zap.String("id", sent.Id), zap.String("to_hash", helper.Hash8(m.To)))
	return nil
}

// LogSender writes mails to the log instead of sending them. Used when no API key is set.
type LogSender struct {
	L *zap.Logger
}

func (s LogSender) Send(_ context.Context, m Message) error {
	l := s.L
	if l == nil {
		l = zap.L()
	}
	l.Info("mail (log only)",
		zap.String("to", helper.MaskEmail(m.To)),
		zap.String("subject", m.Subject),
		zap.String("text", m.Text),
	)
	return nil
}

// Throttled blocks each Send until the limiter admits it.
type Throttled struct {
	next Sender
	lim  *rate.Limiter
}

func NewThrottled(next Sender, perSecond float64) *Throttled {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Throttled{next: next, lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (t *Throttled) Send(ctx context.Context, m Message) error {
	if err := t.lim.Wait(ctx); err != nil {
		return err
	}
	return t.next.Send(ctx, m)
}
