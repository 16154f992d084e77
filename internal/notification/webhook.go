package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/KromaEnergia/api-crm/internal/logger"
)

const (
	EventDuplicateEmail    = "contact.duplicate_email"
	EventContactReassigned = "contact.reassigned"
)

// Event é o payload enviado ao webhook de alertas.
type Event struct {
	Type       string    `json:"event"`
	Message    string    `json:"message"`
	ContactID  uint      `json:"contactId"`
	Email      string    `json:"email,omitempty"`
	FromUserID uint      `json:"fromUserId,omitempty"`
	ToUserID   uint      `json:"toUserId,omitempty"`
	ActorID    uint      `json:"actorId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// Nop descarta os eventos; usado quando ALERT_WEBHOOK_URL está vazio.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}

type Webhook struct {
	URL    string
	Client *http.Client
}

// New devolve Nop quando url é vazia.
func New(url string) Notifier {
	if url == "" {
		return Nop{}
	}
	return &Webhook{URL: url, Client: &http.Client{Timeout: 5 * time.Second}}
}

// Notify envia o alerta. Falhas são apenas logadas: o alerta nunca derruba a requisição.
func (w *Webhook) Notify(ctx context.Context, e Event) {
	if err := w.send(ctx, e); err != nil {
		logger.FromContext(logger.Get("notification"), ctx).
			WithError(err).WithField("event", e.Type).Warn("falha ao enviar webhook de alerta")
	}
}

func (w *Webhook) send(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set(logger.RequestIDHeader, id)
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook respondeu %d", resp.StatusCode)
	}
	return nil
}
