package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KromaEnergia/api-crm/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPostsEvent(t *testing.T) {
	var got Event
	var reqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID = r.Header.Get(logger.RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := New(srv.URL)
	wh, ok := n.(*Webhook)
	require.True(t, ok)

	ctx := logger.ContextWithRequestID(context.Background(), "req-9")
	at := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	err := wh.send(ctx, Event{Type: EventDuplicateEmail, ContactID: 42, Email: "dup@acme.test", OccurredAt: at})
	require.NoError(t, err)

	assert.Equal(t, EventDuplicateEmail, got.Type)
	assert.Equal(t, uint(42), got.ContactID)
	assert.Equal(t, "dup@acme.test", got.Email)
	assert.True(t, at.Equal(got.OccurredAt))
	assert.Equal(t, "req-9", reqID)
}

func TestWebhookReportsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := New(srv.URL).(*Webhook)
	assert.Error(t, wh.send(context.Background(), Event{Type: EventContactReassigned}))

	// Notify engole o erro
	wh.Notify(context.Background(), Event{Type: EventContactReassigned})
}

func TestNewWithoutURLIsNop(t *testing.T) {
	_, ok := New("").(Nop)
	assert.True(t, ok)
}
