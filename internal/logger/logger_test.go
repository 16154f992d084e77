package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextAddsRequestAndUser(t *testing.T) {
	l, hook := test.NewNullLogger()
	ctx := ContextWithUserID(ContextWithRequestID(context.Background(), "req-1"), 7)

	FromContext(l, ctx).Info("hello")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "req-1", entry.Data["request_id"])
	assert.Equal(t, uint(7), entry.Data["user_id"])
}

func TestFromContextWithoutFields(t *testing.T) {
	l, hook := test.NewNullLogger()
	FromContext(l, context.Background()).Warn("bare")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Empty(t, entry.Data)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
}

func TestRequestLoggerAssignsRequestID(t *testing.T) {
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
}

func TestRequestLoggerKeepsValidIncomingID(t *testing.T) {
	incoming := uuid.NewString()
	var seen string
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, incoming)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, incoming, seen)
}
