package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sendgrid/sendgrid-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(t *testing.T, status int) (*sendGridMailer, *int) {
	t.Helper()
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	client := sendgrid.NewSendClient("test-key")
	client.BaseURL = srv.URL
	return &sendGridMailer{client: client, from: "shop@example.com", fromName: "Shop.co"}, &calls
}

func TestSendGridMailer_Send(t *testing.T) {
	m, calls := newTestMailer(t, http.StatusAccepted)

	require.NoError(t, m.Send(context.Background(), "ada@example.com", "Order confirmed", "thanks"))
	assert.Equal(t, 1, *calls)
}

func TestSendGridMailer_RejectedStatus(t *testing.T) {
	m, _ := newTestMailer(t, http.StatusBadRequest)

	err := m.Send(context.Background(), "ada@example.com", "Order confirmed", "thanks")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
}

func TestSendGridMailer_HonoursCancelledContext(t *testing.T) {
	m, calls := newTestMailer(t, http.StatusAccepted)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, "ada@example.com", "Order confirmed", "thanks")
	require.Error(t, err)
	assert.Equal(t, 0, *calls)
}

func TestSendGridMailer_EmptyRecipient(t *testing.T) {
	m, calls := newTestMailer(t, http.StatusAccepted)

	assert.Error(t, m.Send(context.Background(), "", "subject", "body"))
	assert.Equal(t, 0, *calls)
}
