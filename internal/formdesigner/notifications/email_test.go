package notifications

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/aisa-it/formdesigner/internal/formdesigner/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	es := NewEmailService(&config.Config{EmailFrom: "webmaster@localhost", EmailHost: "localhost", EmailPort: 25})

	msg := es.newMessage(Message{To: []string{"a@x.com", "b@x.com"}, Subject: "Contact", Body: "name: Ann"})
	assert.Equal(t, []string{"webmaster@localhost"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Contact"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "name: Ann")

	msg = es.newMessage(Message{From: "forms@x.com", To: []string{"a@x.com"}})
	assert.Equal(t, []string{"forms@x.com"}, msg.GetHeader("From"))
}

func TestSendDisabled(t *testing.T) {
	es := NewEmailService(&config.Config{EmailDisabled: true, EmailHost: "127.0.0.1", EmailPort: 1})
	assert.NoError(t, es.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "s", Body: "b"}))
}

func TestSendNoRecipients(t *testing.T) {
	es := NewEmailService(&config.Config{EmailHost: "127.0.0.1", EmailPort: 1})
	assert.NoError(t, es.Send(context.Background(), Message{Subject: "s"}))
}

func TestSendTransportError(t *testing.T) {
	es := NewEmailService(&config.Config{EmailHost: "127.0.0.1", EmailPort: 1, EmailFrom: "webmaster@localhost"})

	err := es.Send(context.Background(), Message{To: []string{"a@x.com"}, Subject: "s", Body: "b"})
	var trErr *TransportError
	require.True(t, errors.As(err, &trErr), "got %v", err)
	assert.Equal(t, []string{"a@x.com"}, trErr.Recipients)
	assert.Error(t, trErr.Unwrap())
}

func TestSendCanceled(t *testing.T) {
	es := NewEmailService(&config.Config{EmailHost: "127.0.0.1", EmailPort: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, es.Send(ctx, Message{To: []string{"a@x.com"}}), context.Canceled)
}
