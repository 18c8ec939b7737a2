package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/pkg/logger"
)

func TestBuild(t *testing.T) {
	svc := NewService(config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@hospital.local"}, logger.Nop())

	m := svc.build(Message{To: "jane@example.com", Subject: "Appointment confirmed", Body: "See you soon"})
	assert.Equal(t, []string{"no-reply@hospital.local"}, m.GetHeader("From"))
	assert.Equal(t, []string{"jane@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Appointment confirmed"}, m.GetHeader("Subject"))
}

func TestSend_Queues(t *testing.T) {
	svc := NewService(config.SMTPConfig{Host: "smtp.example.com", Port: 587}, logger.Nop())

	require.NoError(t, svc.Send(context.Background(), Message{To: "a@example.com"}))
	assert.Len(t, svc.queue, 1)
}

func TestSend_DisabledDrops(t *testing.T) {
	svc := NewService(config.SMTPConfig{}, logger.Nop())

	require.NoError(t, svc.Send(context.Background(), Message{To: "a@example.com"}))
	assert.Len(t, svc.queue, 0)
}

func TestSend_ContextCancelled(t *testing.T) {
	svc := NewService(config.SMTPConfig{Host: "smtp.example.com"}, logger.Nop())
	svc.queue = make(chan *gomail.Message)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.Send(ctx, Message{To: "a@example.com"}), context.Canceled)
}
