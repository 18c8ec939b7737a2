package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func encode(t *testing.T, eventType string, payload interface{}) []byte {
	t.Helper()
	p, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(messaging.Message{ID: uuid.NewString(), Type: eventType, Payload: p})
	require.NoError(t, err)
	return raw
}

func TestNotifier_AppointmentCreated(t *testing.T) {
	mailer := new(mockMailer)
	n := NewNotifier(messaging.NewNopBroker(), mailer, logger.Nop())

	patientEmail := "jane@example.com"
	date, err := model.ParseDate("2024-05-01")
	require.NoError(t, err)

	mailer.On("Send", mock.Anything, mock.MatchedBy(func(m email.Message) bool {
		return m.To == patientEmail && m.Subject == "Appointment confirmation" && m.Body != ""
	})).Return(nil)

	raw := encode(t, model.EventAppointmentCreated, model.AppointmentEventPayload{
		PatientName:     "Jane Doe",
		PatientEmail:    &patientEmail,
		DoctorName:      "Gregory House",
		AppointmentDate: date,
		AppointmentTime: "10:30",
	})
	require.NoError(t, n.Handle(context.Background(), raw))
	mailer.AssertExpectations(t)
}

func TestNotifier_SkipsWithoutEmail(t *testing.T) {
	mailer := new(mockMailer)
	n := NewNotifier(messaging.NewNopBroker(), mailer, logger.Nop())

	raw := encode(t, model.EventBillingPaid, model.BillingEventPayload{InvoiceNumber: "INV-20240101-ABC123"})
	require.NoError(t, n.Handle(context.Background(), raw))
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotifier_UnknownEventIgnored(t *testing.T) {
	mailer := new(mockMailer)
	n := NewNotifier(messaging.NewNopBroker(), mailer, logger.Nop())

	raw := encode(t, model.EventPrescriptionCreated, model.PrescriptionEventPayload{})
	require.NoError(t, n.Handle(context.Background(), raw))
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestNotifier_BadMessage(t *testing.T) {
	n := NewNotifier(messaging.NewNopBroker(), new(mockMailer), logger.Nop())
	assert.Error(t, n.Handle(context.Background(), []byte("not json")))
}
