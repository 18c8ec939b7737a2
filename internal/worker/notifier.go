package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging"
)

// Notifier turns relayed domain events into emails.
type Notifier struct {
	broker messaging.Broker
	mailer email.Service
	logger *logger.Logger
}

func NewNotifier(broker messaging.Broker, mailer email.Service, logger *logger.Logger) *Notifier {
	return &Notifier{
		broker: broker,
		mailer: mailer,
		logger: logger,
	}
}

var notifiedEvents = []string{
	model.EventUserRegistered,
	model.EventAppointmentCreated,
	model.EventAppointmentCancelled,
	model.EventBillingCreated,
	model.EventBillingPaid,
}

// Start subscribes to every event the notifier handles.
func (n *Notifier) Start(ctx context.Context) error {
	for _, topic := range notifiedEvents {
		err := n.broker.Subscribe(ctx, topic, func(raw []byte) error {
			return n.Handle(ctx, raw)
		})
		if err != nil {
			return err
		}
	}
	n.logger.Info("Notifier subscribed", "topics", notifiedEvents)
	return nil
}

func (n *Notifier) Handle(ctx context.Context, raw []byte) error {
	var msg messaging.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	out, err := n.compose(msg)
	if err != nil {
		return fmt.Errorf("failed to handle %s: %w", msg.Type, err)
	}
	if out == nil {
		return nil
	}
	return n.mailer.Send(ctx, *out)
}

// compose returns nil when the event has no recipient.
func (n *Notifier) compose(msg messaging.Message) (*email.Message, error) {
	switch msg.Type {
	case model.EventUserRegistered:
		var p model.UserRegisteredPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, err
		}
		return &email.Message{
			To:      p.Email,
			Subject: "Your hospital account is ready",
			Body: fmt.Sprintf("Hello %s,\n\nAn account with the role %s has been created for you. "+
				"Sign in with this email address and the password given to you by the administrator.", p.Name, p.Role),
		}, nil

	case model.EventAppointmentCreated, model.EventAppointmentCancelled:
		var p model.AppointmentEventPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, err
		}
		if p.PatientEmail == nil || *p.PatientEmail == "" {
			return nil, nil
		}
		verb := "is scheduled"
		subject := "Appointment confirmation"
		if msg.Type == model.EventAppointmentCancelled {
			verb = "has been cancelled"
			subject = "Appointment cancelled"
		}
		return &email.Message{
			To:      *p.PatientEmail,
			Subject: subject,
			Body: fmt.Sprintf("Dear %s,\n\nYour appointment with Dr. %s on %s at %s %s.",
				p.PatientName, p.DoctorName, p.AppointmentDate, p.AppointmentTime, verb),
		}, nil

	case model.EventBillingCreated, model.EventBillingPaid:
		var p model.BillingEventPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return nil, err
		}
		if p.PatientEmail == nil || *p.PatientEmail == "" {
			return nil, nil
		}
		if msg.Type == model.EventBillingCreated {
			return &email.Message{
				To:      *p.PatientEmail,
				Subject: "Invoice " + p.InvoiceNumber,
				Body: fmt.Sprintf("Dear %s,\n\nInvoice %s has been issued for %.2f. Amount paid so far: %.2f.",
					p.PatientName, p.InvoiceNumber, p.TotalAmount, p.PaidAmount),
			}, nil
		}
		return &email.Message{
			To:      *p.PatientEmail,
			Subject: "Payment received for " + p.InvoiceNumber,
			Body: fmt.Sprintf("Dear %s,\n\nWe have received full payment of %.2f for invoice %s. Thank you.",
				p.PatientName, p.PaidAmount, p.InvoiceNumber),
		}, nil
	}
	return nil, nil
}
