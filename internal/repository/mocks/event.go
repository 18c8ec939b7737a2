package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Recorder stands in for the outbox event recorder.
type Recorder struct {
	mock.Mock
}

func (m *Recorder) Record(ctx context.Context, eventType string, aggregateID uuid.UUID, payload interface{}) error {
	return m.Called(ctx, eventType, aggregateID, payload).Error(0)
}
