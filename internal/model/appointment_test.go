package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentTransitions(t *testing.T) {
	all := []AppointmentStatus{
		AppointmentStatusScheduled,
		AppointmentStatusInProgress,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
	}
	allowed := map[AppointmentStatus]map[AppointmentStatus]bool{
		AppointmentStatusScheduled: {
			AppointmentStatusInProgress: true,
			AppointmentStatusCompleted:  true,
			AppointmentStatusCancelled:  true,
		},
		AppointmentStatusInProgress: {
			AppointmentStatusCompleted: true,
			AppointmentStatusCancelled: true,
		},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, AppointmentStatusCompleted.IsTerminal())
	assert.True(t, AppointmentStatusCancelled.IsTerminal())
	assert.False(t, AppointmentStatusScheduled.IsTerminal())
}

func TestLabReportTransitions(t *testing.T) {
	assert.True(t, LabReportStatusPending.CanTransitionTo(LabReportStatusInProgress))
	assert.True(t, LabReportStatusPending.CanTransitionTo(LabReportStatusCompleted))
	assert.True(t, LabReportStatusInProgress.CanTransitionTo(LabReportStatusCompleted))

	assert.False(t, LabReportStatusInProgress.CanTransitionTo(LabReportStatusPending))
	assert.False(t, LabReportStatusCompleted.CanTransitionTo(LabReportStatusPending))
	assert.False(t, LabReportStatusCompleted.CanTransitionTo(LabReportStatusInProgress))
}
