package model

import (
	"testing"

	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRegisterRequestProfile(t *testing.T) {
	t.Run("doctor requires specialization and qualification", func(t *testing.T) {
		req := RegisterRequest{Role: RoleDoctor}
		_, err := req.Profile()
		require.Error(t, err)

		appErr := apperrors.As(err)
		assert.Equal(t, apperrors.ErrValidationFailed, appErr.Code)
		assert.Len(t, appErr.Fields, 2)
	})

	t.Run("doctor fields resolve", func(t *testing.T) {
		exp := 10
		fee := 500.0
		req := RegisterRequest{
			Role:            RoleDoctor,
			Specialization:  strPtr(" Cardiology "),
			Qualification:   strPtr("MD"),
			Experience:      &exp,
			ConsultationFee: &fee,
		}
		profile, err := req.Profile()
		require.NoError(t, err)

		fields, ok := profile.(DoctorFields)
		require.True(t, ok)
		assert.Equal(t, "Cardiology", fields.Specialization)
		assert.Equal(t, 10, fields.Experience)
		assert.Equal(t, RoleDoctor, profile.ProfileRole())
	})

	t.Run("receptionist shift is optional", func(t *testing.T) {
		req := RegisterRequest{Role: RoleReceptionist}
		profile, err := req.Profile()
		require.NoError(t, err)
		assert.Equal(t, ReceptionistFields{}, profile)
	})

	t.Run("lab staff rejects doctor fields", func(t *testing.T) {
		req := RegisterRequest{Role: RoleLabStaff, Specialization: strPtr("Pathology")}
		_, err := req.Profile()
		require.Error(t, err)
		assert.Equal(t, "specialization", apperrors.As(err).Fields[0].Field)
	})

	t.Run("admin has no profile", func(t *testing.T) {
		req := RegisterRequest{Role: RoleAdmin}
		profile, err := req.Profile()
		require.NoError(t, err)
		assert.Nil(t, profile)

		req.Department = strPtr("Radiology")
		_, err = req.Profile()
		assert.Error(t, err)
	})
}
