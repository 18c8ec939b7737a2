package validator

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type service struct {
	Name   string  `json:"name" binding:"required"`
	Amount float64 `json:"amount" binding:"min=0"`
}

type sample struct {
	Email    string    `json:"email" binding:"required,email"`
	Gender   string    `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	Password string    `json:"password" binding:"required,min=8"`
	Services []service `json:"services" binding:"required,min=1,dive"`
}

func TestFields(t *testing.T) {
	Setup()

	err := binding.Validator.ValidateStruct(&sample{
		Email:    "nope",
		Gender:   "X",
		Password: "short",
		Services: []service{{Name: "", Amount: -1}},
	})
	require.Error(t, err)

	fields := Fields(err)
	byField := map[string]string{}
	for _, f := range fields {
		byField[f.Field] = f.Message
	}

	assert.Equal(t, "must be a valid email address", byField["email"])
	assert.Equal(t, "must be one of: MALE, FEMALE, OTHER", byField["gender"])
	assert.Equal(t, "must be at least 8 characters", byField["password"])
	assert.Equal(t, "is required", byField["services[0].name"])
	assert.Equal(t, "must be at least 0", byField["services[0].amount"])
}

func TestFields_NonValidatorError(t *testing.T) {
	assert.Nil(t, Fields(errors.New("unexpected EOF")))
}
