package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/bookstacksapp/bookstacks-server/internal/errors"
	"github.com/bookstacksapp/bookstacks-server/internal/validation"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"required"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := signupRequest{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test User",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       signupRequest
		wantField string
	}{
		{
			name: "missing required field",
			req: signupRequest{
				Email:    "test@example.com",
				Password: "password123",
				Name:     "", // Missing
			},
			wantField: "name",
		},
		{
			name: "invalid email",
			req: signupRequest{
				Email:    "not-an-email",
				Password: "password123",
				Name:     "Test",
			},
			wantField: "email",
		},
		{
			name: "password too short",
			req: signupRequest{
				Email:    "test@example.com",
				Password: "short",
				Name:     "Test",
			},
			wantField: "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var appErr *apperrors.Error
			if assert.True(t, apperrors.As(err, &appErr)) {
				assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())

				fields, ok := appErr.Details.(map[string]string)
				if assert.True(t, ok) {
					assert.Contains(t, fields, tt.wantField)
				}
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := signupRequest{
		Email:    "",
		Password: "password123",
		Name:     "Test",
	}

	err := v.Validate(req)
	assert.Error(t, err)

	var appErr *apperrors.Error
	if assert.True(t, apperrors.As(err, &appErr)) {
		fields, ok := appErr.Details.(map[string]string)
		if assert.True(t, ok) {
			// JSON tag name "email", not struct field name "Email"
			assert.Contains(t, fields, "email")
			assert.NotContains(t, fields, "Email")
		}
	}
}
