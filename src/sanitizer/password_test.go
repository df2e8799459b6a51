package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errors   int
	}{
		{"strong", "Str0ngPass", 0},
		{"too short", "Ab1", 1},
		{"no upper", "lowercase1", 1},
		{"no lower", "UPPERCASE1", 1},
		{"no digit", "NoDigitsHere", 1},
		{"empty", "", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePassword(tt.password)
			assert.Equal(t, tt.errors == 0, res.Valid)
			assert.NotNil(t, res.Errors)
			assert.Len(t, res.Errors, tt.errors)
		})
	}
}

func TestValidatePassword_ErrorOrder(t *testing.T) {
	res := ValidatePassword("")
	assert.Equal(t, []string{
		"password must be at least 8 characters long",
		"password must contain at least one uppercase letter",
		"password must contain at least one lowercase letter",
		"password must contain at least one number",
	}, res.Errors)
}
