package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/trustkit/internal/errors"
)

func TestRecordKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		shouldErr bool
		errMsg    string
	}{
		{
			name:      "valid key",
			key:       "user-pin",
			shouldErr: false,
		},
		{
			name:      "empty key passes through to Required",
			key:       "",
			shouldErr: false,
		},
		{
			name:      "too long",
			key:       string(make([]byte, 257)),
			shouldErr: true,
		},
		{
			name:      "whitespace rejected",
			key:       "user pin",
			shouldErr: true,
			errMsg:    "whitespace",
		},
		{
			name:      "reserved name rejected",
			key:       "session_token",
			shouldErr: true,
			errMsg:    "reserved",
		},
		{
			name:      "reserved salt prefix rejected",
			key:       "salt_user-1",
			shouldErr: true,
			errMsg:    "reserved",
		},
		{
			name:      "reserved underscore prefix rejected",
			key:       "__wrapped_data_key",
			shouldErr: true,
			errMsg:    "reserved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RecordKey.Validate(tt.key)
			if tt.shouldErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserID(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		shouldErr bool
	}{
		{name: "valid user id", userID: "user-1", shouldErr: false},
		{name: "empty passes through to Required", userID: "", shouldErr: false},
		{name: "too long", userID: string(make([]byte, 129)), shouldErr: true},
		{name: "whitespace rejected", userID: "user 1", shouldErr: true},
		{name: "control character rejected", userID: "user\x00", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UserID.Validate(tt.userID)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("value"))
	assert.Error(t, NotBlank.Validate("   "))
	assert.Error(t, NotBlank.Validate(""))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("value"))
	assert.Error(t, NoWhitespace.Validate(" value"))
	assert.Error(t, NoWhitespace.Validate("value "))
}

func TestBase64(t *testing.T) {
	assert.NoError(t, Base64.Validate("aGVsbG8="))
	assert.NoError(t, Base64.Validate(""))
	assert.Error(t, Base64.Validate("not base64!"))
}

func TestWrapValidationError(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))

	err := WrapValidationError(apperrors.New("key: cannot be blank"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "key: cannot be blank")
}
