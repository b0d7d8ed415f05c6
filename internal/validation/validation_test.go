package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegistration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		password string
		confirm  string
		wantErr  error
		anyErr   bool
	}{
		{"Valid", "ada", "pw", "pw", nil, false},
		{"Missing Username", "", "pw", "pw", ErrCredentialsRequired, true},
		{"Missing Password", "ada", "", "", ErrCredentialsRequired, true},
		{"Mismatch", "ada", "pw", "other", ErrPasswordMismatch, true},
		{"Spaces Allowed", "ada lovelace", "pw", "pw", nil, false},
		{"Long Username Allowed", strings.Repeat("a", 200), "pw", "pw", nil, false},
		{"Unicode Username Allowed", "zoë/ß", "pw", "pw", nil, false},
		{"Password At Limit", "ada", strings.Repeat("p", 72), strings.Repeat("p", 72), nil, false},
		{"Password Too Long", "ada", strings.Repeat("p", 73), strings.Repeat("p", 73), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.username, tt.password, tt.confirm)
			if !tt.anyErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
