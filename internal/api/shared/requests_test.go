package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
		Level int    `json:"level"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr error
		want    payload
	}{
		{name: "valid", body: `{"title":"a","level":2}`, want: payload{Title: "a", Level: 2}},
		{name: "unknown fields ignored", body: `{"title":"a","extra":true}`, want: payload{Title: "a"}},
		{name: "empty body", body: "", wantErr: ErrEmptyBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got payload
			err := DecodeJSON(req, &got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
		var got payload
		err := DecodeJSON(req, &got)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrEmptyBody)
	})

	t.Run("too large", func(t *testing.T) {
		body := `{"title":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var got payload
		assert.Error(t, DecodeJSON(req, &got))
	})
}

type selfValidating struct{ ok bool }

func (s selfValidating) Validate() error {
	if !s.ok {
		return errors.New("invalid")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	type tagged struct {
		Email string `validate:"required,email"`
	}

	assert.NoError(t, ValidateRequest(tagged{Email: "a@example.com"}))
	assert.Error(t, ValidateRequest(tagged{Email: "nope"}))
	assert.NoError(t, ValidateRequest(selfValidating{ok: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "invalid")

	type named struct {
		NewPassword string `json:"new_password,omitempty" validate:"max=3"`
	}
	var verrs validator.ValidationErrors
	require.ErrorAs(t, ValidateRequest(&named{NewPassword: "toolong"}), &verrs)
	assert.Equal(t, "new_password", verrs[0].Field())
	assert.Equal(t, "max", verrs[0].Tag())
}
