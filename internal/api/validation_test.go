package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email string `json:"email" binding:"required,email" validate:"required,email"`
	Level string `json:"level" binding:"omitempty,oneof=beginner advanced" validate:"omitempty,oneof=beginner advanced"`
}

func TestValidateStruct(t *testing.T) {
	errs := ValidateStruct(signupForm{Email: "nope", Level: "expert"})
	require.Len(t, errs, 2)

	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "email", errs[0].Tag)
	assert.Equal(t, "oneof", errs[1].Tag)
	assert.Contains(t, errs[1].Message, "beginner advanced")

	assert.Empty(t, ValidateStruct(signupForm{Email: "a@example.com"}))
}

func TestBindJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantDetail bool
	}{
		{"valid", `{"email":"a@example.com"}`, true, http.StatusOK, false},
		{"missing field", `{}`, false, http.StatusBadRequest, true},
		{"malformed", `{"email":`, false, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var form signupForm
			ok := BindJSON(c, &form)
			assert.Equal(t, tt.wantOK, ok)

			if !tt.wantOK {
				assert.Equal(t, tt.wantStatus, w.Code)
				var resp ValidationErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantDetail, len(resp.Details) > 0)
			}
		})
	}
}
