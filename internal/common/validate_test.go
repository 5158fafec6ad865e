package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestDecodeAndValidate(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())
	cases := []struct {
		name string
		body string
		code string
	}{
		{name: "ok", body: `{"name":"a","count":1}`},
		{name: "unknown field", body: `{"name":"a","extra":1}`, code: "BAD_REQUEST"},
		{name: "malformed", body: `{"name":`, code: "BAD_REQUEST"},
		{name: "invalid", body: `{"count":-1}`, code: "VALIDATION_FAILED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var out sample
			appErr := DecodeAndValidate(req, &out, v)
			if tc.code == "" {
				require.Nil(t, appErr)
				return
			}
			require.NotNil(t, appErr)
			require.Equal(t, tc.code, appErr.Code)
		})
	}
}

func TestDecodeAndValidateReportsFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":-1}`))
	appErr := DecodeAndValidate(req, &sample{}, validator.New())
	require.NotNil(t, appErr)
	require.Equal(t, map[string]string{"sample.Name": "required", "sample.Count": "gte"}, appErr.Details)
}

func TestDecodeAndValidateBodyLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("x", 64)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)
	appErr := DecodeAndValidate(req, &sample{}, nil)
	require.NotNil(t, appErr)
	require.Equal(t, http.StatusRequestEntityTooLarge, appErr.Status)
}

func TestAppErrorWriteIncludesRequestID(t *testing.T) {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NewAppError("TAX_RULE_NOT_FOUND", "tax configuration error, contact support", http.StatusInternalServerError, nil).Write(w, r)
	})
	h = middleware.RequestID(h)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":{"code":"TAX_RULE_NOT_FOUND","message":"tax configuration error, contact support","requestId":"req-42"}}`, rec.Body.String())
}
