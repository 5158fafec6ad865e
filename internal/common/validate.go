package common

import (
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"
)

// DecodeAndValidate reads a JSON body into out and runs struct validation.
func DecodeAndValidate(r *http.Request, out any, v *validator.Validate) *AppError {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return NewAppError("PAYLOAD_TOO_LARGE", "request entity too large", http.StatusRequestEntityTooLarge, err)
		}
		return NewAppError("BAD_REQUEST", "invalid payload", http.StatusBadRequest, err)
	}
	if v == nil {
		return nil
	}
	if err := v.Struct(out); err != nil {
		appErr := NewAppError("VALIDATION_FAILED", "request validation failed", http.StatusBadRequest, err)
		appErr.Details = validationFields(err)
		return appErr
	}
	return nil
}

func validationFields(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Namespace()] = fe.Tag()
		}
		return out
	}
	out["error"] = err.Error()
	return out
}
