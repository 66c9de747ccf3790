package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"arbitrage-finder/internal/analysis"
	"arbitrage-finder/internal/fx"
)

// Error codes returned in ErrResponse.ErrorCode.
const (
	CodeInvalidParams = "INVALID_PARAMS"
	CodeMissingRate   = "MISSING_FX_RATE"
	CodeInvalidMetric = "INVALID_METRIC"
	CodeInvalidFX     = "INVALID_FX_TABLE"
	CodeNotReady      = "DATASET_NOT_LOADED"
	CodeInternal      = "INTERNAL_ERROR"
)

const (
	outcomeOK          = "ok"
	outcomeClientError = "client_error"
	outcomeDataError   = "data_error"
	outcomeError       = "error"
)

// ErrResponse is the JSON error body.
type ErrResponse struct {
	HTTPStatusCode int               `json:"-"`
	ErrorCode      string            `json:"error_code"`
	Message        string            `json:"message"`
	Details        map[string]string `json:"details,omitempty"`
}

// Render implements render.Renderer.
func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errInvalidParams(details map[string]string) *ErrResponse {
	return &ErrResponse{
		HTTPStatusCode: http.StatusBadRequest,
		ErrorCode:      CodeInvalidParams,
		Message:        "invalid query parameters",
		Details:        details,
	}
}

func errNotReady() *ErrResponse {
	return &ErrResponse{
		HTTPStatusCode: http.StatusServiceUnavailable,
		ErrorCode:      CodeNotReady,
		Message:        "dataset has not been loaded yet",
	}
}

// errFromAnalysis maps an analysis error to a response and a metrics outcome.
func errFromAnalysis(err error) (*ErrResponse, string) {
	var missing *fx.MissingRateError
	switch {
	case errors.As(err, &missing):
		return &ErrResponse{
			HTTPStatusCode: http.StatusUnprocessableEntity,
			ErrorCode:      CodeMissingRate,
			Message:        err.Error(),
			Details:        map[string]string{"currency": missing.Currency},
		}, outcomeDataError
	case errors.Is(err, analysis.ErrInvalidMetric):
		return &ErrResponse{
			HTTPStatusCode: http.StatusUnprocessableEntity,
			ErrorCode:      CodeInvalidMetric,
			Message:        err.Error(),
		}, outcomeDataError
	case errors.Is(err, fx.ErrDuplicateRate):
		return &ErrResponse{
			HTTPStatusCode: http.StatusUnprocessableEntity,
			ErrorCode:      CodeInvalidFX,
			Message:        err.Error(),
		}, outcomeDataError
	}
	return &ErrResponse{
		HTTPStatusCode: http.StatusInternalServerError,
		ErrorCode:      CodeInternal,
		Message:        "analysis failed",
	}, outcomeError
}

// validationDetails flattens validator errors into field → rule.
func validationDetails(err error) map[string]string {
	details := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			details[fe.Field()] = rule
		}
		return details
	}
	details["params"] = err.Error()
	return details
}
