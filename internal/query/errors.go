package query

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/sells-group/insights-gateway/pkg/gong"
)

// ErrMissingDeal is returned when a deal-scoped topic is requested
// without a deal ID and the company filter does not pin one down.
var ErrMissingDeal = eris.New("a deal id is required: pass deal=<id> or a company that resolves to exactly one deal")

// ErrorBody is the gateway's uniform error envelope.
type ErrorBody struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
	Details    any    `json:"details,omitempty"`
}

// TranslateError maps an engine failure to the HTTP status code and JSON
// envelope returned to the caller. Upstream failures keep their status
// and carry the upstream body under details (parsed when it is JSON, raw
// text otherwise); transport-level failures report 500.
func TranslateError(err error) (int, ErrorBody) {
	var apiErr *gong.APIError
	if errors.As(err, &apiErr) {
		body := ErrorBody{Error: "upstream request failed", StatusCode: apiErr.StatusCode}
		if len(apiErr.Body) > 0 {
			var parsed any
			if json.Unmarshal(apiErr.Body, &parsed) == nil {
				body.Details = parsed
			} else {
				body.Details = string(apiErr.Body)
			}
		}
		return apiErr.StatusCode, body
	}

	if errors.Is(err, ErrMissingDeal) {
		return http.StatusBadRequest, ErrorBody{Error: err.Error(), StatusCode: http.StatusBadRequest}
	}

	return http.StatusInternalServerError, ErrorBody{Error: err.Error(), StatusCode: http.StatusInternalServerError}
}
