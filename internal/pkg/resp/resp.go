/*
Package resp provides helper functions for constructing and sending HTTP JSON responses.

It offers a generic JSON writer plus a standardized error envelope carrying a
business code and a client-friendly description.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"presencehub/internal/pkg/errs"
	"presencehub/internal/pkg/logx"
)

// ErrorResponse is the JSON envelope returned for failed control-plane requests.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    int    `json:"code"`
}

// RespondJSON sets the Content-Type and sends the JSON-encoded payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondError sends an HTTP response containing custom error information.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := ErrorResponse{
		Success: false,
		Error:   customErr.Message,
		Code:    customErr.Code,
	}
	RespondJSON(w, r, customErr.Status, res)
}
