package errs

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// codeStatuses maps application error codes to HTTP statuses.
var codeStatuses = map[string]int{
	EINVALID:      http.StatusBadRequest,
	EUNAUTHORIZED: http.StatusForbidden,
	ENOTFOUND:     http.StatusNotFound,
	EUPSTREAM:     http.StatusInternalServerError,
	EINTERNAL:     http.StatusInternalServerError,
}

// errorEnvelope is the uniform error body every failed request gets.
type errorEnvelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// StatusCode translates an application error code to an HTTP status.
func StatusCode(code string) int {
	if status, ok := codeStatuses[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ReturnError writes err to the response in the uniform error envelope.
// Uncoded and upstream errors are logged before the generic message goes out.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code := ErrorCode(err)
	if code == EINTERNAL || code == EUPSTREAM {
		LogError(r, err)
	}
	status := StatusCode(code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(errorEnvelope{
		StatusCode: status,
		Message:    ErrorMessage(err),
		Success:    false,
	}); encErr != nil {
		LogError(r, encErr)
	}
}

// LogError logs an error together with the request it happened on.
func LogError(r *http.Request, err error) {
	logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Error("http error")
}
