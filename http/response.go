package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"vidtube/errs"
)

// envelope is the uniform body every successful response gets.
type envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// respond writes data into the success envelope with the given status.
func respond(w http.ResponseWriter, r *http.Request, status int, data interface{}, message string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	}); err != nil {
		errs.LogError(r, err)
	}
}

// pathID parses a numeric {id}-style route variable.
func pathID(vars map[string]string, name string) (int, error) {
	id, err := strconv.Atoi(vars[name])
	if err != nil || id <= 0 {
		return 0, errs.Errorf(errs.EINVALID, "Invalid id format.")
	}
	return id, nil
}

// queryInt parses an optional numeric query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return value
}

// pageParams reads the page and limit query parameters. Values below 1 are
// clamped to the defaults, so the echoed page metadata always describes the
// window that actually got served.
func pageParams(r *http.Request) (int, int) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// totalPages derives the page count for the client's page controls.
func totalPages(total, limit int) int {
	if limit < 1 {
		limit = 10
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}
