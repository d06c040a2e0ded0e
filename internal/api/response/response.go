package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Response is the envelope of every JSON body the API writes
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// JSON writes data in the envelope; success follows the status class
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// Error writes a failed envelope carrying message, which may be a string or a structured body
func Error(w http.ResponseWriter, status int, message any) {
	write(w, status, Response{Error: message})
}

func write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// Public marks a response as cacheable by shared caches for maxAge
func Public(w http.ResponseWriter, maxAge time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
}

// NoStore forbids any cache from keeping the response
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

func BadRequest(w http.ResponseWriter, message any) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message any) {
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message any) {
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message any) {
	Error(w, http.StatusNotFound, message)
}

// Conflict is used when a write is refused because of the current state of a resource
func Conflict(w http.ResponseWriter, message any) {
	Error(w, http.StatusConflict, message)
}

// TooManyRequests sets Retry-After when retryAfter is positive
func TooManyRequests(w http.ResponseWriter, retryAfter time.Duration, message any) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
	}
	Error(w, http.StatusTooManyRequests, message)
}

func ServiceUnavailable(w http.ResponseWriter, message any) {
	Error(w, http.StatusServiceUnavailable, message)
}

func InternalError(w http.ResponseWriter, message any) {
	Error(w, http.StatusInternalServerError, message)
}
