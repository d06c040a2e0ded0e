package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Rrens/sitepublish/internal/api/middleware"
	"github.com/Rrens/sitepublish/internal/api/response"
	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

const maxBodyBytes = 1 << 20

// ErrorBody is the error payload of failed authoring requests
type ErrorBody struct {
	Message string               `json:"message"`
	Checks  []domain.CheckResult `json:"checks,omitempty"`
	Usages  []domain.AssetUsage  `json:"usages,omitempty"`
}

// writeError maps a service error to its HTTP status. Infrastructure failures
// are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch domain.KindOf(err) {
	case domain.KindUnauthorized:
		response.Unauthorized(w, err.Error())
	case domain.KindForbidden:
		response.Forbidden(w, err.Error())
	case domain.KindNotFound:
		response.NotFound(w, err.Error())
	case domain.KindInvalidArgument:
		response.BadRequest(w, err.Error())
	case domain.KindValidationFailed:
		checks, _ := domain.DetailsOf(err).([]domain.CheckResult)
		response.BadRequest(w, ErrorBody{Message: err.Error(), Checks: checks})
	case domain.KindConflict:
		usages, _ := domain.DetailsOf(err).([]domain.AssetUsage)
		response.Conflict(w, ErrorBody{Message: err.Error(), Usages: usages})
	default:
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		response.InternalError(w, "internal server error")
	}
}

// requestScope returns the authenticated caller and the workspace of the route
func requestScope(w http.ResponseWriter, r *http.Request) (domain.Caller, string, bool) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return domain.Caller{}, "", false
	}

	workspaceID, ok := middleware.GetWorkspaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing workspace ID")
		return domain.Caller{}, "", false
	}

	return caller, workspaceID, true
}

// decodeJSON decodes an optional JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
