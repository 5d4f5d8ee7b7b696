package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// respondError maps the error code to an HTTP status.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: errors.UserMessage(err)}})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeNotRelated:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateID, errors.ErrCodeCyclicReference:
		return http.StatusConflict
	case errors.ErrCodeInvalidInput, errors.ErrCodeSelfRelation:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidFormat, errors.ErrCodeMalformedJSON, errors.ErrCodeMissingColumn,
		errors.ErrCodeUnsupportedVersion, errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes a JSON request body and validates its struct tags.
func (s *Server) decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedJSON, err, "invalid request body")
	}
	if err := s.validate.Struct(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request")
	}
	return nil
}

func idParam(r *http.Request, name string) (person.ID, error) {
	return parseID(chi.URLParam(r, name), name)
}

func parseID(s, name string) (person.ID, error) {
	id, err := person.ParseID(s)
	if err != nil || id == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a positive integer, got %q", name, s)
	}
	return id, nil
}
