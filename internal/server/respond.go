package server

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/kafei-ai/treeflow/pkg/errors"
)

// maxBodyBytes bounds request bodies; a full path list at the validation
// limits fits comfortably.
const maxBodyBytes = 64 << 20

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status through its code. Internal errors are
// logged and replaced with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		writeJSON(w, status, errorResponse{Error: "internal server error", Code: code})
		return
	}
	writeJSON(w, status, errorResponse{Error: clientMessage(err), Code: code})
}

// clientMessage is the error text without the code prefix, keeping the
// cause so validation details reach the caller.
func clientMessage(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return errors.UserMessage(err)
}

// decodeJSON reads the request body into v. An empty body leaves v
// untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if stderrors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
