// Package httpjson is the single point where service results and typed
// failures become JSON responses. Every handler funnels errors through it so
// the wire contract ({message, errors?}) stays uniform.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/agritunisie/connect/internal/apperr"
)

// Responder carries the logger and environment flag every handler needs to
// emit responses. One instance is built at wiring time and shared.
type Responder struct {
	Log zerolog.Logger
	Dev bool
}

func NewResponder(log zerolog.Logger, dev bool) *Responder {
	return &Responder{Log: log, Dev: dev}
}

// JSON writes v with the given status.
func (rp *Responder) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rp.Log.Error().Err(err).Msg("encoding response failed")
	}
}

// Message writes a bare {message} body.
func (rp *Responder) Message(w http.ResponseWriter, status int, message string) {
	rp.JSON(w, status, map[string]string{"message": message})
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  []map[string]string `json:"errors,omitempty"`
	Detail  string              `json:"detail,omitempty"`
}

// Error translates any error to its response. Typed apperr values map to
// their status and message; everything else is logged and reported as a
// generic 500, with the detail only exposed in development.
func (rp *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := apperr.As(err); ok {
		body := errorBody{Message: e.Message}
		for _, f := range e.Fields {
			body.Errors = append(body.Errors, map[string]string{f.Field: f.Message})
		}
		if e.Kind == apperr.KindInternal || e.Kind == apperr.KindUpstream {
			rp.Log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		}
		if e.Kind == apperr.KindInternal && rp.Dev {
			body.Detail = err.Error()
		}
		rp.JSON(w, e.Status(), body)
		return
	}

	rp.Log.Error().Err(err).Str("path", r.URL.Path).Str("method", r.Method).Msg("unexpected error")
	body := errorBody{Message: "Une erreur interne est survenue."}
	if rp.Dev {
		body.Detail = err.Error()
	}
	rp.JSON(w, http.StatusInternalServerError, body)
}
