package waylib

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

type httpHandler struct {
	wayfinder *Wayfinder
	clock     func() int64
}

func (h httpHandler) now() int64 {
	return h.clock()
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Add("Content-Type", "application/json")
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.Encode(e) // nolint: errcheck
}

// NewHTTPHandler returns the HTTP surface of a Wayfinder: the geo
// ordering endpoint consumed by redirect frontends, a redirect
// shortcut, self-location and usage stats.
//
// clock supplies the logical clock value for host lookups; pass nil to
// use wall clock seconds.
func NewHTTPHandler(wayfinder *Wayfinder, clock func() int64) http.Handler {
	if clock == nil {
		clock = func() int64 {
			return time.Now().Unix()
		}
	}

	handler := httpHandler{
		wayfinder: wayfinder,
		clock:     clock,
	}

	router := chi.NewRouter()

	router.Use(middleware.StripSlashes)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/self", handler.handleSelf)
	router.Get("/stats", handler.handleStats)
	router.Get("/api/v1.0/geo/{client}/{servers}", handler.handleGeo)
	router.Get("/api/v1.0/redirect", handler.handleRedirect)

	return router
}
