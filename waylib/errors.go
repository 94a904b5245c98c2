package waylib

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is the single "no location is known" answer of the
	// lookup operations. The more specific sentinels below all wrap it,
	// so callers only ever have to test errors.Is(err, ErrNotFound).
	ErrNotFound = errors.New("no location is known")

	// ErrNoDatabase means no database is configured for the address
	// family of the looked up address.
	ErrNoDatabase = fmt.Errorf("%w: no database for this address family", ErrNotFound)

	// ErrUnknownAddress means a database is configured but has no
	// record for the address.
	ErrUnknownAddress = fmt.Errorf("%w: address has no record", ErrNotFound)

	// ErrUnresolvedHost means the resolver returned nothing usable for
	// a hostname and no cached location exists either.
	ErrUnresolvedHost = fmt.Errorf("%w: hostname did not resolve", ErrNotFound)

	ErrWayfinderShutdown = errors.New("wayfinder instance was shutdown")

	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")
	ErrCircuitBreakerIgnore = errors.New("circuit breaker should ignore this result")
)

type jsonHTTPError struct {
	Error struct {
		Message string `json:"message"`
		Context string `json:"context"`
	} `json:"error"`
}

type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) Message() string {
	if h == nil {
		return ""
	}

	return h.message
}

func (h *httpError) Err() string {
	if err := errors.Unwrap(h); err != nil {
		return err.Error()
	}

	return ""
}

func (h *httpError) StatusCode() int {
	if h != nil && h.statusCode != 0 {
		return h.statusCode
	}

	return http.StatusInternalServerError
}

func (h *httpError) Unwrap() error {
	if h == nil {
		return nil
	}

	return h.err
}

func (h *httpError) Error() string {
	switch {
	case h == nil:
		return ""
	case h.err != nil && h.message != "":
		return h.message + ": " + h.err.Error()
	case h.err != nil:
		return h.err.Error()
	}

	return h.message
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	value := jsonHTTPError{}
	value.Error.Message = h.Message()
	value.Error.Context = h.Err()

	return json.Marshal(&value)
}
