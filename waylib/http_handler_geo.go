package waylib

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
)

// clientLocation resolves the {client} path component: "x" means "the
// address this request came from", otherwise it is an IP address or a
// proxy hostname.
func (h httpHandler) clientLocation(req *http.Request, client string) (Location, error) {
	if client == "x" {
		ip := remoteIP(req)
		if ip == nil {
			return Location{}, ErrUnresolvedHost
		}

		return h.wayfinder.Locate(req.Context(), ip)
	}

	if ip := net.ParseIP(client); ip != nil {
		return h.wayfinder.Locate(req.Context(), ip)
	}

	return h.wayfinder.LocateHost(req.Context(), h.now(), client)
}

// handleGeo answers with a comma-separated permutation of 0-based
// indices of the given servers, nearest first. The server list is
// comma-separated too. Ordering is all-or-nothing: a single unknown
// server fails the whole request and the caller is expected to keep
// its own ordering.
func (h httpHandler) handleGeo(w http.ResponseWriter, req *http.Request) {
	client := chi.URLParam(req, "client")
	servers := strings.Split(chi.URLParam(req, "servers"), ",")

	location, err := h.clientLocation(req, client)
	if err != nil {
		h.sendError(w, err, "Cannot locate a client", http.StatusBadGateway)

		return
	}

	order, ok := h.wayfinder.Geosort(req.Context(), h.now(), location, servers)
	if !ok {
		h.sendError(w, nil, "Cannot order servers", http.StatusBadGateway)

		return
	}

	indices := make([]string, len(order))
	for i, v := range order {
		indices[i] = strconv.Itoa(v)
	}

	w.Header().Add("Content-Type", "text/plain")
	w.Write([]byte(strings.Join(indices, ",") + "\n")) // nolint: errcheck
}

func remoteIP(req *http.Request) net.IP {
	host := req.RemoteAddr

	if splitHost, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		host = splitHost
	}

	return net.ParseIP(host)
}
