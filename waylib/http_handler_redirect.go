package waylib

import (
	"net/http"
	"strings"
)

// handleRedirect sends the client to the nearest of the hosts given in
// the ?hosts= query parameter. When no geographic ordering can be
// produced, the first-listed host wins: caller order is the agreed
// non-geographic fallback.
func (h httpHandler) handleRedirect(w http.ResponseWriter, req *http.Request) {
	hostsParam := req.URL.Query().Get("hosts")
	if hostsParam == "" {
		h.sendError(w, nil, "No hosts are given", http.StatusBadRequest)

		return
	}

	hosts := strings.Split(hostsParam, ",")
	path := req.URL.Query().Get("path")

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	target := hosts[0]

	ip := remoteIP(req)
	if ip != nil {
		if location, err := h.wayfinder.Locate(req.Context(), ip); err == nil {
			if order, ok := h.wayfinder.Geosort(req.Context(), h.now(), location, hosts); ok {
				target = hosts[order[0]]
			}
		}
	}

	http.Redirect(w, req, "http://"+target+path, http.StatusFound)
}
