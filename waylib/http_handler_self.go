package waylib

import (
	"net/http"
)

type selfResponse struct {
	Result struct {
		IP       string   `json:"ip"`
		Location Location `json:"location"`
	} `json:"result"`
}

func (h httpHandler) handleSelf(w http.ResponseWriter, req *http.Request) {
	ip := remoteIP(req)
	if ip == nil {
		h.sendError(w, nil, "Cannot detect your IP address", 0)

		return
	}

	location, err := h.wayfinder.Locate(req.Context(), ip)
	if err != nil {
		h.sendError(w, err, "Cannot locate your IP address", http.StatusNotFound)

		return
	}

	response := selfResponse{}
	response.Result.IP = ip.String()
	response.Result.Location = location

	h.encodeJSON(w, response)
}

func (h httpHandler) handleStats(w http.ResponseWriter, req *http.Request) {
	response := struct {
		Results       []*UsageStats `json:"results"`
		HostCacheSize int           `json:"host_cache_size"`
	}{
		Results:       h.wayfinder.UsageStats(),
		HostCacheSize: h.wayfinder.CacheLen(),
	}

	h.encodeJSON(w, response)
}
