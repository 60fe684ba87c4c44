package httpapi

import (
	"net/http"
	"strconv"

	"github.com/sharpinspect/sharpinspect/internal/har"
	"github.com/sharpinspect/sharpinspect/internal/jsonenc"
	"github.com/sharpinspect/sharpinspect/internal/model"
	"github.com/sharpinspect/sharpinspect/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonenc.Marshal(v)) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type statusResponse struct {
	UptimeSeconds         float64
	ConsoleEntryCount     int
	NetworkEntryCount     int
	PerformanceEntryCount int
	WebSocketClients      int
	Status                string
	Version               string
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		UptimeSeconds:         s.deps.Clock.Now().Sub(s.startedAt).Seconds(),
		ConsoleEntryCount:     s.deps.ConsoleStore.Count(),
		NetworkEntryCount:     s.deps.NetworkStore.Count(),
		PerformanceEntryCount: s.deps.PerformanceStore.Count(),
		WebSocketClients:      s.deps.Hub.ClientCount(),
		Status:                "ok",
		Version:               version,
	})
}

func (s *Server) handleNetworkList(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := store.ParseOffsetLimit(r.URL.Query().Get("offset"), r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	statusClass, ok := store.ParseStatusClass(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, "status must be one of: 2xx, 4xx, 5xx, error")
		return
	}
	filter := store.NetworkFilter{
		URLContains: r.URL.Query().Get("url"),
		Method:      r.URL.Query().Get("method"),
		StatusClass: statusClass,
	}
	writeJSON(w, http.StatusOK, s.deps.NetworkStore.Page(offset, limit, filter))
}

func (s *Server) handleNetworkGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a non-negative integer")
		return
	}
	entry, ok := s.deps.NetworkStore.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no network entry with that id")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleNetworkClear(w http.ResponseWriter, r *http.Request) {
	s.deps.NetworkStore.Clear()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "network store cleared"})
}

func (s *Server) handleNetworkHAR(w http.ResponseWriter, r *http.Request) {
	entries := s.deps.NetworkStore.Snapshot()
	root := har.Export(entries)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonenc.Marshal(root)) //nolint:errcheck
}

func (s *Server) handleConsoleList(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := store.ParseOffsetLimit(r.URL.Query().Get("offset"), r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := store.ConsoleFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if levelStr := r.URL.Query().Get("level"); levelStr != "" {
		lvl, ok := model.ParseLevel(levelStr)
		if !ok {
			writeError(w, http.StatusBadRequest, "level must be one of: Trace, Debug, Information, Warning, Error, Critical")
			return
		}
		filter.MinLevel = lvl
		filter.HasLevel = true
	}
	writeJSON(w, http.StatusOK, s.deps.ConsoleStore.Page(offset, limit, filter))
}

func (s *Server) handleConsoleClear(w http.ResponseWriter, r *http.Request) {
	s.deps.ConsoleStore.Clear()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "console store cleared"})
}

func (s *Server) handlePerformanceList(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := store.ParseOffsetLimit(r.URL.Query().Get("offset"), r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.deps.PerformanceStore.Page(offset, limit))
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Info)
}
