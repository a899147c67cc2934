package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hollowpine/StorylineEngine/internal/events"
	"github.com/hollowpine/StorylineEngine/internal/version"
)

// Controller is the registry surface the API needs: a status snapshot and a
// command queue.
type Controller interface {
	Status() map[string]interface{}
	EnqueueCommand(name, slot string) error
}

var controller Controller

// SetController sets the registry controller used by the status and command
// endpoints.
func SetController(c Controller) {
	controller = c
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   "engine",
		Version:   version.Version,
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func eventsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	w.Header().Set("Content-Type", "application/json")
	if limit > 0 {
		_ = json.NewEncoder(w).Encode(events.RecentEvents(limit))
		return
	}
	_ = json.NewEncoder(w).Encode(events.Snapshot())
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if controller == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no registry attached"})
		return
	}
	_ = json.NewEncoder(w).Encode(controller.Status())
}

type CommandRequest struct {
	Command string `json:"command"`
	Slot    string `json:"slot,omitempty"`
}

type CommandResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func commandHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(CommandResponse{OK: false, Error: "method not allowed"})
		return
	}

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(CommandResponse{OK: false, Error: "invalid JSON"})
		return
	}
	if req.Command == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(CommandResponse{OK: false, Error: "command required"})
		return
	}
	if controller == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(CommandResponse{OK: false, Error: "no registry attached"})
		return
	}

	if err := controller.EnqueueCommand(req.Command, req.Slot); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(CommandResponse{OK: false, Error: err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(CommandResponse{OK: true})
}

// NewMux builds the API route table.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.HandleFunc("/events", eventsHandler)
	mux.HandleFunc("/status", statusHandler)
	mux.HandleFunc("/command", commandHandler)
	mux.HandleFunc("/ws/events", wsEventsHandler)
	return mux
}

// ListenAndServe starts the diagnostic API on the given port.
func ListenAndServe(port int) error {
	return http.ListenAndServe(fmt.Sprintf(":%d", port), NewMux())
}
