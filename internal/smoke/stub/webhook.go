package stub

import (
	"encoding/json"
	"io"
	"net/http"
)

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// NewWebhook creates the notification webhook receiver. Every POST is
// recorded into state with its request path and raw body; any other
// method is rejected.
func NewWebhook(state *State, port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		state.Record(r.URL.Path, string(body))
		writeJSON(w, map[string]interface{}{"ok": true})
	})
	return NewServer("webhook", port, mux)
}
