package stub

import "net/http"

// NewMessaging creates the team-messaging webhook stub. Its success
// envelope uses the code/msg shape the platform's messaging channel
// checks for.
func NewMessaging(port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]interface{}{"code": 0, "msg": "success"})
	})
	return NewServer("messaging", port, mux)
}
