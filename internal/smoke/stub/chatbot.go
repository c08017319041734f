package stub

import "net/http"

// NewChatBot creates the chat-bot API stub. It accepts any POST under
// any path and acknowledges with a success envelope, which is all the
// platform's chat-bot channel needs to consider a send delivered.
func NewChatBot(port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]interface{}{"ok": true})
	})
	return NewServer("chatbot", port, mux)
}
