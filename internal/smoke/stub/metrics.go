package stub

import (
	"net/http"
	"strings"
	"time"
)

// NewMetrics creates the metrics query stub. While state reports
// firing, every instant query returns a single vector sample with
// value "1"; otherwise the result set is empty and the platform
// resolves alerts bound to this source.
func NewMetrics(state *State, port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, "/api/v1/query") {
			http.NotFound(w, r)
			return
		}

		result := []interface{}{}
		if state.Firing() {
			result = append(result, map[string]interface{}{
				"metric": map[string]interface{}{
					"__name__": "up",
					"instance": "stub",
				},
				"value": []interface{}{float64(time.Now().Unix()), "1"},
			})
		}
		writeJSON(w, map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"resultType": "vector",
				"result":     result,
			},
		})
	})
	return NewServer("metrics", port, mux)
}
