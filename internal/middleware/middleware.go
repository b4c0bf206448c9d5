package middleware

import "net/http"

// CORS answers preflights for browser and mobile webview clients. Only the
// methods and headers the gateway surface actually uses are advertised, and
// X-Trace-ID is exposed so clients can attach it to error reports.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
		h.Set("Access-Control-Expose-Headers", "X-Trace-ID")
		h.Set("Access-Control-Max-Age", "300")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
