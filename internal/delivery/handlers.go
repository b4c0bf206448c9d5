package delivery

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"ebiblio/internal/auth"
	"ebiblio/internal/catalog"
	"ebiblio/internal/logger"
	"ebiblio/internal/search"
)

var requestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ebiblio_gateway_requests_total",
		Help: "Total number of HTTP requests per endpoint",
	},
	[]string{"endpoint", "code"},
)

func init() {
	prometheus.MustRegister(requestsTotal)
}

// Server wires the search service, catalog store and auth manager into the
// gateway's HTTP surface.
type Server struct {
	Log    *logrus.Logger
	Search *search.Service
	Store  *catalog.Store
	Auth   *auth.Manager
}

// Routes mounts every endpoint on a mux router.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/search", s.SearchHandler).Methods(http.MethodGet)
	r.HandleFunc("/catalog", s.CatalogList).Methods(http.MethodGet)
	r.HandleFunc("/catalog/books/{id}", s.CatalogBook).Methods(http.MethodGet)
	r.HandleFunc("/categories", s.Categories).Methods(http.MethodGet)

	r.HandleFunc("/auth/register", s.AuthRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", s.AuthLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.AuthLogout).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.AuthMe).Methods(http.MethodGet)
	return r
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	requestsTotal.WithLabelValues("health", "200").Inc()
}

// --- Search ---

// GET /search?q=...&tab=all|books|categories
func (s *Server) SearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	tab := search.ParseTab(r.URL.Query().Get("tab"))

	resp, err := s.Search.Search(r.Context(), q, tab)
	if err != nil {
		s.Log.WithError(err).WithField("q", q).Error("search.failed")
		s.writeProviderError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	requestsTotal.WithLabelValues("search", "200").Inc()
}

// --- Catalog ---

// GET /catalog?author=...&category=...&limit=...&offset=...
func (s *Server) CatalogList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := search.CatalogFilter{
		Author:     q.Get("author"),
		CategoryID: q.Get("category"),
		Limit:      atoiDefault(q.Get("limit"), 0),
		Offset:     atoiDefault(q.Get("offset"), 0),
	}

	defer logger.Track(r.Context(), "catalog listing")()
	books, err := s.Store.List(r.Context(), filter)
	if err != nil {
		s.Log.WithError(err).Error("catalog.list.failed")
		s.writeProviderError(w, "catalog", err)
		return
	}
	if books == nil {
		books = []search.Book{} // ensure [] not null
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books, "total": len(books)})
	requestsTotal.WithLabelValues("catalog", "200").Inc()
}

// GET /catalog/books/{id}
func (s *Server) CatalogBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b, err := s.Store.GetBook(r.Context(), id)
	if err != nil {
		s.writeProviderError(w, "catalog_book", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
	requestsTotal.WithLabelValues("catalog_book", "200").Inc()
}

// GET /categories
func (s *Server) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.Store.Categories(r.Context())
	if err != nil {
		s.writeProviderError(w, "categories", err)
		return
	}
	if cats == nil {
		cats = []search.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats, "total": len(cats)})
	requestsTotal.WithLabelValues("categories", "200").Inc()
}

// --- Auth ---

type credentials struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) AuthRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Email == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "email and password are required", nil)
		requestsTotal.WithLabelValues("auth_register", "400").Inc()
		return
	}
	u, err := s.Auth.Register(c.ID, c.Email, c.Password)
	if errors.Is(err, auth.ErrExists) {
		writeError(w, http.StatusConflict, "conflict", "user already exists", nil)
		requestsTotal.WithLabelValues("auth_register", "409").Inc()
		return
	}
	if err != nil {
		s.Log.WithError(err).Error("auth.register.failed")
		writeError(w, http.StatusInternalServerError, "internal", "could not register user", nil)
		requestsTotal.WithLabelValues("auth_register", "500").Inc()
		return
	}
	writeJSON(w, http.StatusCreated, u)
	requestsTotal.WithLabelValues("auth_register", "201").Inc()
}

func (s *Server) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", err.Error())
		requestsTotal.WithLabelValues("auth_login", "400").Inc()
		return
	}
	u, err := s.Auth.Login(c.Email, c.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password", nil)
		requestsTotal.WithLabelValues("auth_login", "401").Inc()
		return
	}
	writeJSON(w, http.StatusOK, u)
	requestsTotal.WithLabelValues("auth_login", "200").Inc()
}

func (s *Server) AuthLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Auth.Logout(); err != nil {
		writeError(w, http.StatusConflict, "conflict", "no active session", nil)
		requestsTotal.WithLabelValues("auth_logout", "409").Inc()
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	requestsTotal.WithLabelValues("auth_logout", "200").Inc()
}

func (s *Server) AuthMe(w http.ResponseWriter, r *http.Request) {
	u := s.Auth.Current()
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not logged in", nil)
		requestsTotal.WithLabelValues("auth_me", "401").Inc()
		return
	}
	writeJSON(w, http.StatusOK, u)
	requestsTotal.WithLabelValues("auth_me", "200").Inc()
}

// --- helpers ---

// Structured error envelope
type errorEnvelope struct {
	Error errorBody `json:"error"`
}
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (s *Server) writeProviderError(w http.ResponseWriter, endpoint string, err error) {
	switch search.KindOf(err) {
	case search.KindNotFound:
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
		requestsTotal.WithLabelValues(endpoint, "404").Inc()
	case search.KindBadData:
		writeError(w, http.StatusBadGateway, "bad_upstream_data", err.Error(), nil)
		requestsTotal.WithLabelValues(endpoint, "502").Inc()
	default:
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error(), nil)
		requestsTotal.WithLabelValues(endpoint, "502").Inc()
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorBody{Code: code, Message: message, Details: details},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func atoiDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
