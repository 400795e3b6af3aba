package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Joseda-hg/lazytodo/internal/auth"
	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/export"
	"github.com/Joseda-hg/lazytodo/internal/flash"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"label": choiceLabel,
}

var pages = map[string]*template.Template{
	"task_list":           parsePage("task_list.tmpl"),
	"task_detail":         parsePage("task_detail.tmpl"),
	"task_form":           parsePage("task_form.tmpl"),
	"task_confirm_delete": parsePage("task_confirm_delete.tmpl"),
	"login":               parsePage("login.tmpl"),
	"register":            parsePage("register.tmpl"),
	"error":               parsePage("error.tmpl"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New("layout.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name))
}

const sessionCookieName = "session"

type Server struct {
	store         *db.Store
	auth          *auth.Service
	flashes       flash.Store
	exporter      *export.Exporter
	logger        *log.Logger
	secureCookies bool
}

type Option func(*Server)

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithFlashStore(store flash.Store) Option {
	return func(s *Server) {
		s.flashes = store
	}
}

func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

func NewServer(store *db.Store, authService *auth.Service, opts ...Option) *Server {
	s := &Server{
		store:    store,
		auth:     authService,
		exporter: export.NewExporter(store),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.flashes == nil {
		s.flashes = flash.NewCookieStore(s.secureCookies)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.rootHandler)
	mux.HandleFunc("GET /healthz", s.healthHandler)

	mux.HandleFunc("GET /login", s.loginHandler)
	mux.HandleFunc("POST /login", s.loginHandler)
	mux.HandleFunc("GET /register", s.registerHandler)
	mux.HandleFunc("POST /register", s.registerHandler)
	mux.HandleFunc("POST /logout", s.logoutHandler)

	mux.HandleFunc("GET /tasks/{$}", s.requireLogin(s.taskListHandler))
	mux.Handle("GET /tasks/list/{$}", s.requireLogin(NewTaskListView(s).ServeHTTP))
	mux.HandleFunc("GET /tasks/new/{$}", s.requireLogin(s.taskCreateHandler))
	mux.HandleFunc("POST /tasks/new/{$}", s.requireLogin(s.taskCreateHandler))
	mux.HandleFunc("GET /tasks/{id}/{$}", s.requireLogin(s.taskDetailHandler))
	mux.HandleFunc("GET /tasks/{id}/edit/{$}", s.requireLogin(s.taskUpdateHandler))
	mux.HandleFunc("POST /tasks/{id}/edit/{$}", s.requireLogin(s.taskUpdateHandler))
	mux.HandleFunc("GET /tasks/{id}/delete/{$}", s.requireLogin(s.taskDeleteHandler))
	mux.HandleFunc("POST /tasks/{id}/delete/{$}", s.requireLogin(s.taskDeleteHandler))
	mux.HandleFunc("GET /tasks/export/{format}", s.requireLogin(s.taskExportHandler))

	mux.HandleFunc("GET /api/tasks", s.requireAPIAuth(s.apiTasksHandler))
	mux.HandleFunc("GET /api/tasks/{id}", s.requireAPIAuth(s.apiTaskHandler))
	mux.HandleFunc("POST /api/token", s.apiTokenHandler)

	return s.logRequests(mux)
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	_, _ = w.Write([]byte("ok"))
}

type pageData struct {
	Title    string
	User     *auth.Identity
	Messages []flash.Message
}

// page collects the data every page shows. Pending flash messages are consumed here.
func (s *Server) page(w http.ResponseWriter, r *http.Request, title string) pageData {
	data := pageData{Title: title}
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		data.User = &identity
	}

	messages, err := s.flashes.Pop(w, r)
	if err != nil {
		s.logf(r, "pop flash: %v", err)
	}
	data.Messages = messages
	return data
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := pages[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown page %q", name))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.serverError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, text string) {
	if err := s.flashes.Add(w, r, flash.Success(text)); err != nil {
		s.logf(r, "add flash: %v", err)
	}
}

// notFound answers identically for missing tasks and tasks owned by someone else.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	data := struct {
		pageData
		Status  int
		Message string
	}{pageData: s.page(w, r, "Not found"), Status: http.StatusNotFound, Message: "The requested task does not exist."}
	s.render(w, r, http.StatusNotFound, "error", data)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logf(r, "internal error: %v", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) logf(r *http.Request, format string, args ...any) {
	s.logger.Printf("[%s] %s", requestID(r.Context()), fmt.Sprintf(format, args...))
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.auth.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func filterFromRequest(r *http.Request) model.Filter {
	query := r.URL.Query()
	return model.NewFilter(query.Get("status"), query.Get("priority"))
}

func parseID(r *http.Request) (int64, error) {
	value := strings.TrimSpace(r.PathValue("id"))
	if value == "" {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}

func choiceLabel(value string) string {
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "_", " ")
	return strings.ToUpper(value[:1]) + value[1:]
}

func writeJSON(w http.ResponseWriter, payload any) {
	writeJSONStatus(w, http.StatusOK, payload)
}

func writeJSONStatus(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSONStatus(w, status, map[string]string{"error": message})
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
