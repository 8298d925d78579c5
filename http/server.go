package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/officequotes"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// ShutdownTimeout is how long Close waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Server serves the quote window API and, optionally, the published
// static corpus tree under /json/.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *mux.Router

	// Addr is the bind address, e.g. ":8080".
	Addr string

	// StaticDir is a published corpus tree served under /json/.
	// Empty disables the static mount.
	StaticDir string

	Logger *slog.Logger

	WindowService officequotes.WindowService
	CorpusService officequotes.CorpusService
}

// NewServer returns a Server. Services must be set before Open or Handler.
func NewServer() *Server {
	return &Server{}
}

// Handler builds the routed, CORS-enabled handler.
func (s *Server) Handler() http.Handler {
	if s.Logger == nil {
		s.Logger = slog.New(slog.DiscardHandler)
	}

	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/api/quote_surround", s.handleQuoteSurround).Methods(http.MethodGet)
	r.HandleFunc("/api/episode/{season:[0-9]+}/{episode:[0-9]+}", s.handleEpisode).Methods(http.MethodGet)
	r.HandleFunc("/api/episodes", s.handleEpisodes).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/all", s.handleAll).Methods(http.MethodGet)
	r.HandleFunc("/api/characters", s.handleCharacters).Methods(http.MethodGet)
	r.HandleFunc("/api/character/{id}", s.handleCharacter).Methods(http.MethodGet)
	r.HandleFunc("/api/character/{id}/quotes", s.handleCharacterQuotes).Methods(http.MethodGet)

	if s.StaticDir != "" {
		r.PathPrefix("/json/").Handler(http.StripPrefix("/json/", http.FileServer(http.Dir(s.StaticDir))))
	}
	s.router = r

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"ETag", "X-Request-Id"},
	})
	return c.Handler(r)
}

// Open starts listening on Addr and serves in the background.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("server error", "error", err)
		}
	}()

	s.Logger.Info("listening", "address", ln.Addr().String())
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleQuoteSurround(w http.ResponseWriter, r *http.Request) {
	req, err := officequotes.ParseWindowRequest(r.URL.Query())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	win, err := s.WindowService.Window(r.Context(), req)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, win)
}

func (s *Server) handleEpisode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	season, _ := strconv.Atoi(vars["season"])
	episode, _ := strconv.Atoi(vars["episode"])
	if !officequotes.IsValidEpisode(season, episode) {
		s.Error(w, r, officequotes.Errorf(officequotes.ENOTFOUND, "episode %d/%d not found", season, episode))
		return
	}
	ep, err := s.CorpusService.Episode(r.Context(), season, episode)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, ep)
}

func (s *Server) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	corpus, err := s.CorpusService.Corpus(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, corpus.Summaries())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.CorpusService.Totals(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, totals)
}

func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	corpus, err := s.CorpusService.Corpus(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, corpus)
}

func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	ids, err := s.CorpusService.Characters(r.Context())
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, ids)
}

func (s *Server) handleCharacter(w http.ResponseWriter, r *http.Request) {
	profile, err := s.CorpusService.Character(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, profile)
}

// handleCharacterQuotes serves every quote of a character, or one page of
// officequotes.CharacterQuotesPageSize quotes when page is given.
func (s *Server) handleCharacterQuotes(w http.ResponseWriter, r *http.Request) {
	page := 0
	if q := r.URL.Query(); q.Has("page") {
		raw := q.Get("page")
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.Error(w, r, officequotes.Errorf(officequotes.EINVALID, "Parameter 'page' must be a positive integer. (%s)", raw))
			return
		}
		page = n
	}
	quotes, err := s.CorpusService.CharacterQuotes(r.Context(), mux.Vars(r)["id"], page)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, r, quotes)
}

// writeJSON encodes v with an ETag derived from the body and answers
// matching conditional requests with 304.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.Error(w, r, err)
		return
	}
	etag := `"` + strconv.FormatUint(xxhash.Sum64(buf.Bytes()), 16) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

// Error writes err as a plain-text response with a status derived from its
// application code. Internal errors are logged and their details hidden.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := officequotes.ErrorCode(err), officequotes.ErrorMessage(err)
	if code == officequotes.EINTERNAL {
		s.Logger.Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	http.Error(w, message, ErrorStatusCode(code))
}

var codes = map[string]int{
	officequotes.EINVALID:     http.StatusBadRequest,
	officequotes.ENOTFOUND:    http.StatusNotFound,
	officequotes.EUNAVAILABLE: http.StatusServiceUnavailable,
	officequotes.EINTERNAL:    http.StatusInternalServerError,
}

// ErrorStatusCode maps an application error code to an HTTP status.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware tags each request with an id and logs its outcome.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.Logger.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
