package main

import (
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type server struct {
	db      *gorm.DB
	log     *zap.Logger
	lists   *listCache
	reval   *revalidator
	metrics *metrics
	origins []string
	res     *resources
}

func newServer(cfg *Config, db *gorm.DB, log *zap.Logger) (*server, error) {
	s := &server{
		db:      db,
		log:     log,
		lists:   newListCache(cfg.CacheTTL),
		reval:   newRevalidator(cfg.RevalidationURL, cfg.RevalidationSecret, log),
		metrics: newMetrics(),
		origins: cfg.AllowedOrigins,
	}
	res, err := newResources(s)
	if err != nil {
		return nil, err
	}
	s.res = res
	return s, nil
}

// routes builds the full handler chain: CORS, recovery, request id,
// access log and metrics around the router.
func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	s.res.projects.mount(mux, "/projects")
	s.res.experiences.mount(mux, "/experiences")
	s.res.categories.mount(mux, "/skills/categories")
	s.res.skills.mount(mux, "/skills")
	s.res.about.mount(mux, "/about/content")
	s.res.stats.mount(mux, "/about/stats")
	s.res.contacts.mount(mux, "/contacts")
	s.res.socialLinks.mount(mux, "/social-links")

	mux.Handle("GET /health", s.handle(s.handleHealth))
	mux.Handle("GET /metrics", s.metrics.handler())
	mux.Handle("/", s.handle(func(w http.ResponseWriter, r *http.Request) error {
		return writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}))

	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	var h http.Handler = mux
	h = s.observe(h)
	h = withRequestID(h)
	h = s.recoverer(h)
	return c.Handler(h)
}

// handle adapts an error-returning handler to http.Handler.
func (s *server) handle(fn func(http.ResponseWriter, *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			writeError(w, r, s.log, err)
		}
	})
}

func methodNotAllowed(allow string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		_ = writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type changeSource interface {
	cacheKeys() []string
	tag() string
}

// changed runs after a committed write.
func (s *server) changed(src changeSource) {
	s.lists.invalidate(src.cacheKeys()...)
	s.reval.trigger(src.tag())
}

// close waits for background work started by requests.
func (s *server) close() {
	s.reval.wait()
}
