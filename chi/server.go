// Package chi serves stored crawls and records over a read-only JSON API
// built on the chi router.
package chi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/wikidoc"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API over stored crawls.
type Server struct {
	router  chi.Router
	crawls  wikidoc.CrawlService
	records wikidoc.RecordService
	log     *slog.Logger
}

// NewServer creates and configures the HTTP server. A nil logger disables
// request logging.
func NewServer(crawls wikidoc.CrawlService, records wikidoc.RecordService, log *slog.Logger) *Server {
	s := &Server{
		crawls:  crawls,
		records: records,
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.log != nil {
		r.Use(RequestLogger(s.log))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api/crawls", func(r chi.Router) {
		r.Get("/", s.handleListCrawls)
		r.Get("/{name}", s.handleGetCrawl)
		r.Get("/{name}/records", s.handleListRecords)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCrawls(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, err)
		return
	}

	crawls, err := s.crawls.FindCrawls(r.Context(), wikidoc.CrawlFilter{Limit: limit, Offset: offset})
	if err != nil {
		writeError(w, err)
		return
	}
	if crawls == nil {
		crawls = []*wikidoc.Crawl{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"crawls": crawls})
}

func (s *Server) handleGetCrawl(w http.ResponseWriter, r *http.Request) {
	cr, err := s.findCrawl(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cr)
}

// handleListRecords lists a crawl's records in document order. The
// optional hop parameter keeps only records from pages at that depth.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	cr, err := s.findCrawl(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, err)
		return
	}

	filter := wikidoc.RecordFilter{CrawlID: &cr.ID, Limit: limit, Offset: offset}
	if v := r.URL.Query().Get("hop"); v != "" {
		hop, err := strconv.Atoi(v)
		if err != nil || hop < 0 {
			writeError(w, wikidoc.Errorf(wikidoc.EINVALID, "invalid hop %q", v))
			return
		}
		filter.Hop = &hop
	}

	recs, err := s.records.FindRecords(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []*wikidoc.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs})
}

// findCrawl looks up the crawl named in the URL.
func (s *Server) findCrawl(r *http.Request) (*wikidoc.Crawl, error) {
	name := chi.URLParam(r, "name")
	crawls, err := s.crawls.FindCrawls(r.Context(), wikidoc.CrawlFilter{Name: &name})
	if err != nil {
		return nil, err
	}
	if len(crawls) == 0 {
		return nil, wikidoc.Errorf(wikidoc.ENOTFOUND, "crawl %q not found", name)
	}
	return crawls[0], nil
}

// pagination reads the limit and offset query parameters.
func pagination(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, wikidoc.Errorf(wikidoc.EINVALID, "invalid limit %q", v)
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, wikidoc.Errorf(wikidoc.EINVALID, "invalid offset %q", v)
		}
	}
	return limit, offset, nil
}

// errorStatus maps application error codes to HTTP status codes.
var errorStatus = map[string]int{
	wikidoc.ECONFLICT:       http.StatusConflict,
	wikidoc.EINVALID:        http.StatusBadRequest,
	wikidoc.ENOTFOUND:       http.StatusNotFound,
	wikidoc.ENOTIMPLEMENTED: http.StatusNotImplemented,
	wikidoc.EINTERNAL:       http.StatusInternalServerError,
}

func writeError(w http.ResponseWriter, err error) {
	status, ok := errorStatus[wikidoc.ErrorCode(err)]
	if !ok {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": wikidoc.ErrorMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RequestLogger logs incoming requests.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
