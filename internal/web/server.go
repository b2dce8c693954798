package web

import (
	"context"
	"net/http"

	"deepcut/internal/config"
	"deepcut/internal/history"
	"deepcut/internal/logger"
	"deepcut/internal/pipeline"
)

// Runner executes searches and exposes their history. Implemented by
// *pipeline.Runner.
type Runner interface {
	Run(ctx context.Context, words []string, threshold int, hooks pipeline.Hooks) (pipeline.Outcome, error)
	History(ctx context.Context, limit int) ([]history.Entry, error)
}

type Server struct {
	ctx    context.Context
	jobMgr *JobManager
	runner Runner
	config config.Config
	logger *logger.Logger
}

// NewServer creates a server. Jobs are canceled when ctx is done.
func NewServer(ctx context.Context, jobMgr *JobManager, runner Runner, cfg config.Config, log *logger.Logger) *Server {
	return &Server{
		ctx:    ctx,
		jobMgr: jobMgr,
		runner: runner,
		config: cfg,
		logger: log,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/jobs", s.handleListJobs)
	mux.HandleFunc("/api/jobs/", s.handleJobAction)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
