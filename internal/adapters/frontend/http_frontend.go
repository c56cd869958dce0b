package frontend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mikey/exam-grader/internal/config"
	"github.com/mikey/exam-grader/internal/core"
	"go.uber.org/zap"
)

type gradeRequest struct {
	StudentID string   `json:"student_id"`
	Text      string   `json:"text"`
	Sources   []string `json:"sources,omitempty"`
}

type batchRequest struct {
	Submissions []gradeRequest `json:"submissions"`
}

type batchEntry struct {
	StudentID string              `json:"student_id"`
	Report    *core.StudentReport `json:"report,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// HTTPFrontend serves grading over HTTP
type HTTPFrontend struct {
	service *core.GradingService
	cfg     config.ServerConfig
	logger  *zap.Logger
	router  chi.Router
	server  *http.Server
}

// NewHTTPFrontend creates a new HTTP front end
func NewHTTPFrontend(service *core.GradingService, cfg config.ServerConfig, logger *zap.Logger) *HTTPFrontend {
	f := &HTTPFrontend{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
	f.router = f.routes()
	return f
}

func (f *HTTPFrontend) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, f.logRequests, middleware.Recoverer)
	if f.cfg.MaxRequestSize > 0 {
		r.Use(middleware.RequestSize(f.cfg.MaxRequestSize))
	}

	r.Get("/healthz", f.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/answer-key", f.answerKey)
		r.Post("/grade", f.grade)
		r.Post("/grade/batch", f.gradeBatch)
		r.Delete("/cache", f.clearCache)
	})
	return r
}

// Handler exposes the router
func (f *HTTPFrontend) Handler() http.Handler {
	return f.router
}

// Start starts listening on the configured address
func (f *HTTPFrontend) Start() error {
	f.logger.Info("Starting HTTP front end", zap.String("address", f.cfg.ListenAddress))

	ln, err := net.Listen("tcp", f.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", f.cfg.ListenAddress, err)
	}

	f.server = &http.Server{
		Handler:      f.router,
		ReadTimeout:  f.cfg.ReadTimeout,
		WriteTimeout: f.cfg.WriteTimeout,
	}

	go func() {
		if err := f.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop drains in-flight requests within the shutdown timeout
func (f *HTTPFrontend) Stop() error {
	if f.server == nil {
		return nil
	}
	f.logger.Info("Stopping HTTP front end")
	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.ShutdownTimeout)
	defer cancel()
	return f.server.Shutdown(ctx)
}

// ProcessSubmission grades one submission through the shared service
func (f *HTTPFrontend) ProcessSubmission(ctx context.Context, sub core.Submission) (*core.StudentReport, error) {
	return f.service.Grade(ctx, sub)
}

func (f *HTTPFrontend) health(w http.ResponseWriter, r *http.Request) {
	f.respond(w, http.StatusOK, map[string]string{
		"status": "ok",
		"run_id": f.service.RunID(),
	})
}

func (f *HTTPFrontend) answerKey(w http.ResponseWriter, r *http.Request) {
	key := f.service.AnswerKey()
	f.respond(w, http.StatusOK, map[string]interface{}{
		"questions":    key.Questions(),
		"total_weight": key.TotalWeight(),
	})
}

func (f *HTTPFrontend) grade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !f.decode(w, r, &req) {
		return
	}
	if req.StudentID == "" {
		f.respondError(w, http.StatusBadRequest, errors.New("student_id is required"))
		return
	}

	report, err := f.ProcessSubmission(r.Context(), core.Submission(req))
	if err != nil {
		f.respondError(w, statusFor(err), err)
		return
	}
	f.respond(w, http.StatusOK, report)
}

func (f *HTTPFrontend) gradeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !f.decode(w, r, &req) {
		return
	}

	subs := make([]core.Submission, len(req.Submissions))
	for i, s := range req.Submissions {
		if s.StudentID == "" {
			s.StudentID = fmt.Sprintf("submission-%d", i+1)
		}
		subs[i] = core.Submission(s)
	}

	results := f.service.GradeBatch(r.Context(), subs)
	out := make([]batchEntry, len(results))
	for i, res := range results {
		out[i] = batchEntry{StudentID: res.StudentID, Report: res.Report}
		if res.Err != nil {
			out[i].Error = res.Err.Error()
		}
	}
	f.respond(w, http.StatusOK, map[string]interface{}{
		"run_id":  f.service.RunID(),
		"results": out,
	})
}

func (f *HTTPFrontend) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := f.service.ClearCache(r.Context()); err != nil {
		f.respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *HTTPFrontend) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			f.respondError(w, http.StatusRequestEntityTooLarge, err)
			return false
		}
		f.respondError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrMalformedAnswerKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrServiceClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (f *HTTPFrontend) respond(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (f *HTTPFrontend) respondError(w http.ResponseWriter, code int, err error) {
	f.respond(w, code, map[string]string{"error": err.Error()})
}

func (f *HTTPFrontend) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		f.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)))
	})
}
