package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xela07ax/relevance-backend/internal/console/handler"
	"github.com/xela07ax/relevance-backend/internal/infra"
)

const shutdownTimeout = 10 * time.Second

type ConsoleServer struct {
	router  *chi.Mux
	logger  *zap.Logger
	cfg     *infra.Config
	metrics *infra.Metrics

	// Источник метрик для /metrics; nil — эндпоинт не регистрируется
	gatherer prometheus.Gatherer

	agentHandler *handler.AgentHandler // /, /agents
}

// NewConsoleServer инициализирует HTTP API со всеми зависимостями
func NewConsoleServer(
	cfg *infra.Config,
	logger *zap.Logger,
	metrics *infra.Metrics,
	gatherer prometheus.Gatherer,
	agentH *handler.AgentHandler,
) *ConsoleServer {
	if metrics == nil {
		metrics = infra.NewMetrics(nil)
	}
	s := &ConsoleServer{
		router:       chi.NewRouter(),
		logger:       logger.Named("console-api"),
		cfg:          cfg,
		metrics:      metrics,
		gatherer:     gatherer,
		agentHandler: agentH,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TracingMiddleware)
	r.Use(AccessLog(s.logger, s.metrics))
	r.Use(Recoverer(s.logger))
	r.Use(middleware.RedirectSlashes) // /agents/ -> /agents

	// CORS открыт полностью. Origin отражается: "*" вместе с credentials браузер отвергает
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(*http.Request, string) bool { return true },
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodConnect, http.MethodOptions, http.MethodTrace,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           600,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteDetail(w, s.logger, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteDetail(w, s.logger, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// --- 2. Служебные роуты ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.cfg.Metrics.Enabled && s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// --- 3. API ---
	r.Get("/", s.agentHandler.Root)
	r.Mount("/agents", s.agentHandler.Routes(s.cfg.Revision()))
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run слушает адрес из конфига и блокируется до отмены ctx, затем мягко гасит сервер.
func (s *ConsoleServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("console API started",
			zap.String("addr", srv.Addr),
			zap.String("revision", string(s.cfg.Revision())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("console API stopping...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.logger.Info("console API exited properly")
		return nil
	}
}
