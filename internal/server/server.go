package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/agenthands/papersift/internal/core"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/logging"
	"github.com/agenthands/papersift/internal/metrics"
)

// Server answers read-only queries over a corpus loaded at start. Pipeline
// results are cached per parameter set.
type Server struct {
	Pipeline *core.Pipeline
	Papers   []model.Paper
	Defaults core.Options
	Logger   *zap.Logger
	Metrics  *metrics.Collector

	cache *lru.Cache[runKey, *core.Result]
	group singleflight.Group
}

// runKey identifies the parameters a cached result was computed with.
type runKey struct {
	Resolution float64
	Seeded     bool
	Seed       int64
	UseTopics  bool
}

func (k runKey) String() string {
	return fmt.Sprintf("%g/%t/%d/%t", k.Resolution, k.Seeded, k.Seed, k.UseTopics)
}

func NewServer(papers []model.Paper, pipeline *core.Pipeline, defaults core.Options, cacheSize int, logger *zap.Logger, m *metrics.Collector) (*Server, error) {
	cache, err := lru.New[runKey, *core.Result](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}
	if pipeline == nil {
		pipeline = core.NewPipeline(nil, logger, m)
	}
	return &Server{
		Pipeline: pipeline,
		Papers:   papers,
		Defaults: defaults,
		Logger:   logging.OrNop(logger),
		Metrics:  m,
		cache:    cache,
	}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.Health)
	r.GET("/clusters", s.Clusters)
	r.GET("/communities", s.Communities)
	r.GET("/hubs", s.Hubs)
	r.GET("/papers", s.FindPapers)
	r.GET("/expand", s.Expand)
	r.GET("/stream", s.Stream)
	r.GET("/validate", s.Validate)
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("starting server", zap.String("addr", addr), zap.Int("papers", len(s.Papers)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.Logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

// result returns the cached pipeline result for opts, computing it at most
// once per key even under concurrent requests.
func (s *Server) result(opts core.Options) (*core.Result, error) {
	key := runKey{Resolution: opts.Resolution, UseTopics: opts.UseTopics}
	if opts.Seed != nil {
		key.Seeded, key.Seed = true, *opts.Seed
	}
	if res, ok := s.cache.Get(key); ok {
		s.Metrics.CacheHit()
		return res, nil
	}
	s.Metrics.CacheMiss()

	v, err, _ := s.group.Do(key.String(), func() (any, error) {
		opts.Validate = false
		res, err := s.Pipeline.Run(s.Papers, opts)
		if err != nil {
			return nil, err
		}
		// Unseeded runs are not reproducible, so only seeded results are kept.
		if key.Seeded {
			s.cache.Add(key, res)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.Result), nil
}

// fail maps core errors to HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrBadInput):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	default:
		s.Logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.Metrics.ObserveHTTP(c.Request.Method, route, status, time.Since(start))
		s.Logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)))
	}
}
