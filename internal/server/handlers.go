package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/papersift/internal/core"
	"github.com/agenthands/papersift/internal/core/analytics"
	"github.com/agenthands/papersift/internal/core/graph"
	"github.com/agenthands/papersift/internal/core/model"
	"github.com/agenthands/papersift/internal/corpus"
)

const (
	defaultHubs       = 10
	defaultExpandHops = 1
	defaultStreamHops = 5
)

// runQuery overrides the server defaults for one request. The optimiser seed
// is random_seed because seed names the start paper of /expand and /stream.
type runQuery struct {
	Resolution *float64 `form:"resolution" binding:"omitempty,gt=0"`
	Seed       *int64   `form:"random_seed"`
	UseTopics  *bool    `form:"use_topics"`
}

func (s *Server) options(c *gin.Context) (core.Options, error) {
	opts := s.Defaults
	var q runQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return opts, model.BadInput("%v", err)
	}
	if q.Resolution != nil {
		opts.Resolution = *q.Resolution
	}
	if q.Seed != nil {
		opts.Seed = q.Seed
	}
	if q.UseTopics != nil {
		opts.UseTopics = *q.UseTopics
	}
	return opts, nil
}

func (s *Server) run(c *gin.Context) (*core.Result, bool) {
	opts, err := s.options(c)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	res, err := s.result(opts)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return res, true
}

func bind[T any](s *Server, c *gin.Context) (T, bool) {
	var q T
	if err := c.ShouldBindQuery(&q); err != nil {
		s.fail(c, model.BadInput("%v", err))
		return q, false
	}
	return q, true
}

func refs(g *graph.Graph, keys []string) []model.PaperRef {
	out := make([]model.PaperRef, 0, len(keys))
	for _, k := range keys {
		out = append(out, model.PaperRef{DOI: k, Title: g.Title(k)})
	}
	return out
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "papers": len(s.Papers)})
}

func (s *Server) Clusters(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.Clusters)
}

func (s *Server) Communities(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.Communities)
}

type hubsQuery struct {
	K *int `form:"k" binding:"omitempty,min=0"`
}

func (s *Server) Hubs(c *gin.Context) {
	q, ok := bind[hubsQuery](s, c)
	if !ok {
		return
	}
	res, ok := s.run(c)
	if !ok {
		return
	}
	k := defaultHubs
	if q.K != nil {
		k = *q.K
	}
	c.JSON(http.StatusOK, analytics.FindHubPapers(res.Graph, k))
}

type papersQuery struct {
	Entity []string `form:"entity" binding:"required,min=1"`
	Match  string   `form:"match" binding:"omitempty,oneof=all any"`
}

func (s *Server) FindPapers(c *gin.Context) {
	q, ok := bind[papersQuery](s, c)
	if !ok {
		return
	}
	res, ok := s.run(c)
	if !ok {
		return
	}
	keys := analytics.FindPapersByEntities(res.Graph, q.Entity, q.Match == "any")
	c.JSON(http.StatusOK, refs(res.Graph, keys))
}

type expandQuery struct {
	Seed string `form:"seed" binding:"required"`
	Hops *int   `form:"hops"`
}

func (s *Server) Expand(c *gin.Context) {
	q, ok := bind[expandQuery](s, c)
	if !ok {
		return
	}
	res, ok := s.run(c)
	if !ok {
		return
	}
	hops := defaultExpandHops
	if q.Hops != nil {
		hops = *q.Hops
	}
	keys, err := analytics.ExpandFromSeed(res.Graph, corpus.NormalizeDOI(q.Seed), hops)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seed": q.Seed, "hops": hops, "papers": refs(res.Graph, keys)})
}

type streamQuery struct {
	Seed     string `form:"seed" binding:"required"`
	Strategy string `form:"strategy,default=strongest"`
	Hops     *int   `form:"hops"`
}

func (s *Server) Stream(c *gin.Context) {
	q, ok := bind[streamQuery](s, c)
	if !ok {
		return
	}
	strategy, err := analytics.ParseStreamStrategy(q.Strategy)
	if err != nil {
		s.fail(c, err)
		return
	}
	res, ok := s.run(c)
	if !ok {
		return
	}
	hops := defaultStreamHops
	if q.Hops != nil {
		hops = *q.Hops
	}
	path, err := analytics.EntityStream(res.Graph, corpus.NormalizeDOI(q.Seed), strategy, hops)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"seed": q.Seed, "strategy": strategy, "path": refs(res.Graph, path)})
}

type validateQuery struct {
	MinEdges int `form:"min_edges" binding:"omitempty,min=1"`
}

func (s *Server) Validate(c *gin.Context) {
	q, ok := bind[validateQuery](s, c)
	if !ok {
		return
	}
	opts, err := s.options(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if q.MinEdges > 0 {
		opts.MinCitationEdges = q.MinEdges
	}
	res, err := s.result(opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	report, err := s.Pipeline.Validate(res, s.Papers, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report, "confidence": report.Confidence})
}
