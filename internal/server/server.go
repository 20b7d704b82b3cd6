package server

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/cobalt/internal/config"
	"github.com/agenthands/cobalt/internal/core"
	"github.com/agenthands/cobalt/internal/driver"
	"github.com/agenthands/cobalt/internal/graph"
	"github.com/agenthands/cobalt/internal/store"
)

type Server struct {
	Store  *store.Store
	Engine *core.Engine
	Sink   *graph.Sink
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = &config.Config{Matching: config.DefaultMatching()}
	}

	// Env vars override the file (simple override logic)
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		cfg.SQLite.Path = path
	}
	if uri := os.Getenv("MEMGRAPH_URI"); uri != "" {
		cfg.Memgraph.URI = uri
	}
	if user := os.Getenv("MEMGRAPH_USER"); user != "" {
		cfg.Memgraph.User = user
	}
	if pass := os.Getenv("MEMGRAPH_PASSWORD"); pass != "" {
		cfg.Memgraph.Password = pass
	}

	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = "data/staging.db"
	}
	if cfg.Memgraph.URI == "" {
		cfg.Memgraph.URI = "bolt://localhost:7687"
	}

	st, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		log.Fatalf("Failed to open staging store: %v", err)
	}

	d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
	if err != nil {
		log.Fatalf("Failed to connect to Memgraph: %v", err)
	}

	return &Server{
		Store:  st,
		Engine: core.NewEngine(cfg.Matching),
		Sink:   graph.NewSink(d),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/resolve", s.Resolve)
	r.GET("/links", s.Links)
	r.GET("/unmatched", s.Unmatched)

	return r
}

// Resolve runs the full pipeline: load both pools, match, replace the
// staging output tables, and persist the person graph.
func (s *Server) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	left, err := s.Store.LoadTrackerUsers(ctx)
	if err != nil {
		log.Printf("Failed to load tracker users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tracker users"})
		return
	}
	right, err := s.Store.LoadSCMUsers(ctx)
	if err != nil {
		log.Printf("Failed to load scm users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load scm users"})
		return
	}

	res := s.Engine.Resolve(left, right)

	if err := s.Store.SaveResolution(ctx, res); err != nil {
		log.Printf("Failed to save resolution: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save resolution"})
		return
	}

	if s.Sink != nil {
		if err := s.Sink.PersistResolution(ctx, res, left, right); err != nil {
			log.Printf("Failed to persist graph: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to persist graph"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":          uuid.New().String(),
		"links":           len(res.Links),
		"unmatched_left":  len(res.UnmatchedLeft),
		"unmatched_right": len(res.UnmatchedRight),
	})
}

func (s *Server) Links(c *gin.Context) {
	links, err := s.Store.LoadLinks(c.Request.Context())
	if err != nil {
		log.Printf("Failed to load links: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load links"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (s *Server) Unmatched(c *gin.Context) {
	left, right, err := s.Store.LoadUnmatched(c.Request.Context())
	if err != nil {
		log.Printf("Failed to load unmatched users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load unmatched users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unmatched_left": left, "unmatched_right": right})
}
