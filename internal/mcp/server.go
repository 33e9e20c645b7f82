// Package mcp exposes flatintern's parser as a Model Context Protocol
// tool server, adapted down from the teacher's many-tool server to the one
// operation this domain needs: parsing a flat file and reporting its shape.
package mcp

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/flatintern/internal/cache"
	"github.com/standardbeagle/flatintern/internal/config"
)

// Server wraps an mcp.Server with the parse cache and project config its
// tool handlers need.
type Server struct {
	server *mcp.Server
	cfg    config.Config
	cache  *cache.Cache
	logger *log.Logger

	ownsCache bool
}

// NewServer builds a Server bound to cfg, with its own parse cache unless
// one is supplied via WithCache.
func NewServer(cfg config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		logger: log.New(log.Writer(), "flatintern-mcp: ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.New(cache.DefaultConfig())
		s.ownsCache = true
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "flatintern-mcp-server",
		Version: "0.1.0",
	}, nil)

	s.registerParseFlatfile()

	return s
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithCache overrides the default parse cache, e.g. to share one across
// several Server instances. The Server does not close a supplied cache.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithLogger overrides the default stderr logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Start runs the server over stdio until ctx is cancelled or the
// transport closes.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Printf("starting MCP server over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Close releases the cache if the Server created it itself.
func (s *Server) Close() error {
	if s.ownsCache && s.cache != nil {
		s.cache.Close()
	}
	return nil
}
