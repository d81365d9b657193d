package serving

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	routing "github.com/jackwhelpton/fasthttp-routing/v2"
	"github.com/kcz17/measured/measuring"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Route is a route pattern in fasthttp-routing syntax, e.g. /users/<id>.
type Route struct {
	Method string
	Path   string
}

type ServerOptions struct {
	Logger       *zap.Logger
	Store        *measuring.Store
	FrontendAddr string
	BackendAddr  string
	MaxConns     int
	Routes       []Route
}

// Server is a measuring reverse proxy. Every proxied request has its response
// time recorded in the Store, keyed by the configured route pattern it
// matches or by its literal path if it matches none.
type Server struct {
	logger   *zap.Logger
	store    *measuring.Store
	routes   []Route
	proxying struct {
		FrontendAddr string
		BackendAddr  string
		MaxConns     int
		// server and proxy implement our reverse proxy, allowing requests
		// to be forwarded to the backend host.
		server *fasthttp.Server
		proxy  *fasthttp.HostClient
	}
	// isStarted is checked to ensure each Server is only ever started once.
	isStarted bool
	// externalOperationsLock guards external operations which interact with the server.
	externalOperationsLock *sync.Mutex
}

func NewServer(options *ServerOptions) *Server {
	s := &Server{
		logger:                 options.Logger,
		store:                  options.Store,
		routes:                 options.Routes,
		externalOperationsLock: &sync.Mutex{},
	}
	s.proxying.FrontendAddr = options.FrontendAddr
	s.proxying.BackendAddr = options.BackendAddr
	s.proxying.MaxConns = options.MaxConns
	s.proxying.proxy = &fasthttp.HostClient{Addr: options.BackendAddr, MaxConns: options.MaxConns}
	return s
}

// Start listens on the frontend address and serves in a new goroutine.
func (s *Server) Start() error {
	s.externalOperationsLock.Lock()
	defer s.externalOperationsLock.Unlock()

	if s.isStarted {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", s.proxying.FrontendAddr)
	if err != nil {
		return fmt.Errorf("Server.Start() could not listen on %s: %w", s.proxying.FrontendAddr, err)
	}

	s.proxying.server = &fasthttp.Server{
		Handler:         s.requestHandler(),
		CloseOnShutdown: true,
	}
	go func() {
		if err := s.proxying.server.Serve(ln); err != nil {
			s.logger.Error("fasthttp: server error", zap.Error(err))
		}
	}()

	s.isStarted = true
	s.logger.Info("measuring proxy started",
		zap.String("frontendAddr", s.proxying.FrontendAddr),
		zap.String("backendAddr", s.proxying.BackendAddr),
		zap.Int("routes", len(s.routes)),
	)
	return nil
}

func (s *Server) Shutdown() error {
	s.externalOperationsLock.Lock()
	defer s.externalOperationsLock.Unlock()

	if !s.isStarted {
		return errors.New("Shutdown() expected server running; server is not running")
	}
	if err := s.proxying.server.Shutdown(); err != nil {
		return fmt.Errorf("Server.Shutdown() got fasthttp server error: %w", err)
	}

	s.isStarted = false
	return nil
}

func (s *Server) requestHandler() fasthttp.RequestHandler {
	router := routing.New()
	for _, route := range s.routes {
		router.To(route.Method, route.Path, measuring.Handler(s.store, route.Path), s.proxyHandler())
	}
	// Unmatched requests are still proxied, keyed by their literal path.
	router.NotFound(measuring.Handler(s.store, ""), s.proxyHandler())
	return router.HandleRequest
}

func (s *Server) proxyHandler() routing.Handler {
	return func(c *routing.Context) error {
		req := &c.Request
		resp := &c.Response

		// Remove connection header per RFC2616.
		req.Header.Del("Connection")

		if err := s.proxying.proxy.Do(req, resp); err != nil {
			s.logger.Warn("fasthttp: error when proxying the request",
				zap.ByteString("method", c.Method()),
				zap.ByteString("path", c.Path()),
				zap.Error(err),
			)
			return routing.NewHTTPError(http.StatusBadGateway)
		}

		// Remove connection header per RFC2616.
		resp.Header.Del("Connection")
		return nil
	}
}
