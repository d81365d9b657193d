package serving

import (
	"fmt"
	"net/http"

	routing "github.com/jackwhelpton/fasthttp-routing/v2"
	"github.com/kcz17/measured/logging"
	"github.com/kcz17/measured/measuring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

type APIServerOptions struct {
	Logger        *zap.Logger
	SummaryLogger logging.Logger
	Store         *measuring.Store
	DefaultSort   measuring.SortOption
	Namespace     string
}

// APIServer exposes the measurements of a Store: the tab-separated report,
// clearing, and a Prometheus scrape endpoint.
type APIServer struct {
	logger        *zap.Logger
	summaryLogger logging.Logger
	store         *measuring.Store
	defaultSort   measuring.SortOption
	registry      *prometheus.Registry
}

func NewAPIServer(options *APIServerOptions) (*APIServer, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(measuring.NewCollector(options.Store, options.Namespace)); err != nil {
		return nil, fmt.Errorf("NewAPIServer() could not register collector: %w", err)
	}

	return &APIServer{
		logger:        options.Logger,
		summaryLogger: options.SummaryLogger,
		store:         options.Store,
		defaultSort:   options.DefaultSort,
		registry:      registry,
	}, nil
}

func (a *APIServer) ListenAndServe(addr string) error {
	a.logger.Info("api server started", zap.String("addr", addr))
	return fasthttp.ListenAndServe(addr, a.requestHandler())
}

func (a *APIServer) requestHandler() fasthttp.RequestHandler {
	router := routing.New()

	router.Get("/measured_tsv", a.measuredTSVHandler())
	router.Delete("/measured_tsv", a.clearMeasuredHandler())

	router.Get("/metrics", a.metricsHandler())

	return router.HandleRequest
}

func (a *APIServer) measuredTSVHandler() routing.Handler {
	return func(c *routing.Context) error {
		sortBy := a.defaultSort
		if arg := c.QueryArgs().Peek("sort"); len(arg) > 0 {
			option, err := measuring.ParseSortOption(string(arg))
			if err != nil {
				return routing.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			sortBy = option
		}

		c.SetContentType("text/tab-separated-values; charset=utf-8")
		c.SetBodyString(a.store.TSV(sortBy))
		return nil
	}
}

func (a *APIServer) clearMeasuredHandler() routing.Handler {
	return func(c *routing.Context) error {
		a.store.Clear()
		a.summaryLogger.LogReset()
		a.logger.Info("measurements cleared")
		return c.Write("measurements cleared\n")
	}
}

func (a *APIServer) metricsHandler() routing.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	return func(c *routing.Context) error {
		handler(c.RequestCtx)
		return nil
	}
}
