package main

import (
	"fmt"
	"log"

	"github.com/kcz17/measured/config"
	"github.com/kcz17/measured/logging"
	"github.com/kcz17/measured/measuring"
	"github.com/kcz17/measured/reporting"
	"github.com/kcz17/measured/serving"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatalf("expected config.Load() returns nil err; got err = %v", err)
	}

	logger, err := newZapLogger(*conf.Logging.Development)
	if err != nil {
		log.Fatalf("could not initialise zap logger: err = %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var summaryLogger logging.Logger
	switch *conf.Logging.Driver {
	case "noop":
		summaryLogger = logging.NewNoopLogger()
	case "stdout":
		summaryLogger = logging.NewStdoutLogger(logger)
	case "influxdb":
		influxDBLogger := logging.NewInfluxDBLogger(
			*conf.Logging.InfluxDB.Host,
			*conf.Logging.InfluxDB.Token,
			*conf.Logging.InfluxDB.Org,
			*conf.Logging.InfluxDB.Bucket,
			logger,
		)
		defer influxDBLogger.Close()
		summaryLogger = influxDBLogger
	default:
		logger.Fatal("expected logging driver one of {noop|stdout|influxdb}", zap.String("driver", *conf.Logging.Driver))
	}

	defaultSort, err := measuring.ParseSortOption(*conf.Reporting.DefaultSort)
	if err != nil {
		logger.Fatal("invalid reporting.defaultSort", zap.Error(err))
	}

	// The store is shared by the proxy, which records into it, and the API
	// server and summary loop, which read from it.
	store := measuring.NewStore()

	var routes []serving.Route
	for _, route := range conf.Routes {
		routes = append(routes, serving.Route{Method: *route.Method, Path: *route.Path})
	}

	server := serving.NewServer(&serving.ServerOptions{
		Logger:       logger.Named("proxy"),
		Store:        store,
		FrontendAddr: fmt.Sprintf(":%d", *conf.Proxying.FrontendPort),
		BackendAddr:  fmt.Sprintf("%s:%d", *conf.Proxying.BackendHost, *conf.Proxying.BackendPort),
		MaxConns:     *conf.Proxying.MaxConns,
		Routes:       routes,
	})
	if err := server.Start(); err != nil {
		logger.Fatal("expected server.Start() returns nil err", zap.Error(err))
	}

	if *conf.Reporting.Interval > 0 {
		loop, err := reporting.NewSummaryLoop(store, summaryLogger, logger.Named("reporting"), *conf.Reporting.Interval, defaultSort)
		if err != nil {
			logger.Fatal("expected reporting.NewSummaryLoop() returns nil err", zap.Error(err))
		}
		if err := loop.Start(); err != nil {
			logger.Fatal("expected loop.Start() returns nil err", zap.Error(err))
		}
	}

	apiServer, err := serving.NewAPIServer(&serving.APIServerOptions{
		Logger:        logger.Named("api"),
		SummaryLogger: summaryLogger,
		Store:         store,
		DefaultSort:   defaultSort,
		Namespace:     *conf.Reporting.Namespace,
	})
	if err != nil {
		logger.Fatal("expected serving.NewAPIServer() returns nil err", zap.Error(err))
	}
	if err := apiServer.ListenAndServe(fmt.Sprintf(":%d", *conf.Reporting.APIPort)); err != nil {
		logger.Fatal("api server error", zap.Error(err))
	}
}

func newZapLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
