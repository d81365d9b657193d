package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Proxying  Proxying  `mapstructure:"proxying" validate:"required"`
	Routes    []Route   `mapstructure:"routes" validate:"dive"`
	Reporting Reporting `mapstructure:"reporting" validate:"required"`
	Logging   Logging   `mapstructure:"logging" validate:"required"`
}

type Proxying struct {
	FrontendPort *int    `mapstructure:"frontendPort" validate:"required"`
	BackendHost  *string `mapstructure:"backendHost" validate:"required"`
	BackendPort  *int    `mapstructure:"backendPort" validate:"required"`
	MaxConns     *int    `mapstructure:"maxConns" validate:"required,gt=0"`
}

// Route is a route pattern measured under its own key. Requests not matching
// any route are measured under their literal path.
type Route struct {
	Method *string `mapstructure:"method" validate:"required"`
	Path   *string `mapstructure:"path" validate:"required,startswith=/"`
}

type Reporting struct {
	APIPort     *int    `mapstructure:"apiPort" validate:"required"`
	DefaultSort *string `mapstructure:"defaultSort" validate:"required,oneof=PATH METHOD CNT SUM AVG MAX MIN"`
	Namespace   *string `mapstructure:"namespace" validate:"required"`
	// Interval is the period between summaries sent to the logging driver.
	// Zero disables periodic summaries.
	Interval *time.Duration `mapstructure:"interval" validate:"required,gte=0"`
}

type Logging struct {
	Driver      *string  `mapstructure:"driver" validate:"required,oneof=noop stdout influxdb"`
	Development *bool    `mapstructure:"development" validate:"required"`
	InfluxDB    InfluxDB `mapstructure:"influxdb"`
}

type InfluxDB struct {
	Host   *string `mapstructure:"host"`
	Token  *string `mapstructure:"token"`
	Org    *string `mapstructure:"org"`
	Bucket *string `mapstructure:"bucket"`
}

var ErrConfigNotFound = errors.New("config.yaml not found")

func setDefaults(v *viper.Viper) {
	v.SetDefault("Proxying.BackendHost", "localhost")
	v.SetDefault("Proxying.MaxConns", 512)

	v.SetDefault("Reporting.DefaultSort", "SUM")
	v.SetDefault("Reporting.Namespace", "measured")
	v.SetDefault("Reporting.Interval", "0s")

	v.SetDefault("Logging.Driver", "noop")
	v.SetDefault("Logging.Development", false)
}

// Load reads config.yaml from the first of paths containing one, defaulting
// to the working directory and /app. Environment variables such as
// PROXYING_FRONTENDPORT override values from the file.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = []string{".", "/app"}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetConfigName("config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, fmt.Errorf("searched %v: %w", paths, ErrConfigNotFound)
		}
		return nil, fmt.Errorf("error when reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error occurred while decoding configuration file: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var fields []string
			for _, fieldErr := range validationErrors {
				fields = append(fields, fieldErr.Error())
			}
			return nil, fmt.Errorf("encountered validation errors:\n\t%s", strings.Join(fields, "\n\t"))
		}
		return nil, fmt.Errorf("unable to validate config: %w", err)
	}

	if *config.Logging.Driver == "influxdb" {
		influx := config.Logging.InfluxDB
		if influx.Host == nil || influx.Token == nil || influx.Org == nil || influx.Bucket == nil {
			return nil, errors.New("logging.influxdb requires host, token, org and bucket when driver is influxdb")
		}
	}

	return &config, nil
}
