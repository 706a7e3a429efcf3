package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/movieapi/internal/logger"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultAccessTTL      = 15 * time.Minute
	defaultRefreshTTL     = 7 * 24 * time.Hour
	defaultStoreTimeout   = 3 * time.Second
	defaultRefreshTimeout = 5 * time.Second
	defaultOTELEndpoint   = "localhost:4317"
	defaultOTELSample     = 0.1
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Keys to sign access and refresh tokens, both required
	AccessSecret  string
	RefreshSecret string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Upper bound of a single store round-trip
	StoreTimeout time.Duration

	// Upper bound of the whole token refresh step
	RefreshTimeout time.Duration

	// Send session cookies over plain http, local development only
	InsecureCookies bool

	// Environment
	Environment string

	// Tracing export
	OTELEnable      bool
	OTELEndpoint    string
	OTELSampleRatio float64
}

func NewConfig() *Config {
	return &Config{
		LogLevel:        defaultLoggingLevel,
		ListenAddr:      defaultListenAddr,
		Environment:     defaultEnvironment,
		AccessTTL:       defaultAccessTTL,
		RefreshTTL:      defaultRefreshTTL,
		StoreTimeout:    defaultStoreTimeout,
		RefreshTimeout:  defaultRefreshTimeout,
		OTELEndpoint:    defaultOTELEndpoint,
		OTELSampleRatio: defaultOTELSample,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = b
			return nil
		}
	}
	setFloat := func(o *float64) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return err
			}
			*o = f
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":       setString(&c.ListenAddr),
		"DATABASE_URI":      setString(&c.DatabaseDSN),
		"ACCESS_SECRET":     setString(&c.AccessSecret),
		"REFRESH_SECRET":    setString(&c.RefreshSecret),
		"ACCESS_TTL":        setDuration(&c.AccessTTL),
		"REFRESH_TTL":       setDuration(&c.RefreshTTL),
		"STORE_TIMEOUT":     setDuration(&c.StoreTimeout),
		"REFRESH_TIMEOUT":   setDuration(&c.RefreshTimeout),
		"INSECURE_COOKIES":  setBool(&c.InsecureCookies),
		"LOG_LEVEL":         setString(&c.LogLevel),
		"ENVIRONMENT":       setString(&c.Environment),
		"OTEL_ENABLE":       setBool(&c.OTELEnable),
		"OTEL_ENDPOINT":     setString(&c.OTELEndpoint),
		"OTEL_SAMPLE_RATIO": setFloat(&c.OTELSampleRatio),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("env %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("movieapi", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVar(&c.AccessSecret, "access-secret", c.AccessSecret, "Access token signing key")
	fs.StringVar(&c.RefreshSecret, "refresh-secret", c.RefreshSecret, "Refresh token signing key")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTTL, "refresh-ttl", c.RefreshTTL, "Refresh token lifetime")
	fs.DurationVar(&c.StoreTimeout, "store-timeout", c.StoreTimeout, "Database query timeout")
	fs.DurationVar(&c.RefreshTimeout, "refresh-timeout", c.RefreshTimeout, "Token refresh timeout")
	fs.BoolVar(&c.InsecureCookies, "insecure-cookies", c.InsecureCookies, "Do not mark session cookies Secure")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.BoolVar(&c.OTELEnable, "otel-enable", c.OTELEnable, "Export traces over OTLP gRPC")
	fs.StringVar(&c.OTELEndpoint, "otel-endpoint", c.OTELEndpoint, "OTLP collector address")
	fs.Float64Var(&c.OTELSampleRatio, "otel-sample-ratio", c.OTELSampleRatio, "Share of traces to sample")

	return fs.Parse(args)
}
