package main

import (
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"
)

type Config struct {
	Host   string `envconfig:"HOST" default:"127.0.0.1"`
	Port   int    `envconfig:"PORT" default:"9514"`
	Secret string `envconfig:"SECRET" required:"true"`

	Format     string  `envconfig:"FORMAT" default:"standard"`
	Count      int     `envconfig:"COUNT" default:"0"`
	Delay      float64 `envconfig:"DELAY" default:"0.5"`
	Jitter     float64 `envconfig:"JITTER" default:"0.8"`
	Seed       int64   `envconfig:"SEED" default:"0"`
	MaxRate    int     `envconfig:"MAX_RATE" default:"0"`
	CorpusFile string  `envconfig:"CORPUS_FILE"`
	Quiet      bool    `envconfig:"QUIET" default:"false"`

	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	MetricsAddr    string        `envconfig:"METRICS_ADDR"`
	ReportInterval time.Duration `envconfig:"REPORT_INTERVAL" default:"10s"`
	ReportURL      string        `envconfig:"REPORT_URL"`
	ReportKey      string        `envconfig:"REPORT_KEY"`
	ReportAccount  string        `envconfig:"REPORT_ACCOUNT"`
}

// parseFlags lets the command line override the run-shape settings loaded
// from the environment.
func parseFlags(args []string, config *Config) error {
	flags := flag.NewFlagSet("logspammer", flag.ContinueOnError)

	flags.StringVar(&config.Host, "host", config.Host, "Destination host")
	flags.IntVar(&config.Port, "port", config.Port, "Destination UDP port")

	for _, name := range []string{"format", "f"} {
		flags.StringVar(&config.Format, name, config.Format, "Log format: standard, serilog or mixed")
	}
	for _, name := range []string{"count", "c"} {
		flags.IntVar(&config.Count, name, config.Count, "Number of logs to send (0 = infinite)")
	}
	for _, name := range []string{"delay", "d"} {
		flags.Float64Var(&config.Delay, name, config.Delay, "Average delay between logs in seconds")
	}

	flags.Float64Var(&config.Jitter, "jitter", config.Jitter, "Delay varies by this fraction either way")
	flags.Int64Var(&config.Seed, "seed", config.Seed, "Random seed (0 = time based)")
	flags.IntVar(&config.MaxRate, "max-rate", config.MaxRate, "Hard cap on sends per second (0 = off)")
	flags.StringVar(&config.CorpusFile, "corpus", config.CorpusFile, "YAML file replacing the built-in corpus")
	flags.BoolVar(&config.Quiet, "quiet", config.Quiet, "Don't print a line per event")

	return flags.Parse(args)
}

// Validate checks the settings that envconfig and flag can't and returns
// the parsed format mode.
func (c *Config) Validate() (Mode, error) {
	mode, err := ParseMode(c.Format)
	if err != nil {
		return "", err
	}

	if c.Port < 1 || c.Port > 65535 {
		return "", fmt.Errorf("invalid port %d", c.Port)
	}

	if c.Secret == "" {
		return "", fmt.Errorf("a shared secret is required")
	}

	if c.Count < 0 {
		return "", fmt.Errorf("count can't be negative: %d", c.Count)
	}

	if c.Delay < 0 {
		return "", fmt.Errorf("delay can't be negative: %v", c.Delay)
	}

	if c.Jitter < 0 || c.Jitter > 1 {
		return "", fmt.Errorf("jitter must be between 0 and 1: %v", c.Jitter)
	}

	if c.MaxRate < 0 {
		return "", fmt.Errorf("max rate can't be negative: %d", c.MaxRate)
	}

	if c.ReportInterval <= 0 {
		return "", fmt.Errorf("report interval must be positive: %s", c.ReportInterval)
	}

	return mode, nil
}

// Address is the host:port to send to
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AverageDelay converts the delay in seconds to a Duration
func (c *Config) AverageDelay() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}

// Redacted returns a copy that is safe to print
func (c Config) Redacted() Config {
	if c.Secret != "" {
		c.Secret = "[redacted]"
	}
	if c.ReportKey != "" {
		c.ReportKey = "[redacted]"
	}
	return c
}
