package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Shimmur/logspammer/corpus"
	"github.com/Shimmur/logspammer/reporter"
	"github.com/Shimmur/logspammer/synth"
	"github.com/Shimmur/logspammer/transport"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/relistan/rubberneck"
	log "github.com/sirupsen/logrus"
)

func loadCorpus(path string) (*corpus.Corpus, error) {
	if path == "" {
		return corpus.Default(), nil
	}

	log.Infof("Loading corpus from %s", path)
	return corpus.Load(path)
}

func newSender(config *Config, rptr *reporter.SendReporter, runID string) (transport.Sender, error) {
	udp, err := transport.NewUDPSender(config.Address(), transport.NewSigner(config.Secret))
	if err != nil {
		return nil, err
	}

	if config.MaxRate == 0 {
		return udp, nil
	}

	log.Infof("Limiting sends to %d per second", config.MaxRate)
	return transport.NewRateLimitedSender(rptr, config.MaxRate, time.Second, runID, udp)
}

func printHeader(config *Config, mode Mode) {
	fmt.Println("Log Spammer")
	fmt.Printf("Sending logs to %s\n", config.Address())
	fmt.Printf("Format: %s\n", mode.Label())
	fmt.Println(strings.Repeat("-", 60))
}

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	var config Config
	err := envconfig.Process("logspammer", &config)
	if err != nil {
		log.Fatal(err.Error())
	}

	err = parseFlags(os.Args[1:], &config)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal(err.Error())
	}

	mode, err := config.Validate()
	if err != nil {
		log.Fatalf("Invalid configuration: %s", err)
	}

	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %s", err)
	}
	log.SetLevel(level)

	rubberneck.Print(config.Redacted())

	runID := uuid.New().String()

	c, err := loadCorpus(config.CorpusFile)
	if err != nil {
		log.Fatal(err.Error())
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Infof("Run %s using seed %d", runID, seed)
	rnd := rand.New(rand.NewSource(seed))

	rptr := reporter.NewSendReporter(
		config.ReportURL, config.ReportKey, config.ReportAccount, runID, config.ReportInterval,
	)
	rptr.Run()

	if config.MetricsAddr != "" {
		go serveMetrics(config.MetricsAddr)
	}

	sender, err := newSender(&config, rptr, runID)
	if err != nil {
		log.Fatal(err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		log.Info("Shutting down")
		cancel()
	}()

	printHeader(&config, mode)

	driver := NewDriver(mode, config.Count, synth.New(c, rnd), sender, rnd, rptr, os.Stdout)
	driver.Delay = config.AverageDelay()
	driver.Jitter = config.Jitter
	driver.Quiet = config.Quiet

	sent, runErr := driver.Run(ctx)
	fmt.Printf("\nSent %d log messages\n", sent)

	rptr.Stop()

	if err := sender.Close(); err != nil {
		log.Warnf("Failed to close sender: %s", err)
	}

	if runErr != nil {
		log.Fatalf("Run aborted: %s", runErr)
	}
}
