package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/Shimmur/logspammer/corpus"
	"github.com/Shimmur/logspammer/reporter"
	"github.com/Shimmur/logspammer/synth"
	"github.com/Shimmur/logspammer/transport"
	director "github.com/relistan/go-director"
	log "github.com/sirupsen/logrus"
)

// Mode picks which format each iteration uses
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeSerilog  Mode = "serilog"
	ModeMixed    Mode = "mixed"
)

var modeLabels = map[Mode]string{
	ModeStandard: "Standard Format",
	ModeSerilog:  "Serilog CLEF Format",
	ModeMixed:    "Mixed Format (Standard + Serilog)",
}

func ParseMode(s string) (Mode, error) {
	mode := Mode(s)
	if _, ok := modeLabels[mode]; !ok {
		return "", fmt.Errorf("unknown format %q, expected standard, serilog or mixed", s)
	}
	return mode, nil
}

func (m Mode) Label() string {
	return modeLabels[m]
}

// errStopped ends the loop when the context is cancelled. It is not reported
// as a failure.
var errStopped = errors.New("stopped")

// A Driver repeatedly synthesizes, sends and sleeps until the count is
// reached, the context is cancelled, or a send fails.
type Driver struct {
	Mode   Mode
	Count  int
	Delay  time.Duration
	Jitter float64
	Quiet  bool

	synth    *synth.Synthesizer
	sender   transport.Sender
	rnd      *rand.Rand
	reporter *reporter.SendReporter
	out      io.Writer
	looper   director.Looper
	sleep    func(ctx context.Context, d time.Duration) error

	sent int
}

// NewDriver wires a Driver together. count of 0 means run until stopped.
func NewDriver(mode Mode, count int, s *synth.Synthesizer, sender transport.Sender,
	rnd *rand.Rand, rptr *reporter.SendReporter, out io.Writer) *Driver {

	loops := director.FOREVER
	if count > 0 {
		loops = count
	}

	return &Driver{
		Mode:     mode,
		Count:    count,
		synth:    s,
		sender:   sender,
		rnd:      rnd,
		reporter: rptr,
		out:      out,
		looper:   director.NewFreeLooper(loops, make(chan error)),
		sleep:    sleepContext,
	}
}

// Run drives the loop to completion and returns how many events were sent.
// Cancelling ctx is a clean stop; only a send failure returns an error.
func (d *Driver) Run(ctx context.Context) (int, error) {
	go d.looper.Loop(func() error {
		return d.step(ctx)
	})

	err := d.looper.Wait()
	if errors.Is(err, errStopped) {
		log.Infof("Stopped after %d events", d.sent)
		return d.sent, nil
	}

	return d.sent, err
}

func (d *Driver) step(ctx context.Context) error {
	if ctx.Err() != nil {
		return errStopped
	}

	event := d.synth.Next(d.nextFormat())

	payload, err := event.Encode()
	if err != nil {
		return err
	}

	if err := d.sender.Send(ctx, payload); err != nil {
		// Interrupted while waiting on the rate limiter
		if ctx.Err() != nil {
			return errStopped
		}

		sendErrors.Inc()
		if d.reporter != nil {
			d.reporter.Failed()
		}
		return fmt.Errorf("send %d failed: %w", d.sent+1, err)
	}

	d.sent++
	d.record(event, len(payload)+transport.SignatureSize)

	if !d.Quiet {
		d.printProgress(event)
	}

	// No pause after the last one
	if d.Count > 0 && d.sent >= d.Count {
		return nil
	}

	return d.sleep(ctx, d.nextDelay())
}

func (d *Driver) nextFormat() synth.Format {
	switch d.Mode {
	case ModeSerilog:
		return synth.FormatClef
	case ModeMixed:
		if d.rnd.Float64() > 0.5 {
			return synth.FormatClef
		}
	}
	return synth.FormatStandard
}

// nextDelay is uniform in [Delay*(1-Jitter), Delay*(1+Jitter)]
func (d *Driver) nextDelay() time.Duration {
	if d.Delay <= 0 {
		return 0
	}

	low := float64(d.Delay) * (1 - d.Jitter)
	high := float64(d.Delay) * (1 + d.Jitter)

	return time.Duration(low + d.rnd.Float64()*(high-low))
}

func (d *Driver) record(event synth.Event, size int) {
	level := levelOf(event)
	eventsSent.WithLabelValues(string(event.Format()), level.Standard()).Inc()
	bytesSent.Add(float64(size))

	if d.reporter != nil {
		d.reporter.Sent(size)
	}
}

func (d *Driver) printProgress(event synth.Event) {
	n := d.sent

	switch e := event.(type) {
	case *synth.ClefEvent:
		fmt.Fprintf(d.out, "[%d] [SERILOG] %-11s | %-35s | %s\n",
			n, e.Level.Clef(), e.SourceContext, truncate(e.Message, 40))
	case *synth.StandardEvent:
		fmt.Fprintf(d.out, "[%d] [STANDARD] %-6s | %-20s | %s\n",
			n, e.Level.Standard(), e.Service, truncate(e.Message, 50))
	}
}

func levelOf(event synth.Event) corpus.Level {
	switch e := event.(type) {
	case *synth.ClefEvent:
		return e.Level
	case *synth.StandardEvent:
		return e.Level
	}
	return corpus.Info
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// sleepContext blocks for d, returning errStopped early if ctx is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errStopped
	case <-timer.C:
		return nil
	}
}
