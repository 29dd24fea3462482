package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// LogCapture logs for testing where we can't get a nice handle on things
func LogCapture(fn func()) string {
	capture := &bytes.Buffer{}
	log.SetOutput(capture)
	fn()
	log.SetOutput(os.Stdout)

	return capture.String()
}

// mockSender implements the transport.Sender interface, for testing
type mockSender struct {
	Sent [][]byte

	// Fail the Nth send, counting from 1
	FailOn int
	Closed bool
}

func (m *mockSender) Send(_ context.Context, payload []byte) error {
	if m.FailOn > 0 && len(m.Sent)+1 == m.FailOn {
		return errors.New("intentional test error")
	}
	m.Sent = append(m.Sent, append([]byte(nil), payload...))
	return nil
}

func (m *mockSender) Close() error {
	m.Closed = true
	return nil
}

// recordingSleep records requested delays instead of sleeping
type recordingSleep struct {
	Delays []time.Duration

	// Cancel this context on the Nth sleep, counting from 1
	CancelOn int
	Cancel   context.CancelFunc
}

func (r *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	r.Delays = append(r.Delays, d)
	if r.CancelOn > 0 && len(r.Delays) == r.CancelOn {
		r.Cancel()
	}
	if ctx.Err() != nil {
		return errStopped
	}
	return nil
}
