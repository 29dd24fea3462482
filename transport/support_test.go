package transport

import (
	"context"
	"time"

	limiter "github.com/sethvargo/go-limiter"
	"github.com/sethvargo/go-limiter/memorystore"
)

// mockSender implements the Sender interface, for testing
type mockSender struct {
	Sent   [][]byte
	Err    error
	Closed bool
}

func (m *mockSender) Send(_ context.Context, payload []byte) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, payload)
	return nil
}

func (m *mockSender) Close() error {
	m.Closed = true
	return nil
}

func freshStore() (limiter.Store, error) {
	return memorystore.New(&memorystore.Config{Tokens: 1, Interval: time.Hour})
}
