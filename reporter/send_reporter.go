package reporter

// This originates from logtailer's limit exceeded reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	loghttp "github.com/motemen/go-loghttp"
	director "github.com/relistan/go-director"
	log "github.com/sirupsen/logrus"
)

// A SendReporter tracks how many events the generator has sent. On every
// tick of the ReportLooper it logs a stats line and, when a BaseURL is set,
// posts the counts since the last tick as an Insights event.
type SendReporter struct {
	client    *http.Client
	BaseURL   string
	InsertKey string
	AccountID string
	RunID     string

	sentCount      uint64
	sentBytes      uint64
	failedCount    uint64
	throttledCount uint64
	lastReported   uint64
	running        int32
	stopped        int32
	reportLock     sync.Mutex

	ReportLooper director.Looper
	hostname     string
	started      time.Time
}

// NewSendReporter returns a properly configured reporter that ticks every
// interval.
func NewSendReporter(url, insertKey, accountID, runID string, interval time.Duration) *SendReporter {
	client := cleanhttp.DefaultClient()

	// Log the stats requests when debugging
	if log.IsLevelEnabled(log.DebugLevel) {
		client.Transport = &loghttp.Transport{
			LogRequest: func(req *http.Request) {
				log.Debugf("Reporter request: %s %s", req.Method, req.URL)
			},
			LogResponse: func(resp *http.Response) {
				log.Debugf("Reporter response: %d %s", resp.StatusCode, resp.Request.URL)
			},
			Transport: client.Transport,
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.Warnf("Unable to determine hostname: %s", err)
		hostname = "unknown"
	}

	return &SendReporter{
		client:       client,
		BaseURL:      url,
		InsertKey:    insertKey,
		AccountID:    accountID,
		RunID:        runID,
		ReportLooper: director.NewTimedLooper(director.FOREVER, interval, make(chan error)),
		hostname:     hostname,
		started:      time.Now(),
	}
}

// Sent atomically records one delivered packet of size bytes
func (r *SendReporter) Sent(size int) {
	atomic.AddUint64(&r.sentCount, 1)
	atomic.AddUint64(&r.sentBytes, uint64(size))
}

// Failed records a send that returned an error
func (r *SendReporter) Failed() {
	atomic.AddUint64(&r.failedCount, 1)
}

// Throttled records a send that had to wait on the rate limiter
func (r *SendReporter) Throttled() {
	atomic.AddUint64(&r.throttledCount, 1)
}

// Total is the number of events sent so far
func (r *SendReporter) Total() uint64 {
	return atomic.LoadUint64(&r.sentCount)
}

// Run starts up a background goroutine that reports on every looper tick
func (r *SendReporter) Run() {
	log.Infof("Starting up send reporter for run '%s'", r.RunID)

	atomic.StoreInt32(&r.running, 1)
	go r.ReportLooper.Loop(func() error {
		if atomic.LoadInt32(&r.stopped) == 1 {
			return nil
		}
		r.report()
		return nil
	})
}

// Stop quits the looper and reports whatever was sent since the last tick.
// Calling it more than once only reports once.
func (r *SendReporter) Stop() {
	if !atomic.CompareAndSwapInt32(&r.stopped, 0, 1) {
		return
	}

	if atomic.LoadInt32(&r.running) == 1 {
		r.ReportLooper.Quit()
		if err := r.ReportLooper.Wait(); err != nil {
			log.Warnf("Send reporter exited with error: %s", err)
		}
	}

	r.report()
}

// report logs the stats line and posts the counts since the last report
func (r *SendReporter) report() {
	r.reportLock.Lock()
	defer r.reportLock.Unlock()

	total := atomic.LoadUint64(&r.sentCount)
	count := total - atomic.SwapUint64(&r.lastReported, total)

	r.logStats(total)

	if r.BaseURL != "" && count > 0 {
		err := r.sendEvent(r.eventsURL(), count)
		// We _don't_ want to exit on error
		if err != nil {
			log.Errorf("Error reporting stats: %s", err)
		}
	}
}

func (r *SendReporter) eventsURL() string {
	return fmt.Sprintf("%s/%s/events", r.BaseURL, r.AccountID)
}

func (r *SendReporter) logStats(total uint64) {
	elapsed := time.Since(r.started)

	rate := 0.0
	if elapsed > 0 {
		rate = float64(total) / elapsed.Seconds()
	}

	log.Infof("Stats: Sent %d events (%d bytes) in %.2fs (%.2f events/sec), %d failed, %d throttled",
		total, atomic.LoadUint64(&r.sentBytes), elapsed.Seconds(), rate,
		atomic.LoadUint64(&r.failedCount), atomic.LoadUint64(&r.throttledCount))
}

// sendEvent serializes JSON and posts it to the stats endpoint
func (r *SendReporter) sendEvent(url string, count uint64) error {
	data, err := json.Marshal(struct {
		Time      string
		Hostname  string
		RunID     string
		SentCount uint64
		EventType string `json:"eventType"`
	}{
		Time:      time.Now().UTC().Format(time.RFC3339),
		Hostname:  r.hostname,
		RunID:     r.RunID,
		SentCount: count,
		EventType: "LogSpammerSent",
	})
	if err != nil {
		return fmt.Errorf("Unable to encode JSON event: %s", err)
	}

	buf := bytes.NewBuffer(data)
	req, err := http.NewRequest("POST", url, buf)
	if err != nil {
		return fmt.Errorf("Unable to create http request: %s", err)
	}
	req.Header.Add("X-Insert-Key", r.InsertKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("Failed making HTTP request to stats endpoint: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Bad response from stats endpoint: %s", string(body))
	}

	return nil
}
