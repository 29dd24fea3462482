package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	eventsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logspammer_events_sent_total",
		Help: "Total number of signed events sent.",
	}, []string{"format", "level"})

	bytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logspammer_bytes_sent_total",
		Help: "Total bytes of packets sent, signatures included.",
	})

	sendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logspammer_send_errors_total",
		Help: "Total number of failed sends.",
	})
)

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Infof("Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Metrics server error: %s", err)
	}
}
