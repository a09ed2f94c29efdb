package lib

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/* This file implements dev-ops telemetry for the client and the signing service in the form of prometheus metrics */

const metricsPattern = "/metrics"

// Metrics represents a server that exposes Prometheus metrics
type Metrics struct {
	server   *http.Server         // the http prometheus server
	config   MetricsConfig        // the configuration
	log      LoggerI              // the logger
	registry *prometheus.Registry // the collector registry owned by this server

	SignerMetrics     // signing telemetry
	EncryptionMetrics // encryption telemetry
	APIMetrics        // aleph api and signing service telemetry
}

// SignerMetrics represents the telemetry for the signing dispatcher
type SignerMetrics struct {
	Signatures *prometheus.CounterVec // how many messages were signed, skipped or failed per chain?
}

// EncryptionMetrics represents the telemetry for the hybrid encryption layer
type EncryptionMetrics struct {
	Operations     *prometheus.CounterVec // how many encrypt / decrypt calls per curve?
	DecryptFailure *prometheus.CounterVec // how many envelopes failed to open per curve?
}

// APIMetrics represents the telemetry for outbound api calls and inbound service requests
type APIMetrics struct {
	RequestDuration *prometheus.HistogramVec // how long does a route take?
}

// NewMetricsServer() creates a new telemetry server
func NewMetricsServer(config MetricsConfig, log LoggerI) *Metrics {
	if log == nil {
		log = NewNullLogger()
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	mux := http.NewServeMux()
	mux.Handle(metricsPattern, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &Metrics{
		server:   &http.Server{Addr: config.PrometheusAddress, Handler: mux},
		config:   config,
		log:      log,
		registry: registry,
		SignerMetrics: SignerMetrics{
			Signatures: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "aleph_signatures_total",
				Help: "Number of sign requests by chain and outcome (signed, skipped, failed)",
			}, []string{"chain", "status"}),
		},
		EncryptionMetrics: EncryptionMetrics{
			Operations: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "aleph_encryptions_total",
				Help: "Number of encrypt and decrypt calls by curve",
			}, []string{"curve", "op"}),
			DecryptFailure: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "aleph_decrypt_failures_total",
				Help: "Number of envelopes that failed authentication or decoding",
			}, []string{"curve"}),
		},
		APIMetrics: APIMetrics{
			RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name: "aleph_api_request_duration_seconds",
				Help: "Duration of api calls and signing service requests in seconds",
			}, []string{"route"}),
		},
	}
}

// Registry() exposes the collectors, used for in-process inspection
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Start() starts the telemetry server
func (m *Metrics) Start() {
	// exit if empty
	if m == nil {
		return
	}
	// if the metrics server is enabled
	if m.config.Enabled {
		go func() {
			m.log.Infof("Starting metrics server on %s", m.config.PrometheusAddress)
			// run the server
			if err := m.server.ListenAndServe(); err != nil {
				if err != http.ErrServerClosed {
					m.log.Errorf("Metrics server failed with err: %s", err.Error())
				}
			}
		}()
	}
}

// Stop() gracefully stops the telemetry server
func (m *Metrics) Stop() {
	// exit if empty
	if m == nil {
		return
	}
	// if the metrics server is enabled
	if m.config.Enabled {
		// shutdown the server
		if err := m.server.Shutdown(context.Background()); err != nil {
			m.log.Error(err.Error())
		}
	}
}

// UpdateSignature() counts a sign attempt
func (m *Metrics) UpdateSignature(chain ChainType, status string) {
	// exit if empty
	if m == nil {
		return
	}
	m.Signatures.WithLabelValues(chain.String(), status).Inc()
}

// UpdateEncryption() counts an encrypt or decrypt call
func (m *Metrics) UpdateEncryption(curve, op string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(curve, op).Inc()
}

// UpdateDecryptFailure() counts an envelope that could not be opened
func (m *Metrics) UpdateDecryptFailure(curve string) {
	if m == nil {
		return
	}
	m.DecryptFailure.WithLabelValues(curve).Inc()
}

// ObserveRequest() records how long a route took
func (m *Metrics) ObserveRequest(route string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
