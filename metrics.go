package camstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricFramesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camstream_frames_ingested_total",
		Help: "Total number of frames accepted from the capture source",
	})
	metricFramesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camstream_frames_delivered_total",
		Help: "Total number of multipart segments written to clients",
	})
	metricBufferOccupancy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camstream_buffer_occupancy_ratio",
		Help: "Current frame buffer occupancy (queued length over capacity)",
	})
	metricTargetRate = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camstream_target_rate_fps",
		Help: "Current shared delivery target rate in frames per second",
	})
	metricClientsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "camstream_clients_connected",
		Help: "Number of currently attached delivery loops",
	})
	metricSessionStarts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "camstream_session_starts_total",
		Help: "Total number of successfully started streaming sessions",
	})
	metricSessionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camstream_session_errors_total",
		Help: "Total number of session failures by classification code",
	}, []string{"code"})
)
