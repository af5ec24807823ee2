package metric

import (
	"log/slog"
	"net/http"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inditools/utils"
)

var (
	// APIRequests counts requests to the Indico instance, labelled with the
	// API family (export, api, manage).
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inditools_indico_requests_total",
		Help: "Number of HTTP requests made to the Indico API",
	}, []string{"api"})

	// Announcements counts messages posted to Slack, labelled session/talk.
	Announcements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inditools_announcements_total",
		Help: "Number of announcements posted to Slack",
	}, []string{"kind"})

	// Protections counts attachments switched from public to protected.
	Protections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inditools_protected_attachments_total",
		Help: "Number of attachments restricted to registrants",
	})
)

// Serve exposes /metrics for as long as the process runs. A failure to bind
// takes the app down through the close channel.
func Serve(as *utils.AppState) {
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+as.Config.GetMetricsPort(), muxer); err != nil {
		slog.Error("cannot start metrics server", "error", err)
		as.AppCloseSignalChan <- syscall.SIGTERM
	}
}
