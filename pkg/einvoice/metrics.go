package einvoice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "einvoice_client",
			Name:      "requests_total",
			Help:      "Commands executed against the e-invoicing API, by outcome.",
		},
		[]string{"command", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "einvoice_client",
			Name:      "request_duration_seconds",
			Help:      "Wall time of commands that reached the transport.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)
)

// outcomeLabel maps a call result to a low-cardinality label value.
func outcomeLabel(err error) string {
	switch KindOf(err) {
	case 0:
		if err != nil {
			return "error"
		}
		return "ok"
	case KindTransport:
		return "transport"
	case KindFatal:
		return "fatal"
	case KindParameter:
		return "parameter"
	case KindAuthorization:
		return "authorization"
	case KindNegotiation:
		return "negotiation"
	default:
		return "error"
	}
}
