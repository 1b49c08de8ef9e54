package completion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var completionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "callo",
		Subsystem: "completion",
		Name:      "requests_total",
		Help:      "Chat-completion requests by outcome.",
	},
	[]string{"outcome"},
)
