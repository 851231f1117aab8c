package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// tokenChecksTotal counts /api token checks. result: valid | invalid | unverified
	tokenChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_checks_total",
			Help: "API requests presenting an access token, by verification result",
		},
		[]string{"result"},
	)

	guardRedirectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_guard_redirects_total",
			Help: "Protected page requests redirected to login",
		},
	)

	logoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logouts_total",
			Help: "Logout requests by outcome",
		},
		[]string{"result"}, // success | failure
	)
)

func recordTokenCheck(result string) {
	tokenChecksTotal.WithLabelValues(result).Inc()
}

func recordLogout(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	logoutsTotal.WithLabelValues(result).Inc()
}
