// Package metrics exposes the service's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "status"})

	ResolvedIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatbot_resolved_intents_total",
		Help: "Messages by resolved intent.",
	}, []string{"intent"})

	AnswerCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatbot_answer_cache_hits_total",
		Help: "Final answers served from cache.",
	})

	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatbot_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
)
