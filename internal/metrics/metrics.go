package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Bid outcomes
const (
	BidAccepted = "accepted"
	BidRejected = "rejected"
	BidFailed   = "failed"
)

// OtherStatus labels order statuses outside the canonical set
const OtherStatus = "other"

var (
	// BidsTotal counts bid submissions by outcome.
	BidsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "market_bids_total",
		Help: "Total number of bid submissions by outcome",
	}, []string{"outcome"})

	// BidLockWait records how long bid placement waited for the per-product lock.
	BidLockWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "market_bid_lock_wait_seconds",
		Help:    "Time spent waiting for the per-product bid lock",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 3},
	})

	// OrdersCreated counts orders created at checkout.
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "market_orders_created_total",
		Help: "Total number of orders created",
	})

	// OrderStatusChanges counts admin status updates by target status; free-form statuses count as OtherStatus.
	OrderStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "market_order_status_changes_total",
		Help: "Total number of order status updates by new status",
	}, []string{"status"})

	// HTTPRequests counts handled requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "market_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPLatency records request latency by route.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "market_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
