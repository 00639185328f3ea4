package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests by method, route template and status
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "natillera_http_requests_total",
		Help: "HTTP requests, by method, route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks request latency by method and route template
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "natillera_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// NotificationsTotal counts dispatched notification tasks by kind and outcome
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "natillera_notifications_total",
		Help: "Notification tasks processed, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// NotificationsDropped counts tasks rejected because the queue was full or stopped
	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "natillera_notifications_dropped_total",
		Help: "Notification tasks dropped before reaching a worker.",
	})

	// InstallmentsTotal counts loan installments by outcome (accepted, rejected, payoff)
	InstallmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "natillera_loan_installments_total",
		Help: "Loan installment submissions, by outcome.",
	}, []string{"outcome"})

	// WeeklyPaymentsTotal counts weekly payment upserts by resulting estado
	WeeklyPaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "natillera_weekly_payments_total",
		Help: "Weekly payment upserts, by resulting estado.",
	}, []string{"estado"})

	// RaffleDistributions counts completed ticket distributions
	RaffleDistributions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "natillera_raffle_distributions_total",
		Help: "Completed raffle ticket distributions.",
	})

	// ChatChannelReady is 1 when the WhatsApp channel is authenticated
	ChatChannelReady = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "natillera_whatsapp_ready",
		Help: "1 when the WhatsApp channel is ready to send.",
	})
)
