// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swapnest_transactions_created_total",
		Help: "Transactions created, labelled by kind.",
	}, []string{"kind"})

	TransactionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapnest_transactions_completed_total",
		Help: "Transactions that reached the Completed state.",
	})

	TokensRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapnest_delivery_tokens_redeemed_total",
		Help: "Delivery tokens consumed exactly once.",
	})

	CreditsTransferred = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapnest_time_credits_transferred_total",
		Help: "Time credits moved between balances.",
	})

	SurpriseBoxesRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapnest_surprise_boxes_redeemed_total",
		Help: "Successful surprise-box redemptions.",
	})

	CompensationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapnest_compensations_failed_total",
		Help: "Compensating writes that themselves failed; each one is a stuck state needing operator attention.",
	})
)
