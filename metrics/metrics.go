package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Transfers counts Federal Reserve transfers by outcome (success, rejected)
var Transfers = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blackmarket_transfers_total",
		Help: "Total number of Federal Reserve transfer attempts",
	},
	[]string{"outcome"},
)

// TransferredMoney sums the money credited to destination accounts, after commission
var TransferredMoney = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "blackmarket_transferred_money_total",
		Help: "Money credited by Federal Reserve transfers after commission",
	},
)

// PasswordUpgrades counts hash upgrades by the algorithm they moved to
var PasswordUpgrades = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blackmarket_password_upgrades_total",
		Help: "Total number of password hash upgrades",
	},
	[]string{"algorithm"},
)

// SourceCodePurchases counts source code bought per box
var SourceCodePurchases = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "blackmarket_source_code_purchases_total",
		Help: "Total number of source code purchases",
	},
	[]string{"box"},
)

var SwatRequests = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "blackmarket_swat_requests_total",
		Help: "Total number of SWAT bribes paid",
	},
)

func init() {
	prometheus.MustRegister(Transfers, TransferredMoney)
	prometheus.MustRegister(PasswordUpgrades, SourceCodePurchases, SwatRequests)
}
