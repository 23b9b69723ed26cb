package settlement

import "expvar"

var (
	metricOpsTotal   = expvar.NewMap("settlement_ops_total")
	metricOpErrors   = expvar.NewMap("settlement_op_errors_total")
	metricPrizesPaid = expvar.NewInt("settlement_prizes_paid_total")
	metricSweptTotal = expvar.NewInt("settlement_swept_total")
)
