package httptransport

import "expvar"

var (
	metricErrorResponses = expvar.NewMap("http_error_responses_total")
	metricAuthFailures   = expvar.NewMap("http_auth_failures_total")
	metricDecodeErrors   = expvar.NewInt("http_decode_errors_total")
)
