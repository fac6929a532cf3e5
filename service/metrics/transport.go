package metrics

import (
	"net/http"
	"time"
)

// InstrumentTransport wraps next so every request made through it is recorded
// under endpointName. The endpointName function should map a request to a
// constant identifier (e.g. "/v1/history") so labels stay low-cardinality.
// A nil next uses http.DefaultTransport.
func InstrumentTransport(m *Metrics, next http.RoundTripper, endpointName func(*http.Request) string) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &roundTripper{next: next, metrics: m, endpointName: endpointName}
}

type roundTripper struct {
	next         http.RoundTripper
	metrics      *Metrics
	endpointName func(*http.Request) string
}

// RoundTrip records the status code and duration of the wrapped call. Transport
// errors are recorded with status "error".
func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := rt.next.RoundTrip(req)

	if rt.metrics != nil {
		statusCode := 0
		if err == nil && resp != nil {
			statusCode = resp.StatusCode
		}
		rt.metrics.RecordHTTPRequest(rt.endpointName(req), statusCode, time.Since(start).Seconds())
	}

	return resp, err
}
