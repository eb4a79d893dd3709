package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentCountsRequests(t *testing.T) {
	handler := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refresh", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/refresh", "418"))
	if got != 1 {
		t.Fatalf("http_requests_total = %v, want 1", got)
	}
}

func TestBrokerCounters(t *testing.T) {
	before := testutil.ToFloat64(tokensIssuedTotal)
	CountTokenIssued()
	if got := testutil.ToFloat64(tokensIssuedTotal); got != before+1 {
		t.Fatalf("broker_tokens_issued_total = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(loginsTotal.WithLabelValues("keycloak_local"))
	CountLogin("keycloak_local")
	if got := testutil.ToFloat64(loginsTotal.WithLabelValues("keycloak_local")); got != before+1 {
		t.Fatalf("broker_logins_total = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(refreshReplaysTotal)
	CountRefreshReplay()
	if got := testutil.ToFloat64(refreshReplaysTotal); got != before+1 {
		t.Fatalf("broker_refresh_replays_total = %v, want %v", got, before+1)
	}
}
