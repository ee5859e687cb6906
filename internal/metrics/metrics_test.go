package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/julianstephens/famquest/internal/constants"
)

func TestRecordCompletion(t *testing.T) {
	acceptedBefore := testutil.ToFloat64(completions.WithLabelValues(string(constants.CompletionAccepted)))
	dupBefore := testutil.ToFloat64(completions.WithLabelValues(string(constants.CompletionDuplicate)))
	xpBefore := testutil.ToFloat64(xpAwarded)
	levelBefore := testutil.ToFloat64(levelUps)

	RecordCompletion(constants.CompletionAccepted, 10, true)
	RecordCompletion(constants.CompletionDuplicate, 10, true)

	if got := testutil.ToFloat64(completions.WithLabelValues(string(constants.CompletionAccepted))) - acceptedBefore; got != 1 {
		t.Errorf("accepted delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(completions.WithLabelValues(string(constants.CompletionDuplicate))) - dupBefore; got != 1 {
		t.Errorf("duplicate delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(xpAwarded) - xpBefore; got != 10 {
		t.Errorf("xp delta = %v, want 10 (duplicates award nothing)", got)
	}
	if got := testutil.ToFloat64(levelUps) - levelBefore; got != 1 {
		t.Errorf("level-up delta = %v, want 1", got)
	}
}

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Middleware)
	r.HandleFunc("/api/families/{familyID}/today", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/families/{familyID}/today", "418"))
	req := httptest.NewRequest(http.MethodGet, "/api/families/fam-1/today", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/families/{familyID}/today", "418"))
	if after-before != 1 {
		t.Errorf("request counter delta = %v, want 1", after-before)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordStreakRecalculation(true)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "famquest_streak_recalculations_total") {
		t.Error("streak recalculation counter not exposed")
	}
}
