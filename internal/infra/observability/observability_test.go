package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCollection(t *testing.T) {
	before := testutil.ToFloat64(collectionsTotal.WithLabelValues("passive"))
	RecordCollection("passive")
	after := testutil.ToFloat64(collectionsTotal.WithLabelValues("passive"))
	if after != before+1 {
		t.Errorf("collections_total{kind=passive} = %v, want %v", after, before+1)
	}
}

func TestRecordCredit(t *testing.T) {
	before := testutil.ToFloat64(creditsEarned)
	RecordCredit(250)
	RecordCredit(-10) // negative amounts are ignored
	after := testutil.ToFloat64(creditsEarned)
	if after != before+250 {
		t.Errorf("credits_earned_total = %v, want %v", after, before+250)
	}
}

func TestRecordSweep(t *testing.T) {
	runsBefore := testutil.ToFloat64(sweepRuns)
	collectedBefore := testutil.ToFloat64(sweepCollections)

	RecordSweep(3)

	if got := testutil.ToFloat64(sweepRuns); got != runsBefore+1 {
		t.Errorf("sweep_runs_total = %v, want %v", got, runsBefore+1)
	}
	if got := testutil.ToFloat64(sweepCollections); got != collectedBefore+3 {
		t.Errorf("sweep_collections_total = %v, want %v", got, collectedBefore+3)
	}
}
