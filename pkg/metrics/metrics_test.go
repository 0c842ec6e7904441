package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordRelayIncrementsCounterAndHistogram(t *testing.T) {
	var hBefore dto.Metric
	if err := RelayRequestDuration.Write(&hBefore); err != nil {
		t.Fatalf("RelayRequestDuration.Write() error = %v", err)
	}
	before := testutil.ToFloat64(RelayRequestsTotal.WithLabelValues("200"))
	RecordRelay(200, NewTimer())
	after := testutil.ToFloat64(RelayRequestsTotal.WithLabelValues("200"))

	if after != before+1 {
		t.Fatalf("RelayRequestsTotal{status=200} = %v, want %v", after, before+1)
	}

	var hAfter dto.Metric
	if err := RelayRequestDuration.Write(&hAfter); err != nil {
		t.Fatalf("RelayRequestDuration.Write() error = %v", err)
	}
	if got, want := hAfter.GetHistogram().GetSampleCount(), hBefore.GetHistogram().GetSampleCount()+1; got != want {
		t.Fatalf("RelayRequestDuration sample count = %d, want %d", got, want)
	}
}

func TestRecordQuotaRejectedIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(QuotaRejectedTotal)
	RecordQuotaRejected()
	after := testutil.ToFloat64(QuotaRejectedTotal)

	if after != before+1 {
		t.Fatalf("QuotaRejectedTotal = %v, want %v", after, before+1)
	}
}

func TestRecordAuditEntryIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(AuditEntriesTotal)
	RecordAuditEntry()
	after := testutil.ToFloat64(AuditEntriesTotal)

	if after != before+1 {
		t.Fatalf("AuditEntriesTotal = %v, want %v", after, before+1)
	}
}

func TestRecordAdminRequestIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(AdminRequestsTotal.WithLabelValues("register", "201"))
	RecordAdminRequest("register", 201)
	after := testutil.ToFloat64(AdminRequestsTotal.WithLabelValues("register", "201"))

	if after != before+1 {
		t.Fatalf("AdminRequestsTotal{register,201} = %v, want %v", after, before+1)
	}
}
