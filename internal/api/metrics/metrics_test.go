package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/aurora-advisory/advisory-api/internal/core/domain"
	"github.com/aurora-advisory/advisory-api/internal/core/ports"
)

var (
	_ ports.WorkflowObserver = Observer{}
	_ ports.LoginObserver    = Observer{}
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestObserver_Counts(t *testing.T) {
	o := Observer{}
	transitions := StatusTransitionsTotal.WithLabelValues("pending", "cancelled", "owner")
	before := counterValue(t, transitions)

	o.StatusChanged(domain.StatusPending, domain.StatusCancelled, domain.ActorOwner)
	o.StatusChanged(domain.StatusPending, domain.StatusCancelled, domain.ActorOwner)

	if got := counterValue(t, transitions); got != before+2 {
		t.Fatalf("expected %v transitions, got %v", before+2, got)
	}

	throttled := LoginAttemptsTotal.WithLabelValues(ports.LoginThrottled)
	before = counterValue(t, throttled)
	o.LoginAttempt(ports.LoginThrottled)
	if got := counterValue(t, throttled); got != before+1 {
		t.Fatalf("expected throttled login to be counted, got %v", got)
	}
}
