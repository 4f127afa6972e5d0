package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/elikia/membership-auth/internal/core/domain"
)

type countingAuditor struct{ n int }

func (c *countingAuditor) Record(domain.LoginEvent) { c.n++ }

// lockedCount reads accounts_locked_total{role} from the default registry.
func lockedCount(t *testing.T, role string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != namespace+"_accounts_locked_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "role" && lp.GetValue() == role {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestObserveLoginEvents_CountsLocks(t *testing.T) {
	next := &countingAuditor{}
	auditor := ObserveLoginEvents(next)

	before := lockedCount(t, "MEMBER")

	auditor.Record(domain.LoginEvent{Email: "m@mail.com", Role: domain.RoleMember, Outcome: domain.OutcomeInvalidCredentials})
	auditor.Record(domain.LoginEvent{Email: "m@mail.com", Role: domain.RoleMember, Outcome: domain.OutcomeInvalidCredentials, Locked: true})

	if next.n != 2 {
		t.Fatalf("expected both events forwarded, got %d", next.n)
	}
	if got := lockedCount(t, "MEMBER") - before; got != 1 {
		t.Fatalf("expected one lock counted, got %v", got)
	}
}
