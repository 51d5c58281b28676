package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestForSharesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := Config{Enabled: true, Registry: reg}

	first := For(cfg)
	second := For(cfg)
	if first != second {
		t.Fatal("For should return the same Registry for the same registerer")
	}

	other := For(Config{Enabled: true, Registry: reg, Namespace: "other"})
	if other == first {
		t.Fatal("different namespaces should get different registries")
	}
}

func TestNamespaceApplied(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := For(Config{Registry: reg, Namespace: "custom"})
	r.HitsSent.WithLabelValues("screenview").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "custom_tracker_hits_sent_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected custom_tracker_hits_sent_total to be registered")
	}
}

func TestRegistryCounters(t *testing.T) {
	r := NewRegistry(prometheus.NewRegistry())

	r.SendFailures.WithLabelValues("timing").Add(2)
	r.WorkerPoolQueued.WithLabelValues("dispatch").Set(3)

	if got := testutil.ToFloat64(r.SendFailures.WithLabelValues("timing")); got != 2 {
		t.Errorf("send failures = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.WorkerPoolQueued.WithLabelValues("dispatch")); got != 3 {
		t.Errorf("queued = %v, want 3", got)
	}
}
