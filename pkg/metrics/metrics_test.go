package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("writing metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNewRegistersOnPrivateRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.PagesFetchedTotal.Inc()
	m.LinksTotal.WithLabelValues("queued").Add(2)
	m.QueriesTotal.WithLabelValues("match").Inc()

	if got := counterValue(t, m.PagesFetchedTotal); got != 1 {
		t.Errorf("pages fetched = %v, want 1", got)
	}
	if got := counterValue(t, m.LinksTotal.WithLabelValues("queued")); got != 2 {
		t.Errorf("queued links = %v, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}

	// A second set on a fresh registry must not collide.
	New(prometheus.NewRegistry())
}
