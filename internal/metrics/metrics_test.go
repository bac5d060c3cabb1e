package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metricValue finds a counter or gauge sample by name and label set
func metricValue(t *testing.T, r *Recorder, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if !labelsMatch(m, labels) {
				continue
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			if m.GetGauge() != nil {
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return 0
}

func labelsMatch(m *dto.Metric, labels map[string]string) bool {
	if len(m.GetLabel()) != len(labels) {
		return false
	}
	for _, lp := range m.GetLabel() {
		if labels[lp.GetName()] != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestRecorder(t *testing.T) {
	r := New("", "")

	r.ObserveCycle(ResultOK, 120*time.Millisecond)
	r.ObserveCycle(ResultOK, 80*time.Millisecond)
	r.ObserveCycle(ResultAborted, time.Millisecond)
	r.ObserveTrades("BUY", 3)
	r.ObserveTrades("SELL", 1)
	r.ObserveTrades("SELL", 0)
	r.ObserveRejected(SourceMarket, 7)
	r.SetPortfolio(4, -123.5)

	assert.Equal(t, 2.0, metricValue(t, r, "rebalancer_cycles_total", map[string]string{"result": ResultOK}))
	assert.Equal(t, 1.0, metricValue(t, r, "rebalancer_cycles_total", map[string]string{"result": ResultAborted}))
	assert.Equal(t, 3.0, metricValue(t, r, "rebalancer_trades_total", map[string]string{"action": "BUY"}))
	assert.Equal(t, 1.0, metricValue(t, r, "rebalancer_trades_total", map[string]string{"action": "SELL"}))
	assert.Equal(t, 7.0, metricValue(t, r, "rebalancer_rejected_rows_total", map[string]string{"source": SourceMarket}))
	assert.Equal(t, 4.0, metricValue(t, r, "rebalancer_holdings", nil))
	assert.Equal(t, -123.5, metricValue(t, r, "rebalancer_unrealized_pnl", nil))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.ObserveCycle(ResultOK, time.Second)
	r.ObserveTrades("BUY", 1)
	r.ObserveRejected(SourceMarket, 1)
	r.SetPortfolio(1, 1)
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.Push(context.Background()))
}

func TestPush_Disabled(t *testing.T) {
	assert.NoError(t, New("", "rebalancer").Push(context.Background()))
}

func TestPush(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := New(server.URL, "rebalancer")
	r.ObserveCycle(ResultOK, time.Second)

	require.NoError(t, r.Push(context.Background()))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/metrics/job/rebalancer", gotPath)
}

func TestPush_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := New(server.URL, "rebalancer").Push(context.Background())
	assert.Error(t, err)
}
