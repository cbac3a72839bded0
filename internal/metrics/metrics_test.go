package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetric は指定した名前とラベルに一致するメトリクスを返す。
func findMetric(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
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

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestNewCollector_DuplicateRegistrationPanics は同一レジストリへの二重登録がpanicすることを検証する。
func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = NewCollector(reg)
}

// TestRecordSignIn_LabelsByModeAndOutcome はサインイン結果がモード・結果別に集計されることを検証する。
func TestRecordSignIn_LabelsByModeAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignIn("local", OutcomeSuccess)
	c.RecordSignIn("local", OutcomeSuccess)
	c.RecordSignIn("provider", OutcomeRejected)

	m := findMetric(t, reg, "injexpro_sign_in_total", map[string]string{"mode": "local", "outcome": "success"})
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("sign_in_total{local,success} = %v, want 2", got)
	}
	m = findMetric(t, reg, "injexpro_sign_in_total", map[string]string{"mode": "provider", "outcome": "rejected"})
	if got := m.GetCounter().GetValue(); got != 1 {
		t.Errorf("sign_in_total{provider,rejected} = %v, want 1", got)
	}
}

// TestRecordSignUp_IncrementsCounter はサインアップ結果が記録されることを検証する。
func TestRecordSignUp_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSignUp("provider", OutcomeError)

	m := findMetric(t, reg, "injexpro_sign_up_total", map[string]string{"mode": "provider", "outcome": "error"})
	if got := m.GetCounter().GetValue(); got != 1 {
		t.Errorf("sign_up_total = %v, want 1", got)
	}
}

// TestRecordChecklistSubmission_IncrementsCounter はチェックリスト送信結果が記録されることを検証する。
func TestRecordChecklistSubmission_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordChecklistSubmission(OutcomeSuccess)
	c.RecordChecklistSubmission(OutcomeRejected)
	c.RecordChecklistSubmission(OutcomeSuccess)

	m := findMetric(t, reg, "injexpro_checklist_submissions_total", map[string]string{"outcome": "success"})
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("checklist_submissions_total{success} = %v, want 2", got)
	}
}

// TestRecordRecordWriteLatency_ObservesHistogram はレイテンシがヒストグラムに記録されることを検証する。
func TestRecordRecordWriteLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRecordWriteLatency(150 * time.Millisecond)
	c.RecordRecordWriteLatency(50 * time.Millisecond)

	m := findMetric(t, reg, "injexpro_record_write_latency_seconds", map[string]string{})
	if got := m.GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("sample count = %d, want 2", got)
	}
}

// TestSetOpenChecklistSessions_SetsGauge はゲージが最新値で上書きされることを検証する。
func TestSetOpenChecklistSessions_SetsGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SetOpenChecklistSessions(3)
	c.SetOpenChecklistSessions(1)

	m := findMetric(t, reg, "injexpro_open_checklist_sessions", map[string]string{})
	if got := m.GetGauge().GetValue(); got != 1 {
		t.Errorf("open_checklist_sessions = %v, want 1", got)
	}
}

// TestRecordReferenceFallback_LabelsByDataset はフォールバック回数がデータセット別に記録されることを検証する。
func TestRecordReferenceFallback_LabelsByDataset(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordReferenceFallback("procedures")
	c.RecordReferenceFallback("complications")
	c.RecordReferenceFallback("procedures")

	m := findMetric(t, reg, "injexpro_reference_fallback_total", map[string]string{"dataset": "procedures"})
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("reference_fallback_total{procedures} = %v, want 2", got)
	}
}

// TestRecordHTTPStatus_LabelsByStatusCode はステータスコード別に記録されることを検証する。
func TestRecordHTTPStatus_LabelsByStatusCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(409)
	c.RecordHTTPStatus(200)

	m := findMetric(t, reg, "injexpro_http_status_total", map[string]string{"status_code": "200"})
	if got := m.GetCounter().GetValue(); got != 2 {
		t.Errorf("http_status_total{200} = %v, want 2", got)
	}
	m = findMetric(t, reg, "injexpro_http_status_total", map[string]string{"status_code": "409"})
	if got := m.GetCounter().GetValue(); got != 1 {
		t.Errorf("http_status_total{409} = %v, want 1", got)
	}
}

// TestRecordSessionsCleaned_AddsCount は削除件数が加算されることを検証する。
func TestRecordSessionsCleaned_AddsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionsCleaned(4)
	c.RecordSessionsCleaned(0)
	c.RecordSessionsCleaned(2)

	m := findMetric(t, reg, "injexpro_sessions_cleaned_total", map[string]string{})
	if got := m.GetCounter().GetValue(); got != 6 {
		t.Errorf("sessions_cleaned_total = %v, want 6", got)
	}
}
