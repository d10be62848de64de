package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/bharathkommuri5/multi-cloud-llm-abstraction/pkg/config"
)

// BenchmarkCollector_RecordDeletion measures lifecycle counter updates.
//
// Target: <1µs per update.
func BenchmarkCollector_RecordDeletion(b *testing.B) {
	collector := NewCollector(testConfig(), nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordDeletion(OutcomeCommitted)
	}
}

// BenchmarkCollector_RecordSweep measures sweep recording with the
// duration histogram.
func BenchmarkCollector_RecordSweep(b *testing.B) {
	collector := NewCollector(testConfig(), nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordSweep(SweepClean, 120*time.Millisecond, 3, 0)
	}
}

// BenchmarkCollector_RecordHTTPRequest measures request recording with
// the cardinality guard in the path.
func BenchmarkCollector_RecordHTTPRequest(b *testing.B) {
	collector := NewCollector(testConfig(), nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordHTTPRequest(http.MethodDelete, "/admin/accounts/{id}", 200, 15*time.Millisecond)
	}
}

// BenchmarkCollector_Disabled measures the cost of a disabled collector.
//
// Target: a few ns, this is the hot path when metrics are off.
func BenchmarkCollector_Disabled(b *testing.B) {
	collector := NewCollector(&config.MetricsConfig{Enabled: false}, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		collector.RecordDeletion(OutcomeCommitted)
	}
}
