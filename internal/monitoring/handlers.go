package monitoring

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paveg/plotdeck/internal/version"
)

// HealthHandler serves the health check endpoint
func HealthHandler(collector *MetricsCollector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		response := map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"enabled":   collector.IsEnabled(),
			"version":   version.Version,
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode health status", http.StatusInternalServerError)
			return
		}
	}
}

// OperationsHandler serves the recent stage history and its summary as JSON
func OperationsHandler(collector *MetricsCollector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		response := struct {
			Summary    MetricsSummary     `json:"summary"`
			Operations []OperationMetrics `json:"operations"`
		}{
			Summary:    collector.GetSummary(),
			Operations: collector.GetMetrics(),
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode metrics", http.StatusInternalServerError)
			return
		}
	}
}
