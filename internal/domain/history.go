package domain

import (
	"encoding/json"
	"fmt"
)

// HistoryEntry is one past run recorded by the analyzer. The analyzer owns
// persistence; this layer only reads entries.
type HistoryEntry struct {
	Timestamp      string  `json:"timestamp"`
	DeficitScore   float64 `json:"deficit_score"`
	Status         string  `json:"status"`
	LDRScore       float64 `json:"ldr_score"`
	InflationScore float64 `json:"inflation_score"`
	DDCUsageRatio  float64 `json:"ddc_usage_ratio"`
}

// Metrics returns the entry's sub-metrics in display order.
func (e HistoryEntry) Metrics() []MetricValue {
	return []MetricValue{
		{Name: "LDR", Value: e.LDRScore},
		{Name: "Inflation", Value: e.InflationScore},
		{Name: "DDC", Value: e.DDCUsageRatio},
	}
}

// DecodeHistory parses the analyzer's `--show-history` output.
func DecodeHistory(raw []byte) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := decodeStrict(raw, &entries); err != nil {
		return nil, err
	}
	var objects []json.RawMessage
	if err := json.Unmarshal(raw, &objects); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	for i, e := range entries {
		if _, err := requireKeys(objects[i], fmt.Sprintf("history[%d].", i), "timestamp", "deficit_score"); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		if e.Timestamp == "" {
			return nil, fmt.Errorf("%w: history[%d].timestamp is empty", ErrMalformedOutput, i)
		}
		if err := checkScore(fmt.Sprintf("history[%d].deficit_score", i), e.DeficitScore); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
	}
	return entries, nil
}
