package model

import (
	"encoding/json"
	"fmt"
	"log"
)

// QueryResult is one backend answer to a free-text query.
// It is replaced wholesale on every successful query and never merged.
type QueryResult struct {
	Summary string
	Chart   *ChartPayload // nil = no chart
	Table   RowSet        // empty = no table
}

// ChartPayload is the backend's chart shape: a shared x-axis plus named series.
type ChartPayload struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// UnmarshalJSON accepts string or numeric labels; the backend sends years as
// integers.
func (p *ChartPayload) UnmarshalJSON(data []byte) error {
	var w struct {
		Labels   []json.RawMessage `json:"labels"`
		Datasets []Dataset         `json:"datasets"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var labels []string
	if w.Labels != nil {
		labels = make([]string, 0, len(w.Labels))
	}
	for _, raw := range w.Labels {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			labels = append(labels, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("model: chart label %s: %w", raw, err)
		}
		labels = append(labels, n.String())
	}

	p.Labels = labels
	p.Datasets = w.Datasets
	return nil
}

// Dataset is one named numeric series aligned with ChartPayload.Labels.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// DatasetFile is a spreadsheet selected for upload.
type DatasetFile struct {
	Name string
	Data []byte
}

// HasChart reports whether the result carries a renderable chart payload.
func (r *QueryResult) HasChart() bool {
	return r != nil && r.Chart != nil && len(r.Chart.Labels) > 0
}

// HasTable reports whether the result carries at least one table row.
func (r *QueryResult) HasTable() bool {
	return r != nil && len(r.Table) > 0
}

// Clone returns a deep copy so snapshots never alias controller state.
func (r *QueryResult) Clone() *QueryResult {
	if r == nil {
		return nil
	}
	out := &QueryResult{Summary: r.Summary, Table: r.Table.Clone()}
	if r.Chart != nil {
		c := &ChartPayload{Labels: append([]string(nil), r.Chart.Labels...)}
		if r.Chart.Datasets != nil {
			c.Datasets = make([]Dataset, len(r.Chart.Datasets))
			for i, d := range r.Chart.Datasets {
				c.Datasets[i] = Dataset{Label: d.Label, Data: append([]float64(nil), d.Data...)}
			}
		}
		out.Chart = c
	}
	return out
}

type wireResult struct {
	Summary json.RawMessage `json:"summary"`
	Chart   json.RawMessage `json:"chart"`
	Table   json.RawMessage `json:"table"`
}

// UnmarshalJSON decodes a query response. The chart and table sections are
// decoded independently: a malformed section degrades to "nothing to render"
// instead of failing the whole result.
func (r *QueryResult) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = QueryResult{}

	if len(w.Summary) > 0 {
		var s string
		if err := json.Unmarshal(w.Summary, &s); err == nil {
			r.Summary = s
		}
	}

	if isPresent(w.Chart) {
		var c ChartPayload
		if err := json.Unmarshal(w.Chart, &c); err != nil {
			log.Printf("model: dropping malformed chart payload: %v", err)
		} else {
			r.Chart = &c
		}
	}

	if isPresent(w.Table) {
		var t RowSet
		if err := json.Unmarshal(w.Table, &t); err != nil {
			log.Printf("model: dropping malformed table payload: %v", err)
		} else {
			r.Table = t
		}
	}

	return nil
}

// MarshalJSON writes the result in the backend's wire shape.
func (r QueryResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Summary string        `json:"summary"`
		Chart   *ChartPayload `json:"chart"`
		Table   RowSet        `json:"table"`
	}{r.Summary, r.Chart, r.Table})
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
