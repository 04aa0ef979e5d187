// Package metrics answers extremum queries over the Prometheus range series a
// producer attaches to its report.
package metrics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/prometheus/common/model"
)

// queryResult is the body of a Prometheus range query as saved by the producer.
type queryResult struct {
	Status string `json:"status"`
	Data   struct {
		ResultType model.ValueType `json:"resultType"`
		Result     model.Matrix    `json:"result"`
	} `json:"data"`
}

// Prometheus holds the decoded series of one report, keyed by series name.
type Prometheus struct {
	series map[string]model.Matrix
	log    *slog.Logger
}

// New decodes every series of the payload's metrics block. A series may be either
// a full query response or a bare matrix; a series that decodes as neither is
// dropped with a warning.
func New(raw map[string]json.RawMessage, log *slog.Logger) *Prometheus {
	if log == nil {
		log = slog.Default()
	}
	p := &Prometheus{series: make(map[string]model.Matrix, len(raw)), log: log}
	for name, body := range raw {
		m, err := decodeSeries(body)
		if err != nil {
			log.Warn("skipping metrics series", "series", name, "error", err)
			continue
		}
		p.series[name] = m
	}
	return p
}

func decodeSeries(body json.RawMessage) (model.Matrix, error) {
	var qr queryResult
	if err := json.Unmarshal(body, &qr); err == nil && qr.Data.Result != nil {
		if qr.Data.ResultType != model.ValNone && qr.Data.ResultType != model.ValMatrix {
			return nil, fmt.Errorf("unexpected result type %s", qr.Data.ResultType)
		}
		return qr.Data.Result, nil
	}
	var m model.Matrix
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	return m, nil
}

// Max returns the largest sample across every stream of the named series.
func (p *Prometheus) Max(series string) (float64, bool) {
	m, ok := p.series[series]
	if !ok {
		return 0, false
	}
	found := false
	best := math.Inf(-1)
	for _, stream := range m {
		for _, s := range stream.Values {
			v := float64(s.Value)
			if math.IsNaN(v) {
				continue
			}
			if v > best {
				best = v
			}
			found = true
		}
	}
	return best, found
}

// GetMaxValueByKey formats the maximum of the series, or returns "N/A" when the
// series is absent or empty.
func (p *Prometheus) GetMaxValueByKey(series string, format func(float64) any) any {
	v, ok := p.Max(series)
	if !ok {
		return "N/A"
	}
	if format == nil {
		return v
	}
	return format(v)
}

// Series lists the decoded series names.
func (p *Prometheus) Series() []string {
	out := make([]string, 0, len(p.series))
	for n := range p.series {
		out = append(out, n)
	}
	return out
}
