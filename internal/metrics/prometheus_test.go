package metrics

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const queryBody = `{
  "status": "success",
  "data": {
    "resultType": "matrix",
    "result": [
      {"metric": {"instance": "w0"}, "values": [[1700000000, "1.5"], [1700000015, "4.25"]]},
      {"metric": {"instance": "w1"}, "values": [[1700000000, "NaN"], [1700000015, "3"]]}
    ]
  }
}`

const matrixBody = `[{"metric": {}, "values": [[1700000000, "-2"], [1700000015, "-1"]]}]`

func newTestSource(t *testing.T) *Prometheus {
	t.Helper()
	return New(map[string]json.RawMessage{
		"query":  json.RawMessage(queryBody),
		"matrix": json.RawMessage(matrixBody),
		"empty":  json.RawMessage(`[]`),
		"broken": json.RawMessage(`42`),
	}, nil)
}

func TestMax(t *testing.T) {
	p := newTestSource(t)

	v, ok := p.Max("query")
	require.True(t, ok)
	assert.Equal(t, 4.25, v)

	v, ok = p.Max("matrix")
	require.True(t, ok)
	assert.Equal(t, -1.0, v)

	_, ok = p.Max("empty")
	assert.False(t, ok)
	_, ok = p.Max("missing")
	assert.False(t, ok)
}

func TestBrokenSeriesDropped(t *testing.T) {
	p := newTestSource(t)
	assert.ElementsMatch(t, []string{"query", "matrix", "empty"}, p.Series())
}

func TestGetMaxValueByKey(t *testing.T) {
	p := newTestSource(t)
	format := func(v float64) any { return fmt.Sprintf("%.2f units", v) }

	assert.Equal(t, "4.25 units", p.GetMaxValueByKey("query", format))
	assert.Equal(t, 4.25, p.GetMaxValueByKey("query", nil))
	assert.Equal(t, "N/A", p.GetMaxValueByKey("missing", format))
	assert.Equal(t, "N/A", p.GetMaxValueByKey("broken", format))
}

func TestUnexpectedResultType(t *testing.T) {
	body := `{"status":"success","data":{"resultType":"vector","result":[]}}`
	p := New(map[string]json.RawMessage{"v": json.RawMessage(body)}, nil)
	assert.Empty(t, p.Series())
}
