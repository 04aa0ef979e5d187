package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
	"github.com/HaPhanBaoMinh/cbreport/internal/infrastructure/k8s"
	"github.com/HaPhanBaoMinh/cbreport/internal/infrastructure/mock"
)

func mockPayload(t *testing.T, seed int64, workers int) *domain.Payload {
	t.Helper()
	p, err := mock.New(seed).Payload(workers)
	require.NoError(t, err)
	return p
}

func mockSource(t *testing.T, name string, seed int64) Source {
	t.Helper()
	g := mock.New(seed)
	g.JobName = name
	b, err := g.JSON(2)
	require.NoError(t, err)
	return ReaderSource(name, bytes.NewReader(b))
}

type fakeLoader struct {
	ns    string
	snap  *k8s.Snapshot
	err   error
	calls int
}

func (f *fakeLoader) LoadSnapshot(_ context.Context, ns string) (*k8s.Snapshot, error) {
	f.calls++
	f.ns = ns
	return f.snap, f.err
}

func TestReportOneFormats(t *testing.T) {
	ctx := context.Background()
	p := mockPayload(t, 1, 2)

	a, err := ReportOne(ctx, p, Options{Format: domain.FormatNone})
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = ReportOne(ctx, p, Options{Format: domain.FormatRaw})
	require.NoError(t, err)
	assert.Equal(t, p.Raw, a.Raw)
	assert.Nil(t, a.Report)

	a, err = ReportOne(ctx, p, Options{Format: domain.FormatSummary})
	require.NoError(t, err)
	assert.Contains(t, a.Report.Text, "Iterations/sec:")
	assert.Contains(t, a.Report.Text, "Maximum memory working set:")
	assert.Equal(t, "runc", p.Metadata.RuntimeClass)
	assert.Equal(t, "runc", p.MetadataRaw["runtime_class"])
}

func TestReportOneUnknownWorkload(t *testing.T) {
	p := mockPayload(t, 1, 2)
	p.Metadata.Workload = "mystery"

	a, err := ReportOne(context.Background(), p, Options{Format: domain.FormatSummary})
	require.NoError(t, err)
	assert.Contains(t, a.Report.Text, "Total Clients:")
	assert.NotContains(t, a.Report.Text, "Iterations")
}

func TestReportOneLivePods(t *testing.T) {
	p := mockPayload(t, 1, 2)
	p.APIObjects = nil
	loader := &fakeLoader{err: errors.New("no cluster")}

	a, err := ReportOne(context.Background(), p, Options{Format: domain.FormatJSON, Live: loader, Namespace: "cb"})
	require.NoError(t, err)
	require.NotNil(t, a.Report)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, "cb", loader.ns)

	// api_objects in the payload win over the cluster
	loader.calls = 0
	_, err = ReportOne(context.Background(), mockPayload(t, 1, 2), Options{Format: domain.FormatJSON, Live: loader})
	require.NoError(t, err)
	assert.Equal(t, 0, loader.calls)
}

func TestReportAllKeepsOrder(t *testing.T) {
	sources := []Source{
		mockSource(t, "cpusoaker-runc-0002", 2),
		mockSource(t, "cpusoaker-runc-0000", 3),
		mockSource(t, "cpusoaker-runc-0001", 4),
	}
	answers, err := ReportAll(context.Background(), sources, Options{Format: domain.FormatJSONSummary, Parallelism: 2})
	require.NoError(t, err)
	require.Len(t, answers, 3)
	for i, a := range answers {
		assert.Equal(t, sources[i].Name, a.Source)
		assert.Equal(t, sources[i].Name, a.Payload.Metadata.JobName)
	}
}

func TestReportAllLoadError(t *testing.T) {
	sources := []Source{
		mockSource(t, "cpusoaker-runc-0000", 1),
		ReaderSource("broken", strings.NewReader("{not json")),
	}
	_, err := ReportAll(context.Background(), sources, Options{Format: domain.FormatSummary})
	assert.ErrorContains(t, err, "load broken")
}

func TestPrintJSON(t *testing.T) {
	sources := []Source{mockSource(t, "a-0", 1), mockSource(t, "b-0", 2)}
	answers, err := ReportAll(context.Background(), sources, Options{Format: domain.FormatJSONSummary})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, answers))
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "a-0", docs[0]["metadata"].(map[string]any)["job_name"])
	assert.Contains(t, docs[1], "summary")
}

func TestPrintText(t *testing.T) {
	sources := []Source{mockSource(t, "a-0", 1), mockSource(t, "b-0", 2)}
	answers, err := ReportAll(context.Background(), sources, Options{Format: domain.FormatSummary})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, answers))
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "Overview:\n"))
	assert.Contains(t, out, "\n\nOverview:\n")
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.False(t, strings.HasSuffix(out, "\n\n"))

	buf.Reset()
	require.NoError(t, Print(&buf, []*Answer{nil}))
	assert.Empty(t, buf.String())
}
