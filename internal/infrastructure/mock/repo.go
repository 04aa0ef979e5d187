// Package mock synthesizes ClusterBuster reports for demos and tests.
package mock

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
)

// Generator builds cpusoaker payloads. The same seed always yields the same
// document.
type Generator struct {
	rnd     *rand.Rand
	Nodes   []string
	JobName string
	Start   float64
}

func New(seed int64) *Generator {
	return &Generator{
		rnd:     rand.New(rand.NewSource(seed)),
		Nodes:   []string{"worker-0", "worker-1", "worker-2"},
		JobName: "cpusoaker-runc-0000",
		Start:   1700000000,
	}
}

// Payload decodes a generated document with workers rows.
func (g *Generator) Payload(workers int) (*domain.Payload, error) {
	b, err := g.JSON(workers)
	if err != nil {
		return nil, err
	}
	return domain.DecodePayload(b)
}

// JSON renders a generated report document.
func (g *Generator) JSON(workers int) ([]byte, error) {
	return json.Marshal(g.Document(workers))
}

// Document builds the report document as plain JSON values.
func (g *Generator) Document(workers int) map[string]any {
	rows := make([]any, 0, workers)
	pods := make([]any, 0, workers)
	for i := 0; i < workers; i++ {
		ns := fmt.Sprintf("clusterbuster-%d", i%2)
		pod := fmt.Sprintf("clusterbuster-%d-cpusoaker-%d", i%2, i)
		node := g.Nodes[i%len(g.Nodes)]

		create := g.Start + 0.1*float64(i) + g.jitter(0.05)
		podStart := create + 1 + g.jitter(0.2)
		dataStart := g.Start + 5 + g.jitter(0.02)
		elapsed := 10 + g.jitter(0.05)
		user := elapsed * (0.9 + g.jitter(0.05))
		sys := elapsed * (0.02 + g.jitter(0.01))
		rows = append(rows, map[string]any{
			"namespace":         ns,
			"pod":               pod,
			"container":         "c0",
			"process_id":        1000 + i,
			"pod_create_time":   create,
			"pod_start_time":    podStart,
			"data_start_time":   dataStart,
			"data_end_time":     dataStart + elapsed,
			"data_elapsed_time": elapsed,
			"user_cpu_time":     user,
			"system_cpu_time":   sys,
			"cpu_time":          user + sys,
			"work_iterations":   int64(elapsed * (4.5e7 + 1e6*g.jitter(1))),
			"timing_parameters": map[string]any{
				"sync_rtt_delta": 0.0005 + g.jitter(0.0002),
			},
		})
		pods = append(pods, map[string]any{
			"apiVersion": "v1",
			"kind":       "Pod",
			"metadata": map[string]any{
				"name":      pod,
				"namespace": ns,
				"labels":    map[string]any{"clusterbuster-client": "true"},
			},
			"spec": map[string]any{"nodeName": node},
		})
	}
	return map[string]any{
		"metadata": map[string]any{
			"job_name":           g.JobName,
			"workload":           "cpusoaker",
			"run_uuid":           "00000000-0000-4000-8000-000000000000",
			"uuid":               "00000000-0000-4000-8000-000000000001",
			"runHost":            "controller.example.com",
			"cluster_start_time": "2023-11-14T22:13:20Z",
			"artifact_directory": "/var/tmp/" + g.JobName,
			"kubernetes_version": map[string]any{
				"serverVersion": map[string]any{"gitVersion": "v1.31.0"},
			},
			"expanded_command_line": []any{"clusterbuster", "--workload=cpusoaker",
				fmt.Sprintf("--replicas=%d", workers), "--runtime=10"},
			"options": map[string]any{
				"runtime_classes": map[string]any{"default": "runc"},
			},
		},
		"status": map[string]any{
			"result":      "PASS",
			"job_start":   "2023-11-14T22:13:20Z",
			"job_end":     "2023-11-14T22:13:45Z",
			"job_runtime": 25,
		},
		"Results": map[string]any{
			"worker_results": rows,
			"controller_timing": map[string]any{
				"sync_ts":              g.Start + 4.5,
				"first_controller_ts":  g.Start + 4.49,
				"second_controller_ts": g.Start + 4.495,
			},
		},
		"api_objects": pods,
		"metrics":     g.metrics(),
	}
}

// metrics builds a small range-query result per series.
func (g *Generator) metrics() map[string]any {
	series := map[string]float64{
		"containerMemoryWorkingSet-clusterbuster": 64 << 20,
		"rxNetworkBytes-WorkerByNode":             2.5e5,
		"txNetworkBytes-WorkerByNode":             1.5e5,
		"nodeCPUUser-Workers":                     0.85,
		"nodeCPUSys-Workers":                      0.03,
		"nodeCPUUtil-Workers":                     0.88,
		"containerCPU-clusterbuster":              0.8,
	}
	out := make(map[string]any, len(series))
	for name, peak := range series {
		values := make([]any, 0, 5)
		for i := 0; i < 5; i++ {
			v := peak * (0.6 + 0.1*float64(i))
			values = append(values, []any{g.Start + float64(15*i), fmt.Sprintf("%g", v)})
		}
		out[name] = map[string]any{
			"status": "success",
			"data": map[string]any{
				"resultType": "matrix",
				"result": []any{map[string]any{
					"metric": map[string]any{"__name__": name},
					"values": values,
				}},
			},
		}
	}
	return out
}

// jitter returns a value in [-scale, scale).
func (g *Generator) jitter(scale float64) float64 {
	return (g.rnd.Float64()*2 - 1) * scale
}
