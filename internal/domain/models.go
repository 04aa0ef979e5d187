package domain

import (
	"encoding/json"
	"fmt"
)

// RawRow is one worker's result as reported by the workload pod.
type RawRow = map[string]any

type KubernetesVersion struct {
	ServerVersion struct {
		GitVersion string `json:"gitVersion"`
	} `json:"serverVersion"`
	OpenshiftVersion string `json:"openshiftVersion,omitempty"`
}

type Options struct {
	RuntimeClasses map[string]string `json:"runtime_classes"`
}

// Metadata carries the typed view of the payload's metadata block.
type Metadata struct {
	JobName                string            `json:"job_name"`
	Workload               string            `json:"workload"`
	WorkloadReportingClass string            `json:"workload_reporting_class,omitempty"`
	RunUUID                string            `json:"run_uuid"`
	UUID                   string            `json:"uuid"`
	RunHost                string            `json:"runHost"`
	ClusterStartTime       any               `json:"cluster_start_time"`
	ArtifactDirectory      string            `json:"artifact_directory"`
	KubernetesVersion      KubernetesVersion `json:"kubernetes_version"`
	ExpandedCommandLine    []string          `json:"expanded_command_line"`
	RuntimeClass           string            `json:"runtime_class,omitempty"`
	Options                Options           `json:"options"`
}

// ReportingClass is the workload name used to select a reporter.
func (m Metadata) ReportingClass() string {
	if m.WorkloadReportingClass != "" {
		return m.WorkloadReportingClass
	}
	return m.Workload
}

type ControllerTiming struct {
	SyncTS             float64 `json:"sync_ts"`
	FirstControllerTS  float64 `json:"first_controller_ts"`
	SecondControllerTS float64 `json:"second_controller_ts"`
}

type Results struct {
	WorkerResults    []RawRow          `json:"worker_results"`
	ControllerTiming *ControllerTiming `json:"controller_timing,omitempty"`
}

// Payload is one clusterbuster-report.json document.
type Payload struct {
	Metadata    Metadata
	MetadataRaw map[string]any
	Status      map[string]any
	Results     Results
	APIObjects  []map[string]any
	Metrics     map[string]json.RawMessage

	// Raw is the whole document as decoded, used by the raw and json-verbose formats.
	Raw map[string]any
}

type wirePayload struct {
	Metadata   json.RawMessage            `json:"metadata"`
	Status     map[string]any             `json:"status"`
	Results    *Results                   `json:"Results"`
	APIObjects []map[string]any           `json:"api_objects"`
	Metrics    map[string]json.RawMessage `json:"metrics"`
}

// DecodePayload parses a report document.
func DecodePayload(data []byte) (*Payload, error) {
	var w wirePayload
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	p := &Payload{
		Status:     w.Status,
		APIObjects: w.APIObjects,
		Metrics:    w.Metrics,
	}
	if w.Results != nil {
		p.Results = *w.Results
	}
	if len(w.Metadata) > 0 {
		if err := json.Unmarshal(w.Metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		if err := json.Unmarshal(w.Metadata, &p.MetadataRaw); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if p.MetadataRaw == nil {
		p.MetadataRaw = map[string]any{}
	}
	if err := json.Unmarshal(data, &p.Raw); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	p.Raw["metadata"] = p.MetadataRaw
	return p, nil
}

// SetRuntimeClass records the runtime class in both metadata views.
func (p *Payload) SetRuntimeClass(rc string) {
	p.Metadata.RuntimeClass = rc
	p.MetadataRaw["runtime_class"] = rc
}

// HasMetrics reports whether the producer attached a metrics block.
func (p *Payload) HasMetrics() bool {
	return p.Metrics != nil
}
