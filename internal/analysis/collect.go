package analysis

import (
	"fmt"

	"github.com/HaPhanBaoMinh/cbreport/internal/domain"
	"github.com/HaPhanBaoMinh/cbreport/internal/report"
)

// runMetadataKeys are lifted from each job into the run metadata.
var runMetadataKeys = []string{"uuid", "run_host", "openshift_version", "kata_version",
	"kata_containers_version", "cnv_version"}

// Run is one reduced job: its json-summary report plus the payload it came from.
type Run struct {
	Payload *domain.Payload
	Summary *report.Tree
}

// Collect arranges reduced jobs into the analysis input:
// workload -> runtime class -> job name -> summary, plus run-wide metadata and
// status blocks carrying a per-job breakdown under "jobs".
func Collect(runs []Run) map[string]any {
	data := map[string]any{}
	metadata := map[string]any{}
	status := map[string]any{}
	mdJobs := map[string]any{}
	stJobs := map[string]any{}

	for _, run := range runs {
		md := run.Payload.Metadata
		workload := md.ReportingClass()
		rc := md.RuntimeClass
		if rc == "" {
			rc = "runc"
		}
		byRuntime, _ := data[workload].(map[string]any)
		if byRuntime == nil {
			byRuntime = map[string]any{}
			data[workload] = byRuntime
		}
		jobs, _ := byRuntime[rc].(map[string]any)
		if jobs == nil {
			jobs = map[string]any{}
			byRuntime[rc] = jobs
		}
		summary := map[string]any{}
		if run.Summary != nil {
			summary = run.Summary.Map()
		}
		jobs[md.JobName] = summary

		jobMeta := map[string]any{"run_host": md.RunHost, "uuid": md.UUID}
		if md.KubernetesVersion.OpenshiftVersion != "" {
			jobMeta["openshift_version"] = md.KubernetesVersion.OpenshiftVersion
		}
		for _, k := range runMetadataKeys {
			if v, ok := run.Payload.MetadataRaw[k]; ok {
				jobMeta[k] = v
			}
		}
		mdJobs[md.JobName] = jobMeta
		for k, v := range jobMeta {
			if _, ok := metadata[k]; !ok {
				metadata[k] = v
			}
		}

		jobStatus := map[string]any{}
		for k, v := range run.Payload.Status {
			jobStatus[k] = v
		}
		stJobs[md.JobName] = jobStatus
		if res, ok := jobStatus["result"]; ok && fmt.Sprint(res) != "PASS" {
			status["result"] = "FAIL"
			failed, _ := status["failed"].([]any)
			status["failed"] = append(failed, md.JobName)
		}
	}
	if _, ok := status["result"]; !ok && len(runs) > 0 {
		status["result"] = "PASS"
	}
	metadata["jobs"] = mdJobs
	status["jobs"] = stJobs
	data["metadata"] = metadata
	data["status"] = status
	return data
}
