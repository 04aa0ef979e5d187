package analysis

import (
	"fmt"
	"sort"
	"strings"
)

func init() {
	RegisterPostprocessor(TypeSpreadsheet, spreadsheetPostprocess)
}

var (
	spreadsheetStatusKeys   = []string{"result", "job_start", "job_end", "job_runtime"}
	spreadsheetMetadataKeys = []string{"uuid", "run_host", "openshift_version", "kata_containers_version", "kata_version"}
)

// spreadsheetPostprocess prefixes the answer with a per-job block of
// tab-separated status and metadata values.
func spreadsheetPostprocess(answer any, status, metadata map[string]any) any {
	type kv struct{ key, value string }
	perJob := map[string][]kv{}
	collect := func(src map[string]any, keys []string) {
		jobs, _ := src["jobs"].(map[string]any)
		for job, v := range jobs {
			fields, _ := v.(map[string]any)
			if _, ok := perJob[job]; !ok {
				perJob[job] = nil
			}
			for _, k := range keys {
				if val, ok := fields[k]; ok {
					perJob[job] = append(perJob[job], kv{k, fmt.Sprint(val)})
				}
			}
		}
	}
	collect(status, spreadsheetStatusKeys)
	collect(metadata, spreadsheetMetadataKeys)

	jobs := make([]string, 0, len(perJob))
	for j := range perJob {
		jobs = append(jobs, j)
	}
	sort.Strings(jobs)

	var b strings.Builder
	for _, job := range jobs {
		fmt.Fprintf(&b, "%s:\n", job)
		lines := make([]string, 0, len(perJob[job]))
		for _, f := range perJob[job] {
			lines = append(lines, fmt.Sprintf("\t%s\t%s", f.key, f.value))
		}
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	return fmt.Sprintf("%s\n%v", b.String(), answer)
}
