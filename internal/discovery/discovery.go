// Package discovery finds ClusterBuster report directories on disk.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ReportFile is the document every run directory carries.
const ReportFile = "clusterbuster-report.json"

var runDirPattern = regexp.MustCompile(`(^|/)(cpusoaker|fio|uperf|files)-(kata|runc)-[0-9]+[^/]*$`)

// ValidateDir reports whether dir is a completed run directory: its name
// follows the workload-runtime-index convention, it is not marked failed or
// temporary, and it holds a report file.
func ValidateDir(dir string) bool {
	clean := filepath.ToSlash(filepath.Clean(dir))
	if !runDirPattern.MatchString(clean) {
		return false
	}
	if base := filepath.Base(dir); strings.Contains(base, ".FAIL") || strings.Contains(base, ".tmp") {
		return false
	}
	st, err := os.Stat(filepath.Join(dir, ReportFile))
	return err == nil && st.Mode().IsRegular()
}

// EnumerateDirs returns the valid run directories directly under dir, sorted.
func EnumerateDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if ValidateDir(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ResolveSources expands a source path into report files. A file is used as is;
// a directory holding a report file yields that file; any other directory yields
// the report files of its valid run subdirectories.
func ResolveSources(path string) ([]string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return []string{path}, nil
	}
	direct := filepath.Join(path, ReportFile)
	if _, err := os.Stat(direct); err == nil {
		return []string{direct}, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	dirs, err := EnumerateDirs(path)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(dirs))
	for _, d := range dirs {
		files = append(files, filepath.Join(d, ReportFile))
	}
	return files, nil
}
