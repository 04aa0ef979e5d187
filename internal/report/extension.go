package report

// Extension is the workload-specific part of a report. The Reporter always runs
// its own reduction first and then the extension, so an extension only appends.
type Extension interface {
	// Configure registers workload variables and headers before ingestion.
	Configure(r *Reporter) error
	// ExtendRow adds the detail entry for one (already reduced) row.
	ExtendRow(r *Reporter, detail *Tree, row *Tree) error
	// ExtendSummary appends workload results after the generic summary.
	ExtendSummary(r *Reporter, results *Tree) error
}

// BaseExtension adds nothing; it is the generic report.
type BaseExtension struct{}

func (BaseExtension) Configure(*Reporter) error { return nil }
func (BaseExtension) ExtendRow(*Reporter, *Tree, *Tree) error { return nil }
func (BaseExtension) ExtendSummary(*Reporter, *Tree) error { return nil }
