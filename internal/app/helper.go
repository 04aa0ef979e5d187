package app

// clamp clamps v into [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// compute dynamic widths for the report table based on available total width
func (m *Model) reportColWidths(total int) (wJob, wWorkload, wRuntime, wClients, wStatus, wRate, wTrend int) {
	minJob, minWorkload, minRuntime, minClients, minStatus, minRate := 24, 10, 8, 8, 7, 10

	base := minJob + minWorkload + minRuntime + minClients + minStatus + minRate
	remain := total - base
	if remain < 8 {
		remain = 8
	}

	// the sparkline takes half the slack, the job name the rest
	wTrend = remain / 2
	wJob = minJob + remain - wTrend
	wWorkload = minWorkload
	wRuntime = minRuntime
	wClients = minClients
	wStatus = minStatus
	wRate = minRate

	wJob = clamp(wJob, 16, 48)
	wTrend = clamp(wTrend, 8, 40)
	return
}
