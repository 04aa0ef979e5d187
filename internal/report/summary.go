package report

// finalize derives the values that need every row: intervals, averages, rates
// and the metrics block.
func (r *Reporter) finalize() {
	s := r.summary
	num := func(key string) float64 {
		v, _ := s.Number(key)
		return v
	}
	if s.Has("data_elapsed_time") {
		instances := float64(r.instances)
		avg := DivOrZero(num("data_elapsed_time"), instances)
		s.Set("elapsed_time_average", avg)
		s.Set("pod_create_interval", num("last_pod_create_time")-num("first_pod_create_time"))
		s.Set("data_run_interval", num("last_data_end_time")-num("first_data_start_time"))
		s.Set("pod_start_interval", num("last_pod_start_time")-num("first_pod_start_time"))
		s.Set("data_start_interval", num("last_data_start_time")-num("first_data_start_time"))
		s.Set("data_end_interval", num("last_data_end_time")-num("first_data_end_time"))
		absolute := (num("data_start_interval") + num("data_end_interval")) / 2
		s.Set("overlap_error", DivOrZero(absolute, avg))
		s.Set("absolute_sync_error", absolute)
		s.Set("relative_sync_error", DivOrZero(absolute, avg))
		s.Set("pod_creation_rate", DivOrZero(instances, num("pod_create_interval")))
		s.Set("pod_start_rate", DivOrZero(instances, num("pod_start_interval")))
		s.Set("cpu_utilization", DivOrZero(num("cpu_time"), num("data_run_interval")))
	}
	if m := r.cfg.metrics; m != nil && r.payload.HasMetrics() {
		memory := func(v float64) any { return r.Pretty(v, Fmt(3).Unit("B").AsInteger()) }
		bytes := func(v float64) any { return r.Pretty(v, Fmt(3).In(1000).Unit("B/sec")) }
		pkts := func(v float64) any { return r.Pretty(v, Fmt(3).In(1000).Unit("pkts/sec")) }
		cpu := func(v float64) any { return r.Pretty(v, Fmt(3).In(100).Unit("%")) }

		mtr := s.Subtree("metrics")
		mtr.Set("Maximum memory working set", m.GetMaxValueByKey("containerMemoryWorkingSet-clusterbuster", memory))
		mtr.Set("Receive bytes/sec", m.GetMaxValueByKey("rxNetworkBytes-WorkerByNode", bytes))
		mtr.Set("Transmit bytes/sec", m.GetMaxValueByKey("txNetworkBytes-WorkerByNode", bytes))
		mtr.Set("Receive packets/sec", m.GetMaxValueByKey("rxNetworkPackets-WorkerByNode", pkts))
		mtr.Set("Transmit packets/sec", m.GetMaxValueByKey("txNetworkPackets-WorkerByNode", pkts))
		util := mtr.Subtree("CPU utilization")
		util.Set("User", m.GetMaxValueByKey("nodeCPUUser-Workers", cpu))
		util.Set("System", m.GetMaxValueByKey("nodeCPUSys-Workers", cpu))
		util.Set("Total", m.GetMaxValueByKey("nodeCPUUtil-Workers", cpu))
		util.Set("Total Workers", m.GetMaxValueByKey("containerCPU-clusterbuster", cpu))
	}
}

// syncErrorsMeaningful reports whether start/end skew across workers reflects
// the workload rather than clock drift between nodes.
func (r *Reporter) syncErrorsMeaningful() bool {
	return r.cfg.syncedClocks || r.cfg.locator.ClientsOnSameNode()
}

func (r *Reporter) generateSummary(results *Tree) {
	s := r.summary
	results.Set("Total Clients", r.instances)
	if !s.Has("elapsed_time_average") {
		return
	}
	num := func(path ...string) float64 {
		v, _ := s.Number(path...)
		return v
	}
	secs := Fmt(3).Unit("sec")
	instances := float64(r.instances)

	results.Set("Elapsed time average", r.Pretty(num("elapsed_time_average"), secs))
	results.Set("Pod creation interval", r.Pretty(num("pod_create_interval"), secs))
	results.Set("Pod creation rate", r.Ratio(instances, num("pod_create_interval"), Fmt(3).In(0).Unit("pods/sec")))
	results.Set("User CPU time", r.Pretty(num("user_cpu_time"), secs))
	results.Set("System CPU seconds", r.Pretty(num("system_cpu_time"), secs))
	results.Set("CPU seconds", r.Pretty(num("cpu_time"), secs))
	results.Set("CPU utilization", r.Ratio(num("cpu_time"), num("data_run_interval"), Fmt(3).In(100).Unit("%")))
	if v, ok := s.Get("metrics"); ok {
		if m, ok := v.(*Tree); ok {
			metrics := results.Subtree("Metrics")
			for _, k := range m.Keys() {
				mv, _ := m.Get(k)
				metrics.Set(k, mv)
			}
		}
	}
	results.Set("First pod start", r.Pretty(num("first_pod_start_time"), secs))
	results.Set("Last pod start", r.Pretty(num("last_pod_start_time"), secs))
	results.Set("Pod start interval", r.Pretty(num("pod_start_interval"), secs))
	results.Set("Pod start rate", r.Ratio(instances, num("pod_start_interval"), Fmt(3).In(0).Unit("pods/sec")))
	results.Set("First run start", r.Pretty(num("first_data_start_time"), secs))
	results.Set("Last run start", r.Pretty(num("last_data_start_time"), secs))
	results.Set("Run start interval", r.Pretty(num("data_start_interval"), secs))
	if r.syncErrorsMeaningful() {
		results.Set("Absolute sync error", r.Pretty(num("absolute_sync_error"), secs))
		results.Set("Relative sync error", r.Ratio(num("absolute_sync_error"), num("elapsed_time_average"), Fmt(4).In(100).Unit("%")))
	}
	if _, ok := s.Lookup("timing_parameters", "max_sync_rtt_delta"); ok {
		results.Set("Sync max RTT delta", r.Pretty(num("timing_parameters", "max_sync_rtt_delta"), secs))
		results.Set("Sync avg RTT delta", r.Pretty(num("timing_parameters", "avg_sync_rtt_delta"), secs))
	}
	results.Set("First run end", r.Pretty(num("first_data_end_time"), secs))
	results.Set("Last run end", r.Pretty(num("last_data_end_time"), secs))
	results.Set("Net elapsed time", r.Pretty(num("data_run_interval"), secs))
	if t := r.payload.Results.ControllerTiming; t != nil {
		results.Set("Sync offset from host", r.Pretty(t.SyncTS-t.SecondControllerTS, secs))
		results.Set("Possible controller-sync offset error", r.Pretty(t.SecondControllerTS-t.FirstControllerTS, secs))
	}
}
