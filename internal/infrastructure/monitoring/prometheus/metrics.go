package prometheus

// PipelineMetrics holds every metric the dataset pipeline emits.
type PipelineMetrics struct {
	// Split assigner
	SplitKeysTotal GaugeVec // strategy, split

	// Dataset builder
	BuildDuration        HistogramVec // variant
	SamplesBuiltTotal    CounterVec   // variant, source
	RecordsSkippedTotal  CounterVec   // reason
	SamplesFilteredTotal CounterVec   // split
	DistinctReactions    GaugeVec     // split
	DistinctProteins     GaugeVec     // split
	DistinctECs          GaugeVec     // split

	// Per-item sampler
	SamplerDrawsTotal CounterVec // outcome
	SamplerSkipsTotal CounterVec // reason

	// Side caches
	CacheHitsTotal   CounterVec // kind
	CacheMissesTotal CounterVec // kind
}

// Build-duration buckets: dataset builds over real corpora run seconds to
// tens of minutes.
var buildDurationBuckets = []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600, 1800}

// NewPipelineMetrics registers the pipeline metric set on the collector.
func NewPipelineMetrics(collector MetricsCollector) *PipelineMetrics {
	m := &PipelineMetrics{}

	m.SplitKeysTotal = collector.RegisterGauge("split_keys_total",
		"Entity keys per split in the active assignment", "strategy", "split")

	m.BuildDuration = collector.RegisterHistogram("build_duration_seconds",
		"Dataset build duration", buildDurationBuckets, "variant")
	m.SamplesBuiltTotal = collector.RegisterCounter("samples_built_total",
		"Samples emitted by the builder", "variant", "source")
	m.RecordsSkippedTotal = collector.RegisterCounter("records_skipped_total",
		"Reaction records dropped during the build", "reason")
	m.SamplesFilteredTotal = collector.RegisterCounter("samples_filtered_total",
		"Samples excluded by the split filter", "split")
	m.DistinctReactions = collector.RegisterGauge("distinct_reactions",
		"Distinct reaction strings in the built split", "split")
	m.DistinctProteins = collector.RegisterGauge("distinct_proteins",
		"Distinct proteins in the built split", "split")
	m.DistinctECs = collector.RegisterGauge("distinct_ecs",
		"Distinct EC codes in the built split", "split")

	m.SamplerDrawsTotal = collector.RegisterCounter("sampler_draws_total",
		"Per-item sampler draws", "outcome")
	m.SamplerSkipsTotal = collector.RegisterCounter("sampler_skips_total",
		"Per-item sampler skips", "reason")

	m.CacheHitsTotal = collector.RegisterCounter("side_cache_hits_total",
		"Side cache hits", "kind")
	m.CacheMissesTotal = collector.RegisterCounter("side_cache_misses_total",
		"Side cache misses", "kind")

	return m
}

// NewNopPipelineMetrics returns a metric set that records nothing.  Used in
// tests and in library consumers that do not run a metrics endpoint.
func NewNopPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		SplitKeysTotal:       &noopGaugeVec{},
		BuildDuration:        &noopHistogramVec{},
		SamplesBuiltTotal:    &noopCounterVec{},
		RecordsSkippedTotal:  &noopCounterVec{},
		SamplesFilteredTotal: &noopCounterVec{},
		DistinctReactions:    &noopGaugeVec{},
		DistinctProteins:     &noopGaugeVec{},
		DistinctECs:          &noopGaugeVec{},
		SamplerDrawsTotal:    &noopCounterVec{},
		SamplerSkipsTotal:    &noopCounterVec{},
		CacheHitsTotal:       &noopCounterVec{},
		CacheMissesTotal:     &noopCounterVec{},
	}
}
