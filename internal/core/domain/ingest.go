package domain

// IngestFailure records one skipped file.
type IngestFailure struct {
	Path  string
	Type  SourceType
	Error string
}

// IngestReport tallies the outcome of one ingestion batch.
type IngestReport struct {
	// Loaded counts files per type that produced at least one document.
	Loaded map[SourceType]int

	// Failed counts files per type that were skipped with an error.
	Failed map[SourceType]int

	// Empty counts files that produced no text.
	Empty int

	// Documents is the number of documents produced.
	Documents int

	// Chunks is the number of chunks produced.
	Chunks int

	// Failures lists each skipped file.
	Failures []IngestFailure
}

// NewIngestReport returns a report with initialised tallies.
func NewIngestReport() *IngestReport {
	return &IngestReport{
		Loaded: make(map[SourceType]int),
		Failed: make(map[SourceType]int),
	}
}

// RecordLoaded counts a file that produced documents.
func (r *IngestReport) RecordLoaded(t SourceType, docs int) {
	if docs == 0 {
		r.Empty++
		return
	}
	r.Loaded[t]++
	r.Documents += docs
}

// RecordFailure counts a skipped file.
func (r *IngestReport) RecordFailure(path string, t SourceType, err error) {
	r.Failed[t]++
	r.Failures = append(r.Failures, IngestFailure{Path: path, Type: t, Error: err.Error()})
}

// TotalFailed returns the number of skipped files across all types.
func (r *IngestReport) TotalFailed() int {
	n := 0
	for _, c := range r.Failed {
		n += c
	}
	return n
}
