package domain

// Pipeline statuses. Pipelines report failure through these tags instead of
// surfacing errors to their callers.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// IngestReport summarizes one ingestion pipeline run.
type IngestReport struct {
	Status          string `json:"status"`
	DocumentsLoaded int    `json:"documents_loaded"`
	ChunksCreated   int    `json:"chunks_created"`
	Collection      string `json:"collection"`
}

// EvalSample is one labeled question for evaluation.
type EvalSample struct {
	Question    string `json:"question"`
	GroundTruth string `json:"ground_truth"`
}

// EvalResults aggregates metric scores over all evaluated samples. Fields
// are omitted when empty so a failed run serializes its results as an empty
// object rather than null.
type EvalResults struct {
	Scores              map[string]float64 `json:"scores,omitempty"`
	NumEvaluatedSamples int                `json:"num_evaluated_samples,omitempty"`
}

// EvalReport summarizes one evaluation run.
type EvalReport struct {
	Status  string       `json:"status"`
	Results *EvalResults `json:"results"`
}
