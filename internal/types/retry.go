package types

// RetryErrorKind classifies why a pass did not produce acceptable output
type RetryErrorKind string

const (
	RetryErrorExhausted RetryErrorKind = "exhausted"
	RetryErrorCanceled  RetryErrorKind = "canceled"
)

// RetryError describes a pass that ended without an accepted result
type RetryError struct {
	Kind      RetryErrorKind `json:"kind"`
	Message   string         `json:"message"`
	LastError string         `json:"last_error,omitempty"`
}

// RetryMetadata summarizes the attempts spent on a pass
type RetryMetadata struct {
	Attempts        int      `json:"attempts"`
	FinalStrategy   string   `json:"final_strategy"`
	TotalCost       int      `json:"total_cost"`
	StrategiesTried []string `json:"strategies_tried"`
}

// RetryResult is the outcome of one pass, always well-formed even on failure
type RetryResult struct {
	Success    bool              `json:"success"`
	Data       *ExtractedData    `json:"data"`
	Validation *ValidationResult `json:"validation"`
	Error      *RetryError       `json:"error,omitempty"`
	Metadata   RetryMetadata     `json:"metadata"`
}
