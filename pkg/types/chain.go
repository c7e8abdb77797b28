package types

type ChainFailureKind string

const (
	// first record of a case carries a previous hash
	ChainFailureOrphanedGenesis ChainFailureKind = "orphaned_genesis"
	// previous_hash differs from the prior record's current_hash
	ChainFailureBrokenLink ChainFailureKind = "broken_link"
	// stored blob no longer hashes to current_hash
	ChainFailureContentMismatch ChainFailureKind = "content_mismatch"
	// stored blob could not be fetched for rehashing
	ChainFailureBlobMissing ChainFailureKind = "blob_missing"
)

type ChainFailure struct {
	Index      int              `json:"index"`
	EvidenceID string           `json:"evidence_id"`
	Kind       ChainFailureKind `json:"kind"`
	Expected   string           `json:"expected,omitempty"`
	Actual     string           `json:"actual,omitempty"`
	Message    string           `json:"message,omitempty"`
}

// ChainReport is the outcome of walking a case's chain from first to last record.
type ChainReport struct {
	CaseID   string         `json:"case_id"`
	OK       bool           `json:"ok"`
	Total    int            `json:"total"`
	Rehashed bool           `json:"rehashed"`
	TipHash  string         `json:"tip_hash,omitempty"`
	Failures []ChainFailure `json:"failures"`
}
