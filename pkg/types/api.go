package types

type IngestRequest struct {
	FilePath string           `json:"file_path"`
	CaseID   string           `json:"case_id"`
	Metadata EvidenceMetadata `json:"metadata"`
}

type IngestResult struct {
	Evidence *Evidence
	Hash     string
	QRCode   string
}

type IngestResponse struct {
	Success    bool   `json:"success"`
	EvidenceID string `json:"evidence_id"`
	Hash       string `json:"hash"`
	QRCode     string `json:"qr_code"`
}

type VerifyRequest struct {
	EvidenceID string `json:"evidence_id"`
}

const (
	VerificationLabelValid     = "Valid"
	VerificationLabelTampering = "Tampering Detected"
)

type VerificationResult struct {
	EvidenceID     string `json:"evidence_id"`
	IsValid        bool   `json:"is_valid"`
	CurrentHash    string `json:"current_hash"`
	CalculatedHash string `json:"calculated_hash"`
	Status         string `json:"status"`
}

type VerifyResponse struct {
	Success bool `json:"success"`
	VerificationResult
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   string    `json:"error"`
	Kind    ErrorKind `json:"kind,omitempty"`
}

type TipResponse struct {
	CaseID  string  `json:"case_id"`
	TipHash *string `json:"tip_hash"`
}
