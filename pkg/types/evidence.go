package types

import "time"

type EvidenceStatus string

const (
	EvidenceStatusValid       EvidenceStatus = "Valid"
	EvidenceStatusCompromised EvidenceStatus = "Compromised"
)

type VerificationStatus string

const (
	VerificationStatusVerified VerificationStatus = "Verified"
	VerificationStatusFailed   VerificationStatus = "Failed"
)

// Evidence is one link in a case's custody chain. Only Status and
// VerificationStatus change after creation.
type Evidence struct {
	ID       string `db:"id" json:"id"`
	Sequence int64  `db:"seq" json:"sequence"`
	CaseID   string `db:"case_id" json:"case_id"`

	FileName     string  `db:"file_name" json:"file_name"`
	FileSize     int64   `db:"file_size" json:"file_size"`
	MimeType     string  `db:"mime_type" json:"mime_type"`
	EvidenceName *string `db:"evidence_name" json:"evidence_name,omitempty"`
	Description  *string `db:"description" json:"description,omitempty"`
	EvidenceType *string `db:"evidence_type" json:"evidence_type,omitempty"`

	CurrentHash     string  `db:"current_hash" json:"current_hash"`
	PreviousHash    *string `db:"previous_hash" json:"previous_hash"`
	StorageLocation string  `db:"storage_location" json:"storage_location"`

	Status             EvidenceStatus     `db:"status" json:"status"`
	VerificationStatus VerificationStatus `db:"verification_status" json:"verification_status"`

	QRCodeData        string    `db:"qr_code_data" json:"qr_code_data"`
	QRCodeGeneratedAt time.Time `db:"qr_code_generated_at" json:"qr_code_generated_at"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// EvidenceMetadata is the descriptive part of an ingestion request.
type EvidenceMetadata struct {
	EvidenceID   string `json:"evidence_id"`
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
	EvidenceName string `json:"evidence_name"`
	Description  string `json:"description"`
	EvidenceType string `json:"evidence_type"`
}

// QRPayload is the portable proof embedded in Evidence.QRCodeData.
type QRPayload struct {
	EvidenceID string `json:"evidence_id"`
	Hash       string `json:"hash"`
	Timestamp  string `json:"timestamp"`
}

// QRTimestampFormat matches the ISO-8601 millisecond form used in QR payloads.
const QRTimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// EvidenceLinker builds the next record of a chain given the current tip,
// which is nil for the first record of a case.
type EvidenceLinker func(tip *Evidence) (*Evidence, error)
