package models

import "time"

// Document status values. The set is closed: the coordinator writes failed
// on unrecoverable per-item errors so a record never sits in analyzing with
// no trace of what happened.
const (
	StatusQueued    = "queued"
	StatusAnalyzing = "analyzing"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Identity sources, in fallback order. SourceUserPath is a degraded
// resolution: it yields the uploading user's id, not a document id.
const (
	SourceMetadata  = "metadata"
	SourceTimestamp = "timestamp"
	SourceUserPath  = "userPath"
)

// Document is the record tracking an uploaded file and its risk evaluation
// in Firestore. Provenance fields are written once by the upload surface;
// the analysis pipeline only ever touches the evaluation fields and status.
type Document struct {
	Name            string    `firestore:"name,omitempty"`
	Size            int64     `firestore:"size,omitempty"`
	MimeType        string    `firestore:"mimeType,omitempty"`
	UploadTimestamp time.Time `firestore:"uploadTimestamp,omitempty"`
	StorageKey      string    `firestore:"storageKey,omitempty"`

	Status       string `firestore:"status,omitempty"`
	ErrorDetails string `firestore:"errorDetails,omitempty"`

	EvaluationScore  int       `firestore:"evaluationScore,omitempty"`
	EvaluationIssues string    `firestore:"evaluationIssues,omitempty"`
	CorrectedText    string    `firestore:"correctedText,omitempty"`
	AnalysisResult   string    `firestore:"analysisResult,omitempty"`
	ParseFailed      bool      `firestore:"parseFailed,omitempty"`
	AnalyzedAt       time.Time `firestore:"analyzedAt,omitempty"`
	PageCount        int       `firestore:"pageCount,omitempty"`

	IdentitySource   string `firestore:"identitySource,omitempty"`
	IdentityDegraded bool   `firestore:"identityDegraded,omitempty"`
}

// EvaluationIssue is one flagged problem from the model's answer.
type EvaluationIssue struct {
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// Evaluation is the structured result extracted from a sanitized model
// answer. IssuesJSON is the issues slice re-serialized for storage; Raw is
// the sanitized answer text kept for auditability. ParseFailed marks an
// answer that could not be parsed, so a zero score with no issues is
// distinguishable from a genuinely clean document.
type Evaluation struct {
	Score         int
	IssuesJSON    string
	CorrectedText string
	Raw           string
	ParseFailed   bool
}
