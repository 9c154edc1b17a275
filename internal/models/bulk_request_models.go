package models

// BulkRequest is the payload consumed by the bulk worker.
type BulkRequest struct {
	RequestID string   `json:"request_id"`
	Rows      []string `json:"rows"`
}

// BulkResult is published once per request. Error is set when the batch
// was aborted, in which case Report is nil.
type BulkResult struct {
	RequestID string      `json:"request_id"`
	Report    *BulkReport `json:"report,omitempty"`
	Error     string      `json:"error,omitempty"`
}
