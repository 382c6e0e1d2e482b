package domain

import "encoding/json"

// ExtractionTask is the queue message handed to the extraction worker.
// It carries a full snapshot of the job so the worker needs no read from
// the store before extracting, plus the request correlation id of the
// pipeline run that dispatched it. Tasks are transient and never persisted.
type ExtractionTask struct {
	Job       Job    `json:"job"`
	RequestID string `json:"request_id"`
}

// Encode serializes the task for the queue.
func (t ExtractionTask) Encode() ([]byte, error) {
	return json.Marshal(t)
}

// DecodeExtractionTask parses a queue message body into a task.
func DecodeExtractionTask(body []byte) (ExtractionTask, error) {
	var t ExtractionTask
	err := json.Unmarshal(body, &t)
	return t, err
}
