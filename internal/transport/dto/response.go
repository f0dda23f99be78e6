package dto

import (
	"encoding/json"
	"fmt"

	"jobboard-api/internal/models"
)

// Response is the envelope of every API answer.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK wraps data in a successful envelope.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// List wraps a collection; results always equals the number of items.
func List(data any, count int) Response {
	return Response{Success: true, Results: &count, Data: data}
}

// Message is a successful envelope carrying only text and optional data.
func Message(msg string, data any) Response {
	return Response{Success: true, Message: msg, Data: data}
}

// Error is a failed envelope.
func Error(msg string) Response {
	return Response{Success: false, Message: msg}
}

// ProjectJobs keeps only the requested JSON keys of each job. A nil fields slice keeps everything.
func ProjectJobs(jobs []models.Job, fields []string) (any, error) {
	if fields == nil {
		return jobs, nil
	}

	out := make([]map[string]json.RawMessage, 0, len(jobs))
	for _, job := range jobs {
		raw, err := json.Marshal(job)
		if err != nil {
			return nil, fmt.Errorf("failed to encode job %s: %w", job.ID, err)
		}
		var all map[string]json.RawMessage
		if err := json.Unmarshal(raw, &all); err != nil {
			return nil, fmt.Errorf("failed to project job %s: %w", job.ID, err)
		}
		projected := make(map[string]json.RawMessage, len(fields))
		for _, f := range fields {
			if v, ok := all[f]; ok {
				projected[f] = v
			}
		}
		out = append(out, projected)
	}
	return out, nil
}
