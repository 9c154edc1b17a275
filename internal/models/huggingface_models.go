package models

type InferenceRequest struct {
	Inputs  string           `json:"inputs"`
	Options InferenceOptions `json:"options"`
}

type InferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// InferenceResponse is the text-classification output of the inference API:
// one list of label scores per input.
type InferenceResponse [][]InferenceLabelScore

type InferenceLabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type InferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}
