package models

// HFInferenceRequest is the body accepted by Hugging Face text-classification endpoints.
type HFInferenceRequest struct {
	Inputs  string             `json:"inputs"`
	Options HFInferenceOptions `json:"options"`
}

type HFInferenceOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// HFClassification is a single label/score pair. Endpoints answer with
// [[{label, score}, ...]] for a single input, sorted by score.
type HFClassification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type HFErrorResponse struct {
	Error string `json:"error"`
}
