package models

// OpenAIClassification is the JSON object the chat model is instructed to return.
type OpenAIClassification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
