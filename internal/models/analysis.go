package models

// AnalysisResult is the formatted market commentary produced by the
// language model. Text is never empty on success.
type AnalysisResult struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// NotificationOutcome reports whether the Telegram delivery succeeded.
// Delivery is best-effort: the pipeline records the outcome and keeps
// going, so this is a value rather than an error.
type NotificationOutcome struct {
	Delivered bool   `json:"delivered"`
	Detail    string `json:"detail,omitempty"`
}
