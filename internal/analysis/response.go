package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// formatStructuredAnalysis validates the model's JSON reply and renders
// it as a short labeled text block. Implications that are not usable
// strings are skipped; an entirely unusable list is an error.
func formatStructuredAnalysis(raw string) (string, error) {
	cleaned := stripCodeFence(raw)

	var payload struct {
		ZeroGammaSignificance string `json:"zero_gamma_significance"`
		Trend                 string `json:"trend"`
		Implications          []any  `json:"implications"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return "", fmt.Errorf("model returned invalid JSON: %w", err)
	}

	if strings.TrimSpace(payload.ZeroGammaSignificance) == "" {
		return "", errors.New("missing or invalid zero_gamma_significance")
	}
	if strings.TrimSpace(payload.Trend) == "" {
		return "", errors.New("missing or invalid trend")
	}
	if len(payload.Implications) == 0 {
		return "", errors.New("missing or invalid implications list")
	}

	var bullets []string
	for _, item := range payload.Implications {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		bullets = append(bullets, "- "+strings.TrimSpace(s))
	}
	if len(bullets) == 0 {
		return "", errors.New("implications list contained no usable items")
	}

	var sb strings.Builder
	sb.WriteString("**Zero Gamma**: ")
	sb.WriteString(strings.TrimSpace(payload.ZeroGammaSignificance))
	sb.WriteString("\n**Trend**: ")
	sb.WriteString(strings.TrimSpace(payload.Trend))
	sb.WriteString("\n**Implications**:\n")
	sb.WriteString(strings.Join(bullets, "\n"))
	return sb.String(), nil
}

// stripCodeFence removes the ```json wrapper some models insist on
// adding despite the prompt.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
