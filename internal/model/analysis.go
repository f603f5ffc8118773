package model

import (
	"strings"
)

// Analysis is the AI feedback derived from an uploaded document.
type Analysis struct {
	Summary            string   `json:"summary,omitempty"`
	ClaritySuggestions string   `json:"claritySuggestions,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	ValidationFeedback string   `json:"validationFeedback,omitempty"`
}

// Markdown renders the feedback block, substituting placeholders for empty sections.
func (a *Analysis) Markdown() string {
	if a == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("# AI Feedback\n\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString(orDefault(a.Summary, "No summary provided."))
	sb.WriteString("\n\n## Clarity Suggestions\n\n")
	sb.WriteString(orDefault(a.ClaritySuggestions, "No suggestions provided."))
	sb.WriteString("\n\n## Tags\n\n")
	if len(a.Tags) == 0 {
		sb.WriteString("No tags provided.\n")
	} else {
		for _, tag := range a.Tags {
			sb.WriteString("- " + tag + "\n")
		}
	}
	sb.WriteString("\n## Validation Feedback\n\n")
	sb.WriteString(orDefault(a.ValidationFeedback, "No validation feedback provided."))
	sb.WriteString("\n")
	return sb.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// UploadResult is returned by both upload endpoints. URL is always set by the
// plain upload; the analyzing variant may omit it.
type UploadResult struct {
	URL      string    `json:"url,omitempty"`
	Analysis *Analysis `json:"aiData,omitempty"`
}
