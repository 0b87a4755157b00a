package services

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"docrisk/internal/models"
)

var (
	fencePattern        = regexp.MustCompile("```json\\s*|\\s*```")
	leadingJSONPattern  = regexp.MustCompile(`^json\s*`)
	edgeBacktickPattern = regexp.MustCompile("^`+|`+$")
)

// SanitizeAnalysisText strips the formatting artifacts models wrap around
// their answers despite being asked for bare JSON: fenced code blocks, a
// leading bare "json" token, and stray backticks. Already-clean input passes
// through unchanged, so sanitizing twice is a no-op.
func SanitizeAnalysisText(raw string) string {
	clean := fencePattern.ReplaceAllString(raw, "")
	clean = leadingJSONPattern.ReplaceAllString(clean, "")
	clean = edgeBacktickPattern.ReplaceAllString(clean, "")
	return strings.TrimSpace(clean)
}

// analysisAnswer is the shape the rubric asks the model to return. Score is
// decoded as a float because models occasionally emit "85.0".
type analysisAnswer struct {
	Evaluation struct {
		Score  float64                  `json:"score"`
		Issues []models.EvaluationIssue `json:"issues"`
	} `json:"evaluation"`
	CorrectedText string `json:"corrected_text"`
}

// ParseEvaluation sanitizes and parses a raw model answer into an
// Evaluation. Parse failures are recovered here, not surfaced: the item
// still completes, with all fields at their defaults and ParseFailed set so
// downstream readers can tell "unparsable answer" from "clean document".
func ParseEvaluation(logCtx *slog.Logger, raw string) models.Evaluation {
	clean := SanitizeAnalysisText(raw)
	eval := models.Evaluation{
		IssuesJSON: "[]",
		Raw:        clean,
	}

	var answer analysisAnswer
	if err := json.Unmarshal([]byte(clean), &answer); err != nil {
		logCtx.Warn("Analysis answer was not parseable JSON. Storing defaults.", "error", err)
		eval.ParseFailed = true
		return eval
	}

	eval.Score = int(answer.Evaluation.Score)
	eval.CorrectedText = answer.CorrectedText
	if len(answer.Evaluation.Issues) > 0 {
		if issuesJSON, err := json.Marshal(answer.Evaluation.Issues); err == nil {
			eval.IssuesJSON = string(issuesJSON)
		}
	}
	return eval
}
