package llmresolve

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shelfsight/shelf-cli/pkg/anthropic"
)

// extractText concatenates all text content blocks.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

var trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)

// cleanJSONArray strips markdown fences, cuts the outermost JSON array out
// of surrounding prose, and repairs trailing commas.
func cleanJSONArray(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(trailingCommaRe.ReplaceAllString(text, "$1"))
}

// wireDecision is one element of the model's response array.
type wireDecision struct {
	ID        int    `json:"id"`
	Value     string `json:"value"`
	Rationale string `json:"rationale"`
}

// Proposal is one model answer for a flagged item: the proposed value and
// the model's stated reasoning.
type Proposal struct {
	Value     string
	Rationale string
}

// parseDecisions parses a response into batch-local id → proposal. A whole
// response that fails to parse is reported as an error so the caller can
// split the batch; an individual entry with an unknown id is dropped and
// the rest are still applied.
func parseDecisions(text string, batchSize int) (map[int]Proposal, error) {
	cleaned := cleanJSONArray(text)
	if cleaned == "" {
		return nil, eris.New("llmresolve: empty response")
	}

	var wire []wireDecision
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, eris.Wrap(err, "llmresolve: parse response")
	}

	out := make(map[int]Proposal, len(wire))
	for _, d := range wire {
		if d.ID < 0 || d.ID >= batchSize {
			zap.L().Warn("llmresolve: dropping response entry with unknown item id",
				zap.Int("id", d.ID),
				zap.Int("batch_size", batchSize))
			continue
		}
		out[d.ID] = Proposal{Value: d.Value, Rationale: d.Rationale}
	}
	return out, nil
}
