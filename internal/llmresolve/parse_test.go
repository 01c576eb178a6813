package llmresolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsight/shelf-cli/pkg/anthropic"
)

func TestExtractTextConcatenatesBlocks(t *testing.T) {
	resp := &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{
			{Type: "text", Text: "[{"},
			{Type: "text", Text: `"id":0,"value":"Shots"}]`},
		},
	}
	assert.Equal(t, `[{"id":0,"value":"Shots"}]`, extractText(resp))
}

func TestExtractTextNilResponse(t *testing.T) {
	assert.Equal(t, "", extractText(nil))
}

func TestCleanJSONArrayStripsFences(t *testing.T) {
	in := "```json\n[{\"id\": 0, \"value\": \"Shots\"}]\n```"
	assert.Equal(t, `[{"id": 0, "value": "Shots"}]`, cleanJSONArray(in))
}

func TestCleanJSONArrayCutsSurroundingProse(t *testing.T) {
	in := `Here are the resolutions: [{"id": 0, "value": "Shots"}] Hope that helps!`
	assert.Equal(t, `[{"id": 0, "value": "Shots"}]`, cleanJSONArray(in))
}

func TestCleanJSONArrayRepairsTrailingComma(t *testing.T) {
	in := `[{"id": 0, "value": "Shots"},]`
	assert.Equal(t, `[{"id": 0, "value": "Shots"}]`, cleanJSONArray(in))
}

func TestParseDecisions(t *testing.T) {
	out, err := parseDecisions(`[{"id":0,"value":"Shots","rationale":"product name says shot"},{"id":2,"value":""}]`, 3)
	require.NoError(t, err)
	assert.Equal(t, map[int]Proposal{
		0: {Value: "Shots", Rationale: "product name says shot"},
		2: {},
	}, out)
}

func TestParseDecisionsEmptyResponse(t *testing.T) {
	_, err := parseDecisions("", 3)
	assert.Error(t, err)
}

func TestParseDecisionsMalformed(t *testing.T) {
	_, err := parseDecisions(`{"id": 0}`, 3)
	assert.Error(t, err)
}

func TestParseDecisionsDropsUnknownID(t *testing.T) {
	// A stray id must not discard the valid entries alongside it.
	out, err := parseDecisions(`[{"id": 0, "value": "Shots"}, {"id": 7, "value": "Smoothies"}]`, 2)
	require.NoError(t, err)
	assert.Equal(t, map[int]Proposal{0: {Value: "Shots"}}, out)
}
