package llmresolve

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/shelfsight/shelf-cli/internal/model"
	"github.com/shelfsight/shelf-cli/pkg/anthropic"
)

// Inferer makes one external inference call for a batch of flagged items
// and returns proposals keyed by batch-local id. A returned error means
// the whole call failed (transport or unparseable output); the resolver
// reacts by splitting the batch.
type Inferer interface {
	Infer(ctx context.Context, items []model.FlaggedItem) (map[int]Proposal, error)
}

// MessageInferer is the production Inferer: one Messages API call per
// batch, with a shared rate limiter and a cached system prompt.
type MessageInferer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	system    []anthropic.SystemBlock
}

// NewMessageInferer builds an Inferer over an Anthropic client. The system
// prompt is rendered once and sent with a cache breakpoint so concurrent
// batches share the prefix.
func NewMessageInferer(client anthropic.Client, modelID string, maxTokens int64, limiter *rate.Limiter, systemPrompt string) *MessageInferer {
	return &MessageInferer{
		client:    client,
		model:     modelID,
		maxTokens: maxTokens,
		limiter:   limiter,
		system:    anthropic.BuildCachedSystemBlocks(systemPrompt),
	}
}

func (m *MessageInferer) Infer(ctx context.Context, items []model.FlaggedItem) (map[int]Proposal, error) {
	userMsg, err := BuildUserMessage(items)
	if err != nil {
		return nil, eris.Wrap(err, "llmresolve: build user message")
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "llmresolve: rate limiter")
	}

	resp, err := m.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     m.model,
		MaxTokens: m.maxTokens,
		System:    m.system,
		Messages: []anthropic.Message{
			{Role: "user", Content: userMsg},
		},
	})
	if err != nil {
		return nil, err
	}

	resp.Usage.LogCost(m.model, "resolve")

	return parseDecisions(extractText(resp), len(items))
}
