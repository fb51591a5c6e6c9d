package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Request is one chat-completion call.
type Request struct {
	Model       string
	Temperature float64
	Messages    []Message
}

// QueryResult holds the response and token usage from an LLM call.
type QueryResult struct {
	Content      string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Querier sends messages to an LLM and receives responses.
type Querier interface {
	Query(ctx context.Context, req Request) (QueryResult, error)
}

// OpenAIQuerier implements Querier using the OpenAI-compatible API.
type OpenAIQuerier struct {
	client llms.Model
}

// NewOpenAIQuerier creates a new OpenAI-compatible querier.
func NewOpenAIQuerier(apiKey, baseURL, model string) (*OpenAIQuerier, error) {
	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return &OpenAIQuerier{client: client}, nil
}

// Query sends the request to the LLM and returns the first choice with token usage.
func (q *OpenAIQuerier) Query(ctx context.Context, req Request) (QueryResult, error) {
	llmMessages := make([]llms.MessageContent, 0, len(req.Messages))

	for _, msg := range req.Messages {
		var msgType llms.ChatMessageType
		switch msg.Role {
		case RoleSystem:
			msgType = llms.ChatMessageTypeSystem
		case RoleUser:
			msgType = llms.ChatMessageTypeHuman
		case RoleAssistant:
			msgType = llms.ChatMessageTypeAI
		default:
			continue
		}
		llmMessages = append(llmMessages, llms.TextParts(msgType, msg.Content))
	}

	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}

	resp, err := q.client.GenerateContent(ctx, llmMessages, opts...)
	if err != nil {
		return QueryResult{}, err
	}

	if len(resp.Choices) == 0 {
		return QueryResult{}, fmt.Errorf("no choices returned from model")
	}

	result := QueryResult{
		Content: resp.Choices[0].Content,
	}

	if genInfo := resp.Choices[0].GenerationInfo; genInfo != nil {
		result.InputTokens = intValue(genInfo["PromptTokens"])
		result.OutputTokens = intValue(genInfo["CompletionTokens"])
		result.TotalTokens = intValue(genInfo["TotalTokens"])
	}

	return result, nil
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
