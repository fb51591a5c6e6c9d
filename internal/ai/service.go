package ai

import (
	"context"

	"github.com/rs/zerolog"
)

// Temperature is the sampling temperature used for every chat request.
const Temperature = 0.7

// Service answers travel prompts through a Querier.
type Service struct {
	querier      Querier
	systemPrompt string
	defaultModel string
	log          *zerolog.Logger
}

func NewService(querier Querier, systemPrompt, defaultModel string, log *zerolog.Logger) *Service {
	return &Service{
		querier:      querier,
		systemPrompt: systemPrompt,
		defaultModel: defaultModel,
		log:          log,
	}
}

// Chat sends the system prompt and the user prompt to model and returns the
// generated text. Upstream errors are returned unwrapped.
func (s *Service) Chat(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = s.defaultModel
	}

	s.log.Info().Str("model", model).Str("prompt", prompt).Msg("received prompt")

	result, err := s.querier.Query(ctx, Request{
		Model:       model,
		Temperature: Temperature,
		Messages: []Message{
			{Role: RoleSystem, Content: s.systemPrompt},
			{Role: RoleUser, Content: prompt},
		},
	})
	if err != nil {
		s.log.Error().Err(err).Str("model", model).Msg("error generating ai response")
		return "", err
	}

	s.log.Info().
		Str("model", model).
		Int("input_tokens", result.InputTokens).
		Int("output_tokens", result.OutputTokens).
		Str("response", result.Content).
		Msg("generated response")

	return result.Content, nil
}
