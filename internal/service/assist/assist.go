package assist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"ShopDesk/entity"
	"ShopDesk/internal/config"
	"ShopDesk/internal/lib/sl"
)

const systemPrompt = "You are a support agent for an e-commerce store. " +
	"Draft a short, polite reply to the customer's latest message. " +
	"Answer in the customer's language and do not invent order details."

// Service drafts suggested agent replies from conversation history.
type Service struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// NewService creates the assistant, or returns nil when OpenAI is disabled.
func NewService(conf *config.Config, log *slog.Logger) *Service {
	if !conf.OpenAI.Enabled || conf.OpenAI.ApiKey == "" {
		return nil
	}
	return &Service{
		client: openai.NewClient(conf.OpenAI.ApiKey),
		model:  conf.OpenAI.Model,
		log:    log.With(sl.Module("assist")),
	}
}

// SuggestReply asks the model for a draft reply. The agent always reviews the
// draft before sending; nothing is posted to the conversation here.
func (s *Service) SuggestReply(subject string, history []entity.Message) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt + "\nConversation subject: " + subject,
		},
	}

	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Sender == entity.RoleAgent {
			role = openai.ChatMessageRoleAssistant
		}
		if msg.Content == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	resp, err := s.client.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	draft := resp.Choices[0].Message.Content
	s.log.Debug("reply drafted", slog.Int("history", len(history)))
	return draft, nil
}
