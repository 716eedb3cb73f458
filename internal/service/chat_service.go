package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nexuscampus/campusmap/internal/domain"
	"github.com/nexuscampus/campusmap/internal/repository"
)

// ChatModel answers a single prompt. Implemented by the Gemini and Ollama
// clients.
type ChatModel interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// ChatService proxies campus-guide questions to an LLM. Building data is
// injected into the prompt so answers stay grounded in the campus dataset.
type ChatService struct {
	buildings     domain.BuildingRepository
	model         ChatModel
	conversations *repository.ConversationStore
	keepHistory   bool
	logger        *slog.Logger
}

// NewChatService creates a new chat service. conversations may be nil when
// Redis is not configured; history is then disabled regardless of the flag.
func NewChatService(
	buildings domain.BuildingRepository,
	model ChatModel,
	conversations *repository.ConversationStore,
	keepHistory bool,
	logger *slog.Logger,
) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		buildings:     buildings,
		model:         model,
		conversations: conversations,
		keepHistory:   keepHistory && conversations != nil,
		logger:        logger,
	}
}

// Ask sends a user message to the model and returns the answer together
// with the conversation id, minting a fresh id when none was supplied.
func (s *ChatService) Ask(ctx context.Context, conversationID, message string) (string, string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", "", fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	prompt, err := s.buildPrompt(ctx, conversationID, message)
	if err != nil {
		return "", "", err
	}

	answer, err := s.model.Ask(ctx, prompt)
	if err != nil {
		s.logger.Error("chat model request failed",
			slog.String("conversation_id", conversationID),
			slog.String("error", err.Error()),
		)
		return "", "", fmt.Errorf("chat model unavailable: %w", err)
	}

	if s.keepHistory {
		s.remember(ctx, conversationID, message, answer)
	}

	return answer, conversationID, nil
}

func (s *ChatService) buildPrompt(ctx context.Context, conversationID, message string) (string, error) {
	buildings, err := s.buildings.List()
	if err != nil {
		return "", fmt.Errorf("failed to load building data: %w", err)
	}
	buildingJSON, err := json.Marshal(buildings)
	if err != nil {
		return "", fmt.Errorf("failed to encode building data: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a helpful campus guide assistant. Answer questions about the campus using the building data below. ")
	b.WriteString("If a question cannot be answered from the data, say so briefly.\n\n")
	b.WriteString("Building data (JSON):\n")
	b.Write(buildingJSON)
	b.WriteString("\n\n")

	if s.keepHistory {
		history, err := s.conversations.History(ctx, conversationID)
		if err != nil {
			// History is best effort; answer from the current message alone.
			s.logger.Warn("failed to load conversation history",
				slog.String("conversation_id", conversationID),
				slog.String("error", err.Error()),
			)
		}
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
		if len(history) > 0 {
			b.WriteString("\n")
		}
	}

	b.WriteString("user: ")
	b.WriteString(message)
	return b.String(), nil
}

func (s *ChatService) remember(ctx context.Context, conversationID, message, answer string) {
	for _, turn := range []repository.Turn{
		{Role: "user", Content: message},
		{Role: "assistant", Content: answer},
	} {
		if err := s.conversations.Append(ctx, conversationID, turn); err != nil {
			s.logger.Warn("failed to store conversation turn",
				slog.String("conversation_id", conversationID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}
