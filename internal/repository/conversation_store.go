package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nexuscampus/campusmap/internal/infrastructure/redis"
)

// Turn is one exchange in a chat conversation.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ConversationStore keeps short-lived chat context in Redis so follow-up
// questions see the recent exchange. Entries expire on their own; losing
// them only resets the conversation.
type ConversationStore struct {
	redis    *redis.Client
	ttl      time.Duration
	maxTurns int64
	logger   *slog.Logger
}

// NewConversationStore creates a conversation store
func NewConversationStore(redisClient *redis.Client, logger *slog.Logger) *ConversationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationStore{
		redis:    redisClient,
		ttl:      30 * time.Minute,
		maxTurns: 20,
		logger:   logger,
	}
}

// Append adds a turn to a conversation and refreshes its TTL
func (s *ConversationStore) Append(ctx context.Context, conversationID string, turn Turn) error {
	key := fmt.Sprintf("conversation:%s", conversationID)

	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	if err := s.redis.RPush(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to store turn: %w", err)
	}
	if err := s.redis.LTrim(ctx, key, -s.maxTurns, -1); err != nil {
		return fmt.Errorf("failed to trim conversation: %w", err)
	}
	if err := s.redis.Expire(ctx, key, s.ttl); err != nil {
		return fmt.Errorf("failed to set conversation ttl: %w", err)
	}

	return nil
}

// History returns a conversation's turns, oldest first
func (s *ConversationStore) History(ctx context.Context, conversationID string) ([]Turn, error) {
	key := fmt.Sprintf("conversation:%s", conversationID)

	entries, err := s.redis.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	turns := make([]Turn, 0, len(entries))
	for _, entry := range entries {
		var turn Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			s.logger.Warn("skipping malformed conversation entry",
				slog.String("conversation_id", conversationID),
				slog.String("error", err.Error()),
			)
			continue
		}
		turns = append(turns, turn)
	}

	return turns, nil
}
