package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/llm"
	"lifecoach/coach-api/internal/repository"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationNotOwned = errors.New("conversation does not belong to this user")
	ErrEmptyMessage         = errors.New("message content is required")
)

// WarningCoachUnavailable is returned with a saved message when no reply
// could be generated.
const WarningCoachUnavailable = "The coach could not reply right now; your message was saved"

// maxHistoryMessages bounds how much of a conversation is sent to the model.
const maxHistoryMessages = 20

// CoachReplier is satisfied by *llm.Client.
type CoachReplier interface {
	Chat(ctx context.Context, system string, history []llm.Message) (string, error)
}

// MessageResult is what SendMessage stored. Reply is nil when the coach
// could not answer, and Warning says so.
type MessageResult struct {
	Message domain.Message  `json:"message"`
	Reply   *domain.Message `json:"reply,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

type ConversationService interface {
	Start(ctx context.Context, userID primitive.ObjectID, mode domain.Mode, title string) (*domain.Conversation, error)
	List(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) ([]domain.Conversation, error)
	Get(ctx context.Context, userID, convID primitive.ObjectID) (*domain.Conversation, error)
	Delete(ctx context.Context, userID, convID primitive.ObjectID) error
	SendMessage(ctx context.Context, userID, convID primitive.ObjectID, content string) (*MessageResult, error)
}

type conversationService struct {
	convRepo     repository.ConversationRepository
	profileRepo  repository.ProfileRepository
	goalRepo     repository.GoalRepository
	replier      CoachReplier
	replyTimeout time.Duration
	logger       zerolog.Logger
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	profileRepo repository.ProfileRepository,
	goalRepo repository.GoalRepository,
	replier CoachReplier,
	replyTimeout time.Duration,
	logger zerolog.Logger,
) ConversationService {
	if replyTimeout <= 0 {
		replyTimeout = 30 * time.Second
	}
	return &conversationService{
		convRepo:     convRepo,
		profileRepo:  profileRepo,
		goalRepo:     goalRepo,
		replier:      replier,
		replyTimeout: replyTimeout,
		logger:       logger.With().Str("component", "conversation_service").Logger(),
	}
}

func (s *conversationService) Start(ctx context.Context, userID primitive.ObjectID, mode domain.Mode, title string) (*domain.Conversation, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New conversation"
	}

	conv := &domain.Conversation{UserID: userID, Mode: mode, Title: title}
	if _, err := s.convRepo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *conversationService) List(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) ([]domain.Conversation, error) {
	if mode != "" && !mode.Valid() {
		return nil, ErrInvalidMode
	}
	return s.convRepo.ListByUser(ctx, userID, mode)
}

func (s *conversationService) Get(ctx context.Context, userID, convID primitive.ObjectID) (*domain.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, convID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.UserID != userID {
		return nil, ErrConversationNotOwned
	}
	return conv, nil
}

func (s *conversationService) Delete(ctx context.Context, userID, convID primitive.ObjectID) error {
	if _, err := s.Get(ctx, userID, convID); err != nil {
		return err
	}
	if err := s.convRepo.Delete(ctx, convID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// SendMessage stores the user's message and, when the coach answers, the
// reply. A failed reply never loses the user's message.
func (s *conversationService) SendMessage(ctx context.Context, userID, convID primitive.ObjectID, content string) (*MessageResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	conv, err := s.Get(ctx, userID, convID)
	if err != nil {
		return nil, err
	}

	result := &MessageResult{
		Message: domain.Message{Role: domain.RoleUser, Content: content, CreatedAt: time.Now().UTC()},
	}

	reply, err := s.reply(ctx, conv, result.Message)
	if err != nil {
		s.logger.Warn().Err(err).Str("conversation_id", convID.Hex()).Msg("coach reply failed")
		result.Warning = WarningCoachUnavailable
		if err := s.convRepo.AppendMessages(ctx, convID, result.Message); err != nil {
			return nil, err
		}
		return result, nil
	}

	result.Reply = &domain.Message{Role: domain.RoleAssistant, Content: reply, CreatedAt: time.Now().UTC()}
	if err := s.convRepo.AppendMessages(ctx, convID, result.Message, *result.Reply); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *conversationService) reply(ctx context.Context, conv *domain.Conversation, msg domain.Message) (string, error) {
	if s.replier == nil {
		return "", llm.ErrNotConfigured
	}

	history := append(slices.Clone(conv.Messages), msg)
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}
	turns := make([]llm.Message, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	replyCtx, cancel := context.WithTimeout(ctx, s.replyTimeout)
	defer cancel()
	return s.replier.Chat(replyCtx, s.systemPrompt(ctx, conv), turns)
}

// systemPrompt adds the user's profile and active goals for the mode. Lookup
// failures only cost context, so they are logged and skipped.
func (s *conversationService) systemPrompt(ctx context.Context, conv *domain.Conversation) string {
	var profile *domain.Profile
	if s.profileRepo != nil {
		p, err := s.profileRepo.GetByUserAndMode(ctx, conv.UserID, conv.Mode)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("could not load profile for coach prompt")
		}
		profile = p
	}

	var goals []domain.Goal
	if s.goalRepo != nil {
		g, err := s.goalRepo.ListByUser(ctx, conv.UserID, repository.GoalFilter{Mode: conv.Mode, Status: domain.GoalActive})
		if err != nil {
			s.logger.Warn().Err(err).Msg("could not load goals for coach prompt")
		}
		goals = g
	}
	return coachSystemPrompt(conv.Mode, profile, goals)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// formatValue renders a stored profile value the way the intake form
// would: arrays joined, null empty.
func formatValue(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var s domain.FlexString
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s.String()
}
