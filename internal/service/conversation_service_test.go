package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/llm"
)

type conversationFixture struct {
	svc      ConversationService
	convs    *fakeConversationRepo
	profiles *fakeProfileRepo
	goals    *fakeGoalRepo
	replier  *fakeReplier
}

func newConversationFixture(replier *fakeReplier) conversationFixture {
	f := conversationFixture{
		convs:    newFakeConversationRepo(),
		profiles: newFakeProfileRepo(),
		goals:    newFakeGoalRepo(),
		replier:  replier,
	}
	var r CoachReplier
	if replier != nil {
		r = replier
	}
	f.svc = NewConversationService(f.convs, f.profiles, f.goals, r, time.Second, zerolog.Nop())
	return f
}

func TestSendMessageStoresReply(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(&fakeReplier{reply: "Try a 20 minute walk today."})
	userID := primitive.NewObjectID()

	require.NoError(t, f.profiles.Upsert(ctx, &domain.Profile{UserID: userID, Mode: domain.ModeFitness, Data: map[string]interface{}{
		"injuries":     "bad knee",
		"fitnessGoals": []interface{}{"lose weight", "sleep better"},
	}}))
	_, err := f.goals.Create(ctx, &domain.Goal{UserID: userID, Mode: domain.ModeFitness, Title: "Walk daily", Status: domain.GoalActive})
	require.NoError(t, err)

	conv, err := f.svc.Start(ctx, userID, domain.ModeFitness, "")
	require.NoError(t, err)
	assert.Equal(t, "New conversation", conv.Title)

	res, err := f.svc.SendMessage(ctx, userID, conv.ID, "  How should I start?  ")
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
	require.NotNil(t, res.Reply)
	assert.Equal(t, "Try a 20 minute walk today.", res.Reply.Content)

	assert.Contains(t, f.replier.system, "fitness")
	assert.Contains(t, f.replier.system, "- injuries: bad knee")
	assert.Contains(t, f.replier.system, "- fitnessGoals: lose weight, sleep better")
	assert.Contains(t, f.replier.system, "- Walk daily")
	require.Len(t, f.replier.history, 1)
	assert.Equal(t, llm.Message{Role: "user", Content: "How should I start?"}, f.replier.history[0])

	stored, err := f.svc.Get(ctx, userID, conv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, domain.RoleUser, stored.Messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, stored.Messages[1].Role)
}

func TestSendMessageKeepsUserMessageWhenCoachFails(t *testing.T) {
	ctx := context.Background()
	userID := primitive.NewObjectID()

	for name, replier := range map[string]*fakeReplier{
		"provider error": {err: errors.New("502 from provider")},
		"no client":      nil,
	} {
		t.Run(name, func(t *testing.T) {
			f := newConversationFixture(replier)
			conv, err := f.svc.Start(ctx, userID, domain.ModeCareer, "Promotion")
			require.NoError(t, err)

			res, err := f.svc.SendMessage(ctx, userID, conv.ID, "Should I ask for a raise?")
			require.NoError(t, err)
			assert.Nil(t, res.Reply)
			assert.Equal(t, WarningCoachUnavailable, res.Warning)

			stored, err := f.svc.Get(ctx, userID, conv.ID)
			require.NoError(t, err)
			require.Len(t, stored.Messages, 1)
			assert.Equal(t, "Should I ask for a raise?", stored.Messages[0].Content)
		})
	}
}

func TestSendMessageTrimsHistory(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(&fakeReplier{reply: "ok"})
	userID := primitive.NewObjectID()

	conv, err := f.svc.Start(ctx, userID, domain.ModeFinance, "Budget")
	require.NoError(t, err)
	for i := 0; i < 30; i++ {
		require.NoError(t, f.convs.AppendMessages(ctx, conv.ID, domain.Message{Role: domain.RoleUser, Content: "old"}))
	}

	_, err = f.svc.SendMessage(ctx, userID, conv.ID, "newest")
	require.NoError(t, err)
	require.Len(t, f.replier.history, maxHistoryMessages)
	assert.Equal(t, "newest", f.replier.history[maxHistoryMessages-1].Content)
}

func TestConversationOwnershipAndValidation(t *testing.T) {
	ctx := context.Background()
	f := newConversationFixture(&fakeReplier{reply: "hi"})
	owner, intruder := primitive.NewObjectID(), primitive.NewObjectID()

	_, err := f.svc.Start(ctx, owner, "gardening", "x")
	assert.ErrorIs(t, err, ErrInvalidMode)

	conv, err := f.svc.Start(ctx, owner, domain.ModeMentalWellbeing, "Sleep")
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, owner, conv.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = f.svc.SendMessage(ctx, intruder, conv.ID, "hello")
	assert.ErrorIs(t, err, ErrConversationNotOwned)
	assert.ErrorIs(t, f.svc.Delete(ctx, intruder, conv.ID), ErrConversationNotOwned)

	_, err = f.svc.Get(ctx, owner, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrConversationNotFound)

	list, err := f.svc.List(ctx, owner, domain.ModeMentalWellbeing)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.Delete(ctx, owner, conv.ID))
	list, err = f.svc.List(ctx, owner, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}
