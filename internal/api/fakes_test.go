package api

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/planner"
	"lifecoach/coach-api/internal/repository"
	"lifecoach/coach-api/internal/service"
)

var testUserID = primitive.NewObjectID()

const testToken = "valid-token"

type fakeAuth struct{}

func (fakeAuth) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if email == "taken@example.com" {
		return nil, service.ErrUserAlreadyExists
	}
	return &domain.User{ID: primitive.NewObjectID(), Name: name, Email: email, CreatedAt: time.Now()}, nil
}

func (fakeAuth) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if password != "correct-horse" {
		return "", nil, service.ErrAuthenticationFailed
	}
	return testToken, &domain.User{ID: testUserID, Email: email}, nil
}

func (fakeAuth) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if id != testUserID {
		return nil, service.ErrUserNotFound
	}
	return &domain.User{ID: testUserID, Name: "Sam", Email: "sam@example.com"}, nil
}

func (fakeAuth) ParseToken(token string) (primitive.ObjectID, error) {
	if token != testToken {
		return primitive.NilObjectID, service.ErrInvalidToken
	}
	return testUserID, nil
}

// fakePlans records the profile it was asked to plan for and answers with
// the local generator.
type fakePlans struct {
	lastProfile domain.FitnessProfile
	exportErr   error
	exports     []domain.PlanExport
}

func (f *fakePlans) Generate(ctx context.Context, profile domain.FitnessProfile) planner.Result {
	f.lastProfile = profile
	return planner.Result{
		Plan:    planner.NewGenerator().Generate(profile),
		Source:  planner.SourceLocal,
		Warning: planner.WarningFallback,
	}
}

func (f *fakePlans) GenerateForUser(ctx context.Context, userID primitive.ObjectID) (planner.Result, error) {
	return planner.Result{}, service.ErrProfileNotFound
}

func (f *fakePlans) Export(ctx context.Context, userID primitive.ObjectID, title string, result planner.Result) (*domain.PlanExport, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	exp := domain.PlanExport{ID: primitive.NewObjectID(), UserID: userID, Title: title, Source: string(result.Source), ContentType: "application/json"}
	f.exports = append(f.exports, exp)
	return &exp, nil
}

func (f *fakePlans) ListExports(ctx context.Context, userID primitive.ObjectID) ([]domain.PlanExport, error) {
	return f.exports, nil
}

func (f *fakePlans) ExportDownloadURL(ctx context.Context, userID, exportID primitive.ObjectID) (*service.ExportURLResponse, error) {
	return nil, service.ErrExportNotOwned
}

func (f *fakePlans) DeleteExport(ctx context.Context, userID, exportID primitive.ObjectID) error {
	return service.ErrExportNotFound
}

type fakeGoals struct {
	goals map[primitive.ObjectID]*domain.Goal
}

func newFakeGoals() *fakeGoals {
	return &fakeGoals{goals: make(map[primitive.ObjectID]*domain.Goal)}
}

func (f *fakeGoals) Create(ctx context.Context, userID primitive.ObjectID, in service.GoalInput) (*domain.Goal, error) {
	if !in.Mode.Valid() {
		return nil, service.ErrInvalidMode
	}
	g := &domain.Goal{ID: primitive.NewObjectID(), UserID: userID, Mode: in.Mode, Title: in.Title, Status: domain.GoalActive}
	f.goals[g.ID] = g
	return g, nil
}

func (f *fakeGoals) Get(ctx context.Context, userID, goalID primitive.ObjectID) (*domain.Goal, error) {
	g, ok := f.goals[goalID]
	if !ok {
		return nil, service.ErrGoalNotFound
	}
	if g.UserID != userID {
		return nil, service.ErrGoalNotOwned
	}
	return g, nil
}

func (f *fakeGoals) List(ctx context.Context, userID primitive.ObjectID, filter repository.GoalFilter) ([]domain.Goal, error) {
	var out []domain.Goal
	for _, g := range f.goals {
		if g.UserID == userID && (filter.Mode == "" || g.Mode == filter.Mode) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeGoals) Update(ctx context.Context, userID, goalID primitive.ObjectID, upd service.GoalUpdate) (*domain.Goal, error) {
	g, err := f.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}
	if upd.Progress != nil {
		if *upd.Progress < 0 || *upd.Progress > 100 {
			return nil, service.ErrProgressOutOfRange
		}
		g.Progress = *upd.Progress
	}
	return g, nil
}

func (f *fakeGoals) Delete(ctx context.Context, userID, goalID primitive.ObjectID) error {
	if _, err := f.Get(ctx, userID, goalID); err != nil {
		return err
	}
	delete(f.goals, goalID)
	return nil
}

type fakeProfiles struct {
	saved map[domain.Mode]*domain.Profile
}

func (f *fakeProfiles) Save(ctx context.Context, userID primitive.ObjectID, mode domain.Mode, data map[string]interface{}) (*domain.Profile, error) {
	if !mode.Valid() {
		return nil, service.ErrInvalidMode
	}
	p := &domain.Profile{UserID: userID, Mode: mode, Data: data}
	f.saved[mode] = p
	return p, nil
}

func (f *fakeProfiles) Get(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) (*domain.Profile, error) {
	if !mode.Valid() {
		return nil, service.ErrInvalidMode
	}
	p, ok := f.saved[mode]
	if !ok {
		return nil, service.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, p := range f.saved {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProfiles) Delete(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) error {
	if _, ok := f.saved[mode]; !ok {
		return service.ErrProfileNotFound
	}
	delete(f.saved, mode)
	return nil
}

func (f *fakeProfiles) FitnessProfile(ctx context.Context, userID primitive.ObjectID) (domain.FitnessProfile, error) {
	return domain.FitnessProfile{}, service.ErrProfileNotFound
}

type fakeConversations struct {
	replyWarning string
}

func (f *fakeConversations) Start(ctx context.Context, userID primitive.ObjectID, mode domain.Mode, title string) (*domain.Conversation, error) {
	if !mode.Valid() {
		return nil, service.ErrInvalidMode
	}
	return &domain.Conversation{ID: primitive.NewObjectID(), UserID: userID, Mode: mode, Title: title}, nil
}

func (f *fakeConversations) List(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) ([]domain.Conversation, error) {
	return nil, nil
}

func (f *fakeConversations) Get(ctx context.Context, userID, convID primitive.ObjectID) (*domain.Conversation, error) {
	return nil, service.ErrConversationNotFound
}

func (f *fakeConversations) Delete(ctx context.Context, userID, convID primitive.ObjectID) error {
	return service.ErrConversationNotOwned
}

func (f *fakeConversations) SendMessage(ctx context.Context, userID, convID primitive.ObjectID, content string) (*service.MessageResult, error) {
	return &service.MessageResult{
		Message: domain.Message{Role: domain.RoleUser, Content: content},
		Warning: f.replyWarning,
	}, nil
}
