package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/llm"
	"lifecoach/coach-api/internal/repository"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	r.users[u.ID] = *u
	return u.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type profileKey struct {
	user primitive.ObjectID
	mode domain.Mode
}

type fakeProfileRepo struct {
	profiles map[profileKey]domain.Profile
	err      error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[profileKey]domain.Profile{}}
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *domain.Profile) error {
	if r.err != nil {
		return r.err
	}
	key := profileKey{p.UserID, p.Mode}
	existing, ok := r.profiles[key]
	if ok {
		p.ID, p.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		p.ID, p.CreatedAt = primitive.NewObjectID(), time.Now().UTC()
	}
	p.UpdatedAt = time.Now().UTC()
	r.profiles[key] = *p
	return nil
}

func (r *fakeProfileRepo) GetByUserAndMode(_ context.Context, userID primitive.ObjectID, mode domain.Mode) (*domain.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.profiles[profileKey{userID, mode}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *fakeProfileRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.Profile, error) {
	out := []domain.Profile{}
	for k, p := range r.profiles {
		if k.user == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mode < out[j].Mode })
	return out, nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, userID primitive.ObjectID, mode domain.Mode) error {
	key := profileKey{userID, mode}
	if _, ok := r.profiles[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.profiles, key)
	return nil
}

type fakeGoalRepo struct {
	goals map[primitive.ObjectID]domain.Goal
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: map[primitive.ObjectID]domain.Goal{}}
}

func (r *fakeGoalRepo) Create(_ context.Context, g *domain.Goal) (primitive.ObjectID, error) {
	g.ID = primitive.NewObjectID()
	g.CreatedAt = time.Now().UTC()
	g.UpdatedAt = g.CreatedAt
	r.goals[g.ID] = *g
	return g.ID, nil
}

func (r *fakeGoalRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Goal, error) {
	g, ok := r.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (r *fakeGoalRepo) ListByUser(_ context.Context, userID primitive.ObjectID, f repository.GoalFilter) ([]domain.Goal, error) {
	out := []domain.Goal{}
	for _, g := range r.goals {
		if g.UserID != userID || (f.Mode != "" && g.Mode != f.Mode) || (f.Status != "" && g.Status != f.Status) {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *fakeGoalRepo) Update(_ context.Context, g *domain.Goal) error {
	existing, ok := r.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		return repository.ErrNotFound
	}
	r.goals[g.ID] = *g
	return nil
}

func (r *fakeGoalRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	g, ok := r.goals[id]
	if !ok || g.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.goals, id)
	return nil
}

type fakeConversationRepo struct {
	convs map[primitive.ObjectID]domain.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: map[primitive.ObjectID]domain.Conversation{}}
}

func (r *fakeConversationRepo) Create(_ context.Context, c *domain.Conversation) (primitive.ObjectID, error) {
	c.ID = primitive.NewObjectID()
	if c.Messages == nil {
		c.Messages = []domain.Message{}
	}
	r.convs[c.ID] = *c
	return c.ID, nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Conversation, error) {
	c, ok := r.convs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *fakeConversationRepo) ListByUser(_ context.Context, userID primitive.ObjectID, mode domain.Mode) ([]domain.Conversation, error) {
	out := []domain.Conversation{}
	for _, c := range r.convs {
		if c.UserID == userID && (mode == "" || c.Mode == mode) {
			c.Messages = nil
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) AppendMessages(_ context.Context, id primitive.ObjectID, msgs ...domain.Message) error {
	c, ok := r.convs[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Messages = append(c.Messages, msgs...)
	r.convs[id] = c
	return nil
}

func (r *fakeConversationRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	c, ok := r.convs[id]
	if !ok || c.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.convs, id)
	return nil
}

type fakeExportRepo struct {
	exports map[primitive.ObjectID]domain.PlanExport
	err     error
}

func newFakeExportRepo() *fakeExportRepo {
	return &fakeExportRepo{exports: map[primitive.ObjectID]domain.PlanExport{}}
}

func (r *fakeExportRepo) Create(_ context.Context, e *domain.PlanExport) (primitive.ObjectID, error) {
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	e.CreatedAt = time.Now().UTC()
	r.exports[e.ID] = *e
	return e.ID, nil
}

func (r *fakeExportRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PlanExport, error) {
	e, ok := r.exports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *fakeExportRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.PlanExport, error) {
	out := []domain.PlanExport{}
	for _, e := range r.exports {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeExportRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	e, ok := r.exports[id]
	if !ok || e.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.exports, id)
	return nil
}

type fakeStorage struct {
	objects map[string][]byte
	putErr  error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) PutObject(_ context.Context, key, _ string, body []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = body
	return nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.example/" + key + "?sig=1", nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type fakeReplier struct {
	reply   string
	err     error
	system  string
	history []llm.Message
}

func (f *fakeReplier) Chat(_ context.Context, system string, history []llm.Message) (string, error) {
	f.system = system
	f.history = history
	return f.reply, f.err
}
