package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/repository"
)

var (
	ErrGoalNotFound       = errors.New("goal not found")
	ErrGoalNotOwned       = errors.New("goal does not belong to this user")
	ErrGoalTitleRequired  = errors.New("goal title is required")
	ErrInvalidGoalStatus  = errors.New("invalid goal status")
	ErrProgressOutOfRange = errors.New("progress must be between 0 and 100")
)

// GoalInput carries the user-editable fields of a goal.
type GoalInput struct {
	Mode        domain.Mode
	Title       string
	Description string
	TargetDate  *time.Time
}

// GoalUpdate is a partial update; nil fields are left unchanged.
type GoalUpdate struct {
	Title       *string
	Description *string
	Status      *domain.GoalStatus
	Progress    *int
	TargetDate  *time.Time
}

type GoalService interface {
	Create(ctx context.Context, userID primitive.ObjectID, in GoalInput) (*domain.Goal, error)
	Get(ctx context.Context, userID, goalID primitive.ObjectID) (*domain.Goal, error)
	List(ctx context.Context, userID primitive.ObjectID, filter repository.GoalFilter) ([]domain.Goal, error)
	Update(ctx context.Context, userID, goalID primitive.ObjectID, upd GoalUpdate) (*domain.Goal, error)
	Delete(ctx context.Context, userID, goalID primitive.ObjectID) error
}

type goalService struct {
	goalRepo repository.GoalRepository
}

func NewGoalService(goalRepo repository.GoalRepository) GoalService {
	return &goalService{goalRepo: goalRepo}
}

func (s *goalService) Create(ctx context.Context, userID primitive.ObjectID, in GoalInput) (*domain.Goal, error) {
	if !in.Mode.Valid() {
		return nil, ErrInvalidMode
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrGoalTitleRequired
	}

	goal := &domain.Goal{
		UserID:      userID,
		Mode:        in.Mode,
		Title:       title,
		Description: in.Description,
		Status:      domain.GoalActive,
		TargetDate:  in.TargetDate,
	}
	if _, err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// Get returns the goal only if userID owns it.
func (s *goalService) Get(ctx context.Context, userID, goalID primitive.ObjectID) (*domain.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrGoalNotOwned
	}
	return goal, nil
}

func (s *goalService) List(ctx context.Context, userID primitive.ObjectID, filter repository.GoalFilter) ([]domain.Goal, error) {
	if filter.Mode != "" && !filter.Mode.Valid() {
		return nil, ErrInvalidMode
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidGoalStatus
	}
	return s.goalRepo.ListByUser(ctx, userID, filter)
}

// Update applies upd. Setting progress to 100 on an active goal completes it.
func (s *goalService) Update(ctx context.Context, userID, goalID primitive.ObjectID, upd GoalUpdate) (*domain.Goal, error) {
	goal, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, ErrGoalTitleRequired
		}
		goal.Title = title
	}
	if upd.Description != nil {
		goal.Description = *upd.Description
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, ErrInvalidGoalStatus
		}
		goal.Status = *upd.Status
	}
	if upd.Progress != nil {
		if *upd.Progress < 0 || *upd.Progress > 100 {
			return nil, ErrProgressOutOfRange
		}
		goal.Progress = *upd.Progress
		if goal.Progress == 100 && goal.Status == domain.GoalActive {
			goal.Status = domain.GoalCompleted
		}
	}
	if upd.TargetDate != nil {
		goal.TargetDate = upd.TargetDate
	}

	if err := s.goalRepo.Update(ctx, goal); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

func (s *goalService) Delete(ctx context.Context, userID, goalID primitive.ObjectID) error {
	if _, err := s.Get(ctx, userID, goalID); err != nil {
		return err
	}
	if err := s.goalRepo.Delete(ctx, goalID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	return nil
}
