package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/repository"
)

var (
	ErrInvalidMode        = errors.New("unknown coaching mode")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidProfileData = errors.New("invalid profile data")
)

type ProfileService interface {
	Save(ctx context.Context, userID primitive.ObjectID, mode domain.Mode, data map[string]interface{}) (*domain.Profile, error)
	Get(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) (*domain.Profile, error)
	List(ctx context.Context, userID primitive.ObjectID) ([]domain.Profile, error)
	Delete(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) error
	// FitnessProfile decodes the user's stored fitness intake form.
	FitnessProfile(ctx context.Context, userID primitive.ObjectID) (domain.FitnessProfile, error)
}

type profileService struct {
	profileRepo repository.ProfileRepository
	logger      zerolog.Logger
}

func NewProfileService(profileRepo repository.ProfileRepository, logger zerolog.Logger) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		logger:      logger.With().Str("component", "profile_service").Logger(),
	}
}

// Save replaces the profile of a mode. Fitness fields that plan generation
// cannot read are kept in the document but logged.
func (s *profileService) Save(ctx context.Context, userID primitive.ObjectID, mode domain.Mode, data map[string]interface{}) (*domain.Profile, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	if mode == domain.ModeFitness {
		if _, err := s.decodeFitness(userID, data); err != nil {
			return nil, err
		}
	}

	profile := &domain.Profile{UserID: userID, Mode: mode, Data: data}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID.Hex()).Str("mode", string(mode)).Msg("profile saved")
	return profile, nil
}

func (s *profileService) Get(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) (*domain.Profile, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	profile, err := s.profileRepo.GetByUserAndMode(ctx, userID, mode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) List(ctx context.Context, userID primitive.ObjectID) ([]domain.Profile, error) {
	return s.profileRepo.ListByUser(ctx, userID)
}

func (s *profileService) Delete(ctx context.Context, userID primitive.ObjectID, mode domain.Mode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	if err := s.profileRepo.Delete(ctx, userID, mode); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	return nil
}

func (s *profileService) FitnessProfile(ctx context.Context, userID primitive.ObjectID) (domain.FitnessProfile, error) {
	profile, err := s.Get(ctx, userID, domain.ModeFitness)
	if err != nil {
		return domain.FitnessProfile{}, err
	}
	return s.decodeFitness(userID, profile.Data)
}

func (s *profileService) decodeFitness(userID primitive.ObjectID, data map[string]interface{}) (domain.FitnessProfile, error) {
	fp, skipped, err := domain.FitnessProfileFromData(data)
	if err != nil {
		return domain.FitnessProfile{}, fmt.Errorf("%w: %v", ErrInvalidProfileData, err)
	}
	if len(skipped) > 0 {
		s.logger.Warn().Str("user_id", userID.Hex()).Strs("fields", skipped).Msg("ignoring unreadable fitness profile fields")
	}
	return fp, nil
}
