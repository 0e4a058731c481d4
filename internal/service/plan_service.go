package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/planner"
	"lifecoach/coach-api/internal/repository"
	"lifecoach/coach-api/internal/storage"
)

var (
	ErrExportNotFound     = errors.New("plan export not found")
	ErrExportNotOwned     = errors.New("plan export does not belong to this user")
	ErrInvalidPlan        = errors.New("plan is incomplete")
	ErrStorageUnavailable = errors.New("plan storage is not configured")
	ErrDownloadURLError   = errors.New("failed to generate download URL")
)

const (
	exportContentType = "application/json"
	exportURLExpiry   = 15 * time.Minute
)

// PlanObtainer is satisfied by *planner.Orchestrator.
type PlanObtainer interface {
	ObtainPlan(ctx context.Context, profile domain.FitnessProfile) planner.Result
}

// ExportURLResponse is a temporary download link for an exported plan.
type ExportURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type PlanService interface {
	// Generate never fails; see planner.Orchestrator.
	Generate(ctx context.Context, profile domain.FitnessProfile) planner.Result
	// GenerateForUser builds a plan from the user's stored fitness profile.
	GenerateForUser(ctx context.Context, userID primitive.ObjectID) (planner.Result, error)

	Export(ctx context.Context, userID primitive.ObjectID, title string, result planner.Result) (*domain.PlanExport, error)
	ListExports(ctx context.Context, userID primitive.ObjectID) ([]domain.PlanExport, error)
	ExportDownloadURL(ctx context.Context, userID, exportID primitive.ObjectID) (*ExportURLResponse, error)
	DeleteExport(ctx context.Context, userID, exportID primitive.ObjectID) error
}

type planService struct {
	obtainer   PlanObtainer
	profiles   ProfileService
	exportRepo repository.PlanExportRepository
	store      storage.ObjectStorage // nil disables exports
	logger     zerolog.Logger
}

func NewPlanService(
	obtainer PlanObtainer,
	profiles ProfileService,
	exportRepo repository.PlanExportRepository,
	store storage.ObjectStorage,
	logger zerolog.Logger,
) PlanService {
	return &planService{
		obtainer:   obtainer,
		profiles:   profiles,
		exportRepo: exportRepo,
		store:      store,
		logger:     logger.With().Str("component", "plan_service").Logger(),
	}
}

func (s *planService) Generate(ctx context.Context, profile domain.FitnessProfile) planner.Result {
	return s.obtainer.ObtainPlan(ctx, profile)
}

func (s *planService) GenerateForUser(ctx context.Context, userID primitive.ObjectID) (planner.Result, error) {
	profile, err := s.profiles.FitnessProfile(ctx, userID)
	if err != nil {
		return planner.Result{}, err
	}
	return s.obtainer.ObtainPlan(ctx, profile), nil
}

// Export uploads the plan with its provenance as a JSON object and records
// its metadata. The object is removed again if the metadata cannot be saved.
func (s *planService) Export(ctx context.Context, userID primitive.ObjectID, title string, result planner.Result) (*domain.PlanExport, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	if err := result.Plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Fitness plan " + time.Now().UTC().Format("2006-01-02")
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}

	exportID := primitive.NewObjectID()
	objectKey := fmt.Sprintf("plans/%s/%s-%s.json", userID.Hex(), exportID.Hex(), uuid.NewString())
	if err := s.store.PutObject(ctx, objectKey, exportContentType, body); err != nil {
		return nil, fmt.Errorf("upload plan: %w", err)
	}

	export := &domain.PlanExport{
		ID:          exportID,
		UserID:      userID,
		Title:       title,
		Source:      string(result.Source),
		S3ObjectKey: objectKey,
		ContentType: exportContentType,
		Size:        int64(len(body)),
	}
	if _, err := s.exportRepo.Create(ctx, export); err != nil {
		if delErr := s.store.DeleteObject(ctx, objectKey); delErr != nil {
			s.logger.Error().Err(delErr).Str("key", objectKey).Msg("failed to remove orphaned plan object")
		}
		return nil, err
	}

	s.logger.Info().Str("user_id", userID.Hex()).Str("export_id", exportID.Hex()).Str("source", export.Source).Msg("plan exported")
	return export, nil
}

func (s *planService) ListExports(ctx context.Context, userID primitive.ObjectID) ([]domain.PlanExport, error) {
	return s.exportRepo.ListByUser(ctx, userID)
}

func (s *planService) getOwnedExport(ctx context.Context, userID, exportID primitive.ObjectID) (*domain.PlanExport, error) {
	export, err := s.exportRepo.GetByID(ctx, exportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}
	if export.UserID != userID {
		return nil, ErrExportNotOwned
	}
	return export, nil
}

func (s *planService) ExportDownloadURL(ctx context.Context, userID, exportID primitive.ObjectID) (*ExportURLResponse, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	export, err := s.getOwnedExport(ctx, userID, exportID)
	if err != nil {
		return nil, err
	}

	url, err := s.store.GeneratePresignedDownloadURL(ctx, export.S3ObjectKey, exportURLExpiry)
	if err != nil {
		s.logger.Error().Err(err).Str("export_id", exportID.Hex()).Msg("failed to presign plan download")
		return nil, ErrDownloadURLError
	}
	return &ExportURLResponse{URL: url, ExpiresAt: time.Now().UTC().Add(exportURLExpiry)}, nil
}

// DeleteExport removes the metadata first; a leftover object is only logged.
func (s *planService) DeleteExport(ctx context.Context, userID, exportID primitive.ObjectID) error {
	export, err := s.getOwnedExport(ctx, userID, exportID)
	if err != nil {
		return err
	}
	if err := s.exportRepo.Delete(ctx, exportID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExportNotFound
		}
		return err
	}
	if s.store != nil {
		if err := s.store.DeleteObject(ctx, export.S3ObjectKey); err != nil {
			s.logger.Warn().Err(err).Str("key", export.S3ObjectKey).Msg("plan object left behind after export delete")
		}
	}
	return nil
}
