package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/osler-labs/clinsim-go-api/internal/dto"
	"github.com/osler-labs/clinsim-go-api/internal/repository"
)

const statsCacheKey = "stats:home"

// StatsService produces the landing-page counters.
type StatsService interface {
	GetStats(ctx context.Context) (dto.StatsResponse, error)
}

type statsService struct {
	students    repository.StudentRepository
	patients    repository.PatientRepository
	assignments repository.AssignmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewStatsService builds the stats aggregator.
func NewStatsService(studentRepo repository.StudentRepository, patientRepo repository.PatientRepository, assignmentRepo repository.AssignmentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		students:    studentRepo,
		patients:    patientRepo,
		assignments: assignmentRepo,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "stats_service").Logger(),
	}
}

func (s *statsService) GetStats(ctx context.Context) (dto.StatsResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, statsCacheKey).Result(); err == nil {
			var response dto.StatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Msg("stats cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read stats cache")
		}
	}

	users, err := s.students.CountNonAdmin(ctx)
	if err != nil {
		return dto.StatsResponse{}, err
	}

	patients, err := s.patients.Count(ctx)
	if err != nil {
		return dto.StatsResponse{}, err
	}

	assessments, err := s.assignments.CountMarked(ctx)
	if err != nil {
		return dto.StatsResponse{}, err
	}

	interactions, err := s.assignments.CountWithConversation(ctx)
	if err != nil {
		return dto.StatsResponse{}, err
	}

	response := dto.StatsResponse{
		Users:        users,
		Patients:     patients,
		Assessments:  assessments,
		Interactions: interactions,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store stats cache")
			}
		}
	}

	return response, nil
}
