package service

import (
	"context"
	"io"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/osler-labs/clinsim-go-api/internal/models"
)

func TestStatsAggregationAndCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	students := newMemoryStudentRepo()
	patients := newMemoryPatientRepo()
	assignments := newMemoryAssignmentRepo()

	students.put(models.Student{Name: "Jane", Email: "jane@example.com"})
	students.put(models.Student{Name: "Joe", Email: "joe@example.com"})
	students.put(models.Student{Name: "Root", Email: "root@example.com", IsAdmin: true})

	patient := patients.put(models.Patient{Name: "John Carter"}, nil)

	assignments.put(models.Assignment{
		StudentID:       uuid.New(),
		PatientID:       patient.ID,
		Status:          models.AssignmentStatusMarked,
		ConversationLog: datatypes.JSON(testConversationLog),
	})
	assignments.put(models.Assignment{
		StudentID:       uuid.New(),
		PatientID:       patient.ID,
		Status:          models.AssignmentStatusInProgress,
		ConversationLog: datatypes.JSON(testConversationLog),
	})
	assignments.put(models.Assignment{
		StudentID: uuid.New(),
		PatientID: patient.ID,
		Status:    models.AssignmentStatusAssigned,
	})

	service := NewStatsService(students, patients, assignments, redisClient, time.Minute, zerolog.New(io.Discard))

	stats, err := service.GetStats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.Users)
	require.EqualValues(t, 1, stats.Patients)
	require.EqualValues(t, 1, stats.Assessments)
	require.EqualValues(t, 2, stats.Interactions)

	// Mutations behind a warm cache are invisible until the TTL expires.
	students.put(models.Student{Name: "New", Email: "new@example.com"})

	cached, err := service.GetStats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, cached.Users)

	mini.FastForward(2 * time.Minute)

	refreshed, err := service.GetStats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, refreshed.Users)
}

func TestStatsWithoutCache(t *testing.T) {
	students := newMemoryStudentRepo()
	patients := newMemoryPatientRepo()
	assignments := newMemoryAssignmentRepo()
	students.put(models.Student{Name: "Jane", Email: "jane@example.com"})

	service := NewStatsService(students, patients, assignments, nil, time.Minute, zerolog.New(io.Discard))

	stats, err := service.GetStats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.Users)
	require.Zero(t, stats.Patients)
}
