package persistence_test

import (
	"context"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/xid"
	"github.com/stretchr/testify/require"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/persistence"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN is not set")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, persistence.EnsureSchema(context.Background(), db))

	return db
}

func TestSessionRepository(t *testing.T) {
	rq := require.New(t)
	repo := persistence.NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	session := entity.Session{
		Key:           xid.New().String(),
		Authenticated: true,
		Username:      "admin",
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
		ExpiresAt:     time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second),
	}

	rq.NoError(repo.Create(ctx, session))

	got, err := repo.Get(ctx, session.Key)
	rq.NoError(err)
	rq.True(got.Authenticated)
	rq.Equal("admin", got.Username)
	rq.False(got.Expired(time.Now()))

	_, err = repo.Get(ctx, "missing-key")
	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.SessionExpired, code)

	rq.NoError(repo.Delete(ctx, session.Key))

	_, err = repo.Get(ctx, session.Key)
	rq.Error(err)
}

func TestSessionRepositoryDeleteExpired(t *testing.T) {
	rq := require.New(t)
	repo := persistence.NewSessionRepository(newTestDB(t))
	ctx := context.Background()

	stale := entity.Session{
		Key:           xid.New().String(),
		Authenticated: true,
		Username:      "admin",
		CreatedAt:     time.Now().UTC().Add(-48 * time.Hour),
		ExpiresAt:     time.Now().UTC().Add(-24 * time.Hour),
	}

	rq.NoError(repo.Create(ctx, stale))

	swept, err := repo.DeleteExpired(ctx, time.Now().UTC())
	rq.NoError(err)
	rq.GreaterOrEqual(swept, int64(1))

	_, err = repo.Get(ctx, stale.Key)
	rq.Error(err)
}

func TestConversationRepository(t *testing.T) {
	rq := require.New(t)
	repo := persistence.NewConversationRepository(newTestDB(t))
	ctx := context.Background()
	key := xid.New().String()

	rq.NoError(repo.Append(ctx, key, 20,
		entity.ChatTurn{Role: entity.RoleUser, Content: "top prospects"},
		entity.ChatTurn{Role: entity.RoleAssistant, Content: "here they are"},
	))

	turns, err := repo.History(ctx, key, 6)
	rq.NoError(err)
	rq.Len(turns, 2)
	rq.Equal(entity.RoleUser, turns[0].Role)
	rq.Equal("here they are", turns[1].Content)

	rq.NoError(repo.Clear(ctx, key))

	turns, err = repo.History(ctx, key, 6)
	rq.NoError(err)
	rq.Empty(turns)
}

func TestConversationRepositoryTrimsHistory(t *testing.T) {
	rq := require.New(t)
	repo := persistence.NewConversationRepository(newTestDB(t))
	ctx := context.Background()
	key := xid.New().String()

	for i := 0; i < 8; i++ {
		rq.NoError(repo.Append(ctx, key, 4,
			entity.ChatTurn{Role: entity.RoleUser, Content: "message"},
		))
	}

	turns, err := repo.History(ctx, key, 20)
	rq.NoError(err)
	rq.Len(turns, 4)
}

func TestExecutionRepository(t *testing.T) {
	rq := require.New(t)
	repo := persistence.NewExecutionRepository(newTestDB(t))
	ctx := context.Background()

	execution := entity.JobExecution{
		ID:          xid.New().String(),
		JobType:     "daily",
		Status:      entity.ExecutionPending,
		TriggeredBy: "admin",
		StartedAt:   time.Now().UTC(),
	}

	rq.NoError(repo.Create(ctx, execution))

	running, err := repo.Running(ctx)
	rq.NoError(err)
	rq.True(running)

	rq.NoError(repo.MarkRunning(ctx, execution.ID, "zoektrends-daily", "zoektrends-daily-x7k2q"))

	latest, err := repo.Latest(ctx)
	rq.NoError(err)
	rq.Equal(execution.ID, latest.ID)
	rq.Equal("zoektrends-daily", latest.Job)
	rq.Equal("zoektrends-daily-x7k2q", latest.Execution)
	rq.Equal(entity.ExecutionRunning, latest.Status)

	rq.NoError(repo.Finish(ctx, execution.ID, entity.ExecutionSucceeded, "", time.Now().UTC()))

	latest, err = repo.Latest(ctx)
	rq.NoError(err)
	rq.Equal(entity.ExecutionSucceeded, latest.Status)
	rq.NotNil(latest.FinishedAt)

	recent, err := repo.Recent(ctx, 5)
	rq.NoError(err)
	rq.NotEmpty(recent)
}

func TestExecutionRepositoryFailStale(t *testing.T) {
	rq := require.New(t)
	repo := persistence.NewExecutionRepository(newTestDB(t))
	ctx := context.Background()

	now := time.Now().UTC()

	stale := entity.JobExecution{
		ID:          xid.New().String(),
		JobType:     "exhaustive",
		Status:      entity.ExecutionRunning,
		TriggeredBy: "admin",
		StartedAt:   now.Add(-2 * time.Hour),
	}
	fresh := entity.JobExecution{
		ID:          xid.New().String(),
		JobType:     "daily",
		Status:      entity.ExecutionRunning,
		TriggeredBy: "admin",
		StartedAt:   now,
	}

	rq.NoError(repo.Create(ctx, stale))
	rq.NoError(repo.Create(ctx, fresh))

	closed, err := repo.FailStale(ctx, now.Add(-time.Hour), now)
	rq.NoError(err)
	rq.GreaterOrEqual(closed, int64(1))

	recent, err := repo.Recent(ctx, 50)
	rq.NoError(err)

	for _, execution := range recent {
		switch execution.ID {
		case stale.ID:
			rq.Equal(entity.ExecutionFailed, execution.Status)
			rq.Equal("no completion reported", execution.Error)
			rq.NotNil(execution.FinishedAt)
		case fresh.ID:
			rq.Equal(entity.ExecutionRunning, execution.Status)
		}
	}
}
