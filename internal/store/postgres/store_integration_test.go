package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/mateticket/internal/models"
	"github.com/thomas-vilte/mateticket/internal/services/cost"
	"github.com/thomas-vilte/mateticket/internal/services/resolution"
)

func setupTestStore(t *testing.T, ctx context.Context) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is required for integration tests")
	}

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	exec := func(sql string) error {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return err
		}
		defer conn.Close(ctx)
		_, err = conn.Exec(ctx, sql)
		return err
	}
	require.NoError(t, exec("CREATE SCHEMA "+schema))

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_ = exec("DROP SCHEMA " + schema + " CASCADE")
	})

	st := NewStore(pool)
	require.NoError(t, st.EnsureSchema(ctx))
	return st
}

func TestStore_SeedAndResolutions(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t, ctx)

	seed, err := resolution.LoadSeed()
	require.NoError(t, err)

	// Act
	require.NoError(t, st.Seed(ctx, seed))
	require.NoError(t, st.Seed(ctx, seed))

	// Assert
	tickets, err := st.HistoricalTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, len(seed.HistoricalTickets))

	articles, err := st.KnowledgeArticles(ctx)
	require.NoError(t, err)
	assert.Len(t, articles, len(seed.KnowledgeArticles))

	t.Run("record resolution upserts by ticket id", func(t *testing.T) {
		ticket := models.HistoricalTicket{
			TicketID:              "T-NEW",
			Title:                 "VPN drops every hour",
			Category:              models.CategoryNetwork,
			Resolution:            "Renewed the client certificate",
			ResolutionSteps:       []string{"Renew certificate"},
			ResolutionTimeMinutes: 45,
			Tags:                  []string{"vpn"},
		}
		require.NoError(t, st.RecordResolution(ctx, ticket))
		ticket.ResolutionTimeMinutes = 30
		require.NoError(t, st.RecordResolution(ctx, ticket))

		tickets, err := st.HistoricalTickets(ctx)
		require.NoError(t, err)
		assert.Len(t, tickets, len(seed.HistoricalTickets)+1)

		var found *models.HistoricalTicket
		for i := range tickets {
			if tickets[i].TicketID == "T-NEW" {
				found = &tickets[i]
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, 30, found.ResolutionTimeMinutes)
		assert.Equal(t, models.CategoryNetwork, found.Category)
		assert.Equal(t, []string{"vpn"}, found.Tags)
	})
}

func TestStore_Activity(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t, ctx)
	now := time.Now().UTC().Truncate(time.Millisecond)

	old := cost.ActivityRecord{Timestamp: now.Add(-48 * time.Hour), Command: "triage", Provider: "gemini", Model: "gemini-1.5-flash", CostUSD: 0.1}
	recent := cost.ActivityRecord{Timestamp: now, Command: "predict_sla", Provider: "gemini", Model: "gemini-1.5-flash", TokensInput: 120, CostUSD: 0.2, CacheHit: true}
	require.NoError(t, st.SaveActivity(ctx, old))
	require.NoError(t, st.SaveActivity(ctx, recent))

	// Act
	records, err := st.ListActivity(ctx, now.Add(-time.Hour))

	// Assert
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "predict_sla", records[0].Command)
	assert.Equal(t, 120, records[0].TokensInput)
	assert.True(t, records[0].CacheHit)
	assert.True(t, records[0].Timestamp.Equal(now))
}

func TestStore_ArchiveFeedback(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t, ctx)
	confidence := 0.8
	fb := models.Feedback{
		FeedbackID:           "fb-1",
		Type:                 models.FeedbackTriageAccuracy,
		TicketID:             "T-1",
		Rating:               4,
		PredictionConfidence: &confidence,
		Metadata:             map[string]any{"source": "ui"},
		CreatedAt:            time.Now(),
	}

	// Act
	require.NoError(t, st.ArchiveFeedback(ctx, fb))
	require.NoError(t, st.ArchiveFeedback(ctx, fb))

	// Assert
	var count int
	require.NoError(t, st.pool.QueryRow(ctx, "SELECT count(*) FROM feedback").Scan(&count))
	assert.Equal(t, 1, count)
}
