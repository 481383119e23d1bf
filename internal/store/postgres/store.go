package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
	"github.com/thomas-vilte/mateticket/internal/services/cost"
	"github.com/thomas-vilte/mateticket/internal/services/feedback"
	"github.com/thomas-vilte/mateticket/internal/services/resolution"
)

//go:embed schema.sql
var schemaSQL string

var (
	_ resolution.Repository = (*Store)(nil)
	_ cost.ActivityStore    = (*Store)(nil)
	_ feedback.Archive      = (*Store)(nil)
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return NewStore(pool), nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the tables if they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("error applying schema: %w", err)
	}
	return nil
}

// Seed loads the bundled history and knowledge base when both tables are
// empty.
func (s *Store) Seed(ctx context.Context, seed *resolution.Seed) error {
	var count int
	if err := s.pool.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM historical_tickets) + (SELECT count(*) FROM knowledge_articles)
	`).Scan(&count); err != nil {
		return fmt.Errorf("error counting seed rows: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, ticket := range seed.HistoricalTickets {
		if err := upsertTicket(ctx, tx, ticket); err != nil {
			return err
		}
	}
	for _, article := range seed.KnowledgeArticles {
		if _, err := tx.Exec(ctx, `
			INSERT INTO knowledge_articles
				(article_id, title, content, category, steps, tags, last_updated, view_count, helpfulness_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (article_id) DO NOTHING
		`, article.ArticleID, article.Title, article.Content, string(article.Category),
			nonNil(article.Steps), nonNil(article.Tags), orNow(article.LastUpdated),
			article.ViewCount, article.HelpfulnessScore); err != nil {
			return fmt.Errorf("error seeding article %s: %w", article.ArticleID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "database seeded",
		"tickets", len(seed.HistoricalTickets),
		"articles", len(seed.KnowledgeArticles))
	return nil
}

func (s *Store) HistoricalTickets(ctx context.Context) ([]models.HistoricalTicket, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticket_id, title, description, category, resolution, resolution_steps,
		       resolution_time_minutes, technician_id, customer_satisfaction, tags,
		       created_at, resolved_at
		FROM historical_tickets
		ORDER BY resolved_at, ticket_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.HistoricalTicket
	for rows.Next() {
		var t models.HistoricalTicket
		var category string
		if err := rows.Scan(&t.TicketID, &t.Title, &t.Description, &category, &t.Resolution,
			&t.ResolutionSteps, &t.ResolutionTimeMinutes, &t.TechnicianID, &t.CustomerSatisfaction,
			&t.Tags, &t.CreatedAt, &t.ResolvedAt); err != nil {
			return nil, err
		}
		t.Category = models.Category(category)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *Store) KnowledgeArticles(ctx context.Context) ([]models.KnowledgeArticle, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT article_id, title, content, category, steps, tags, last_updated,
		       view_count, helpfulness_score
		FROM knowledge_articles
		ORDER BY article_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []models.KnowledgeArticle
	for rows.Next() {
		var a models.KnowledgeArticle
		var category string
		if err := rows.Scan(&a.ArticleID, &a.Title, &a.Content, &category, &a.Steps, &a.Tags,
			&a.LastUpdated, &a.ViewCount, &a.HelpfulnessScore); err != nil {
			return nil, err
		}
		a.Category = models.Category(category)
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// RecordResolution inserts ticket, replacing a row with the same ticket ID.
func (s *Store) RecordResolution(ctx context.Context, ticket models.HistoricalTicket) error {
	return upsertTicket(ctx, s.pool, ticket)
}

func (s *Store) SaveActivity(ctx context.Context, record cost.ActivityRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ai_activity
			(occurred_at, command, provider, model, tokens_input, tokens_output,
			 cost_usd, duration_ms, cache_hit, hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, record.Timestamp.UTC(), record.Command, record.Provider, record.Model,
		record.TokensInput, record.TokensOutput, record.CostUSD, record.DurationMs,
		record.CacheHit, record.Hash)
	return err
}

func (s *Store) ListActivity(ctx context.Context, since time.Time) ([]cost.ActivityRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT occurred_at, command, provider, model, tokens_input, tokens_output,
		       cost_usd, duration_ms, cache_hit, hash
		FROM ai_activity
		WHERE occurred_at >= $1
		ORDER BY occurred_at, activity_id
	`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []cost.ActivityRecord
	for rows.Next() {
		var r cost.ActivityRecord
		if err := rows.Scan(&r.Timestamp, &r.Command, &r.Provider, &r.Model, &r.TokensInput,
			&r.TokensOutput, &r.CostUSD, &r.DurationMs, &r.CacheHit, &r.Hash); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) ArchiveFeedback(ctx context.Context, fb models.Feedback) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO feedback
			(feedback_id, feedback_type, ticket_id, rating, comment,
			 prediction_confidence, user_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (feedback_id) DO NOTHING
	`, fb.FeedbackID, string(fb.Type), fb.TicketID, fb.Rating, fb.Comment,
		fb.PredictionConfidence, fb.UserID, fb.Metadata, fb.CreatedAt.UTC())
	return err
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertTicket(ctx context.Context, db execer, t models.HistoricalTicket) error {
	_, err := db.Exec(ctx, `
		INSERT INTO historical_tickets
			(ticket_id, title, description, category, resolution, resolution_steps,
			 resolution_time_minutes, technician_id, customer_satisfaction, tags,
			 created_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (ticket_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			resolution = EXCLUDED.resolution,
			resolution_steps = EXCLUDED.resolution_steps,
			resolution_time_minutes = EXCLUDED.resolution_time_minutes,
			technician_id = EXCLUDED.technician_id,
			customer_satisfaction = EXCLUDED.customer_satisfaction,
			tags = EXCLUDED.tags,
			created_at = EXCLUDED.created_at,
			resolved_at = EXCLUDED.resolved_at
	`, t.TicketID, t.Title, t.Description, string(t.Category), t.Resolution,
		nonNil(t.ResolutionSteps), t.ResolutionTimeMinutes, t.TechnicianID,
		t.CustomerSatisfaction, nonNil(t.Tags), orNow(t.CreatedAt), orNow(t.ResolvedAt))
	if err != nil {
		return fmt.Errorf("error saving ticket %s: %w", t.TicketID, err)
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
