package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/taiwoajasa245/confession-api/internal/database"
	"github.com/taiwoajasa245/confession-api/internal/generation"
)

var (
	ErrNotFound = errors.New("record not found")
)

// duplicatePrefixLen is how many leading characters of a candidate are
// searched for inside stored text.
const duplicatePrefixLen = 50

type Repository interface {
	GetByDate(ctx context.Context, date string) (*DailyContent, error)
	ListRecent(ctx context.Context, limit int) ([]DailyContent, error)
	InsertIfAbsent(ctx context.Context, c *DailyContent) (bool, error)
	Upsert(ctx context.Context, c *DailyContent) error
	DeleteByDate(ctx context.Context, date string) error

	SaveVerse(ctx context.Context, v generation.Verse) (*StoredVerse, error)
	SaveConfession(ctx context.Context, c generation.Confession, verseReference string) (*StoredConfession, error)
	VerseExists(ctx context.Context, text string) (bool, error)
	ConfessionExists(ctx context.Context, text string) (bool, error)

	SavePlan(ctx context.Context, p generation.Plan) (*ReadingPlan, error)
	GetPlan(ctx context.Context, id string) (*ReadingPlan, error)

	DigestSent(ctx context.Context, date string) (bool, error)
	RecordDigest(ctx context.Context, date string, recipients int) error
}

type repository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRepository(dbService database.Service) Repository {
	return &repository{
		db:  dbService.DB(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *repository) GetByDate(ctx context.Context, date string) (*DailyContent, error) {
	query := r.db.Rebind(`
		SELECT id, date, verse_text, reference, translation, confession_title,
		       confession_text, created_at, updated_at
		FROM daily_content
		WHERE date = ?
	`)

	var c DailyContent
	if err := r.db.GetContext(ctx, &c, query, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get daily content %s: %w", date, err)
	}
	return &c, nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]DailyContent, error) {
	query := r.db.Rebind(`
		SELECT id, date, verse_text, reference, translation, confession_title,
		       confession_text, created_at, updated_at
		FROM daily_content
		ORDER BY date DESC
		LIMIT ?
	`)

	items := []DailyContent{}
	if err := r.db.SelectContext(ctx, &items, query, limit); err != nil {
		return nil, fmt.Errorf("list daily content: %w", err)
	}
	return items, nil
}

const insertDailyContent = `
	INSERT INTO daily_content (
		id, date, verse_text, reference, translation, confession_title,
		confession_text, created_at, updated_at
	) VALUES (
		:id, :date, :verse_text, :reference, :translation, :confession_title,
		:confession_text, :created_at, :updated_at
	)`

// InsertIfAbsent stores c unless a row for c.Date exists, and reports whether
// it was written. Concurrent writers for one date leave exactly one row.
func (r *repository) InsertIfAbsent(ctx context.Context, c *DailyContent) (bool, error) {
	r.stamp(c)

	res, err := r.db.NamedExecContext(ctx, insertDailyContent+` ON CONFLICT (date) DO NOTHING`, c)
	if err != nil {
		return false, fmt.Errorf("insert daily content %s: %w", c.Date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert daily content %s: %w", c.Date, err)
	}
	return n == 1, nil
}

// Upsert replaces the content for c.Date, keeping the row's id and
// created_at when it already exists.
func (r *repository) Upsert(ctx context.Context, c *DailyContent) error {
	r.stamp(c)

	query := insertDailyContent + `
	ON CONFLICT (date) DO UPDATE SET
		verse_text = EXCLUDED.verse_text,
		reference = EXCLUDED.reference,
		translation = EXCLUDED.translation,
		confession_title = EXCLUDED.confession_title,
		confession_text = EXCLUDED.confession_text,
		updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("upsert daily content %s: %w", c.Date, err)
	}
	return nil
}

func (r *repository) DeleteByDate(ctx context.Context, date string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM daily_content WHERE date = ?`), date)
	if err != nil {
		return fmt.Errorf("delete daily content %s: %w", date, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete daily content %s: %w", date, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SaveVerse(ctx context.Context, v generation.Verse) (*StoredVerse, error) {
	sv := &StoredVerse{
		ID:          uuid.NewString(),
		Text:        v.Text,
		Reference:   v.Reference,
		Book:        v.Book,
		Chapter:     v.Chapter,
		Verse:       v.Verse,
		Translation: v.Translation,
		Theme:       v.Theme,
		CreatedAt:   r.now(),
	}

	query := `
		INSERT INTO verses (id, text, reference, book, chapter, verse, translation, theme, created_at)
		VALUES (:id, :text, :reference, :book, :chapter, :verse, :translation, :theme, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sv); err != nil {
		return nil, fmt.Errorf("save verse %s: %w", v.Reference, err)
	}
	return sv, nil
}

func (r *repository) SaveConfession(ctx context.Context, c generation.Confession, verseReference string) (*StoredConfession, error) {
	sc := &StoredConfession{
		ID:             uuid.NewString(),
		Text:           c.Text,
		Title:          c.Title,
		Style:          c.Style,
		VerseReference: verseReference,
		CreatedAt:      r.now(),
	}

	query := `
		INSERT INTO confessions (id, text, title, style, verse_reference, created_at)
		VALUES (:id, :text, :title, :style, :verse_reference, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sc); err != nil {
		return nil, fmt.Errorf("save confession: %w", err)
	}
	return sc, nil
}

func (r *repository) VerseExists(ctx context.Context, text string) (bool, error) {
	return r.textExists(ctx, "verses", text)
}

func (r *repository) ConfessionExists(ctx context.Context, text string) (bool, error) {
	return r.textExists(ctx, "confessions", text)
}

// textExists reports whether table holds text exactly, ignoring case, or a
// text containing the first duplicatePrefixLen characters of it.
func (r *repository) textExists(ctx context.Context, table, text string) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, nil
	}

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE LOWER(text) = LOWER(?)
			   OR LOWER(text) LIKE LOWER(?) ESCAPE '\'
		)`, table))

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, text, "%"+escapeLike(prefix(text, duplicatePrefixLen))+"%"); err != nil {
		return false, fmt.Errorf("check %s duplicate: %w", table, err)
	}
	return exists, nil
}

func (r *repository) SavePlan(ctx context.Context, p generation.Plan) (*ReadingPlan, error) {
	days, err := json.Marshal(p.Days)
	if err != nil {
		return nil, fmt.Errorf("encode plan days: %w", err)
	}

	row := planRow{
		ID:           uuid.NewString(),
		Topic:        p.Topic,
		Mode:         string(p.Mode),
		Title:        p.Title,
		Description:  p.Description,
		DurationDays: p.DurationDays,
		Days:         string(days),
		CreatedAt:    r.now(),
	}

	query := `
		INSERT INTO reading_plans (id, topic, mode, title, description, duration_days, days, created_at)
		VALUES (:id, :topic, :mode, :title, :description, :duration_days, :days, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return nil, fmt.Errorf("save reading plan: %w", err)
	}
	return row.plan()
}

func (r *repository) GetPlan(ctx context.Context, id string) (*ReadingPlan, error) {
	query := r.db.Rebind(`
		SELECT id, topic, mode, title, description, duration_days, days, created_at
		FROM reading_plans
		WHERE id = ?
	`)

	var row planRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reading plan %s: %w", id, err)
	}
	return row.plan()
}

func (r *repository) DigestSent(ctx context.Context, date string) (bool, error) {
	var exists bool
	query := r.db.Rebind(`SELECT EXISTS (SELECT 1 FROM digest_deliveries WHERE date = ?)`)
	if err := r.db.GetContext(ctx, &exists, query, date); err != nil {
		return false, fmt.Errorf("check digest %s: %w", date, err)
	}
	return exists, nil
}

func (r *repository) RecordDigest(ctx context.Context, date string, recipients int) error {
	query := r.db.Rebind(`
		INSERT INTO digest_deliveries (date, recipients, sent_at)
		VALUES (?, ?, ?)
		ON CONFLICT (date) DO NOTHING`)
	if _, err := r.db.ExecContext(ctx, query, date, recipients, r.now()); err != nil {
		return fmt.Errorf("record digest %s: %w", date, err)
	}
	return nil
}

func (r *repository) stamp(c *DailyContent) {
	now := r.now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func (row planRow) plan() (*ReadingPlan, error) {
	var days []generation.PlanDay
	if err := json.Unmarshal([]byte(row.Days), &days); err != nil {
		return nil, fmt.Errorf("decode plan %s days: %w", row.ID, err)
	}
	return &ReadingPlan{
		ID:           row.ID,
		Topic:        row.Topic,
		Mode:         generation.PlanMode(row.Mode),
		Title:        row.Title,
		Description:  row.Description,
		DurationDays: row.DurationDays,
		Days:         days,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
