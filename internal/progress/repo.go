package progress

import (
	"context"
	"errors"
	"time"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrNoProgress = errors.New("no progress entries found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, entry Entry) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", entry.UserID))

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO progress_entries
			(user_id, weight, height, bmi, body_fat, muscle_mass, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;`,
		entry.UserID, entry.Weight, entry.Height,
		entry.BMI, entry.BodyFat, entry.MuscleMass, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	if err := rows.Scan(&entry.ID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByUserID returns the user's full progress log in append order.
func (r *Repo) ListByUserID(ctx context.Context, userID int) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.listByUserID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, weight, height, bmi, body_fat, muscle_mass, notes, created_at
			FROM progress_entries
			WHERE user_id = $1
		ORDER BY id;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2entries(rows)
}

func (r *Repo) rows2entries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Weight, &e.Height,
			&e.BMI, &e.BodyFat, &e.MuscleMass, &e.Notes, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if entries == nil {
		entries = make([]Entry, 0)
	}
	return entries, nil
}
