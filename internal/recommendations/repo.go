package recommendations

import (
	"context"
	"errors"
	"time"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, rec Recommendation) (_ *Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recommendations.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", rec.UserID))

	if rec.Status == "" {
		rec.Status = StatusActive
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO recommendations (user_id, workout_name, status, created_at)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		rec.UserID, rec.WorkoutName, rec.Status, rec.CreatedAt,
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

	if err := rows.Scan(&rec.ID); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) ActiveByUserID(ctx context.Context, userID int) (_ []Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recommendations.activeByUserID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, workout_name, status, created_at
			FROM recommendations
			WHERE user_id = $1 AND status = $2
		ORDER BY id;`,
		userID, StatusActive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2recommendations(rows)
}

func (r *Repo) AllByUserID(ctx context.Context, userID int) (_ []Recommendation, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recommendations.allByUserID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, workout_name, status, created_at
			FROM recommendations
			WHERE user_id = $1
		ORDER BY id;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2recommendations(rows)
}

// DeactivateAllForUser retires the user's whole active set. Zero affected
// rows is fine, the user may not have had recommendations yet.
func (r *Repo) DeactivateAllForUser(ctx context.Context, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.recommendations.deactivateAllForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	_, err = r.db.Exec(
		ctx,
		`UPDATE recommendations SET status = $1 WHERE user_id = $2 AND status = $3;`,
		StatusInactive, userID, StatusActive,
	)
	return err
}

func (r *Repo) rows2recommendations(rows pgx.Rows) ([]Recommendation, error) {
	var recs []Recommendation
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.WorkoutName, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if recs == nil {
		recs = make([]Recommendation, 0)
	}
	return recs, nil
}
