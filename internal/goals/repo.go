package goals

import (
	"context"
	"errors"
	"time"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrGoalNotFound = errors.New("goal not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, goal FitnessGoal) (_ *FitnessGoal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", goal.UserID))

	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO fitness_goals (user_id, description, target_date, progress, created_at)
			VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`,
		goal.UserID, goal.Description, goal.TargetDate, goal.Progress, goal.CreatedAt,
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

	if err := rows.Scan(&goal.ID); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *Repo) ListByUserID(ctx context.Context, userID int) (_ []FitnessGoal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.listByUserID")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, description, target_date, progress, created_at
			FROM fitness_goals
			WHERE user_id = $1
		ORDER BY id;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2goals(rows)
}

// SetProgress updates the completion percentage of the user's goal and
// returns the updated row. The user id is part of the predicate so one user
// cannot touch another's goal.
func (r *Repo) SetProgress(ctx context.Context, userID, goalID, progress int) (_ *FitnessGoal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.setProgress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("user.id", userID),
		attribute.Int("goal.id", goalID),
	)

	rows, err := r.db.Query(
		ctx,
		`UPDATE fitness_goals SET progress = $1
			WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, description, target_date, progress, created_at;`,
		progress, goalID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goalsList, err := r.rows2goals(rows)
	if err != nil {
		return nil, err
	}
	if len(goalsList) == 0 {
		return nil, ErrGoalNotFound
	}
	return &goalsList[0], nil
}

func (r *Repo) rows2goals(rows pgx.Rows) ([]FitnessGoal, error) {
	var goalsList []FitnessGoal
	for rows.Next() {
		var g FitnessGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Description, &g.TargetDate, &g.Progress, &g.CreatedAt); err != nil {
			return nil, err
		}
		goalsList = append(goalsList, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if goalsList == nil {
		goalsList = make([]FitnessGoal, 0)
	}
	return goalsList, nil
}
