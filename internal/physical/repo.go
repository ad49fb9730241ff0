package physical

import (
	"context"
	"errors"
	"time"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrMetricsNotFound = errors.New("physical metrics not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Save upserts the user's single metrics row and returns the stored state.
func (r *Repo) Save(ctx context.Context, m Metrics) (_ *Metrics, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.physical.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", m.UserID))

	m.MeasuredAt = time.Now()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO physical_metrics
			(user_id, age, gender, weight, height, bmi, body_fat, muscle_mass, measured_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			weight = EXCLUDED.weight,
			height = EXCLUDED.height,
			bmi = EXCLUDED.bmi,
			body_fat = EXCLUDED.body_fat,
			muscle_mass = EXCLUDED.muscle_mass,
			measured_at = EXCLUDED.measured_at
		RETURNING id;`,
		m.UserID, m.Age, m.Gender, m.Weight, m.Height, m.BMI, m.BodyFat, m.MuscleMass, m.MeasuredAt,
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

	if err := rows.Scan(&m.ID); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Get(ctx context.Context, userID int) (_ *Metrics, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.physical.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, age, gender, weight, height, bmi, body_fat, muscle_mass, measured_at
			FROM physical_metrics
			WHERE user_id = $1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metrics, err := r.rows2metrics(rows)
	if err != nil {
		return nil, err
	}
	if len(metrics) != 1 {
		return nil, ErrMetricsNotFound
	}
	return &metrics[0], nil
}

func (r *Repo) rows2metrics(rows pgx.Rows) ([]Metrics, error) {
	var metrics []Metrics
	for rows.Next() {
		var m Metrics
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Age, &m.Gender, &m.Weight,
			&m.Height, &m.BMI, &m.BodyFat, &m.MuscleMass, &m.MeasuredAt,
		); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if metrics == nil {
		metrics = make([]Metrics, 0)
	}
	return metrics, nil
}
