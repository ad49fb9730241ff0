package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var ErrWorkoutNotFound = errors.New("workout not found")

const (
	cacheSizeBytes  = 512 * 1024
	catalogCacheKey = "workouts-all"
	DefaultCacheTTL = 30 * time.Minute
)

// Repo reads the workout catalog. The full catalog is cached in memory
// since it changes only via migrations.
type Repo struct {
	db       *pgxpool.Pool
	cache    *freecache.Cache
	cacheTTL time.Duration
}

func NewRepo(db *pgxpool.Pool, cacheTTL time.Duration) *Repo {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Repo{
		db:       db,
		cache:    freecache.NewCache(cacheSizeBytes),
		cacheTTL: cacheTTL,
	}
}

func (r *Repo) ListAll(ctx context.Context) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if cached, cacheErr := r.cache.Get([]byte(catalogCacheKey)); cacheErr == nil {
		var workoutsList []Workout
		if unmarshalErr := json.Unmarshal(cached, &workoutsList); unmarshalErr == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return workoutsList, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, duration, calories, difficulty, equipment, target_muscles, steps
			FROM workouts
		ORDER BY id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workoutsList, err := r.rows2workouts(rows)
	if err != nil {
		return nil, err
	}

	if catalogJson, err := json.Marshal(workoutsList); err == nil {
		if err := r.cache.Set([]byte(catalogCacheKey), catalogJson, int(r.cacheTTL.Seconds())); err != nil {
			log.Errorf("workouts cache, set catalog: %s", err)
		}
	}

	return workoutsList, nil
}

func (r *Repo) GetByName(ctx context.Context, name string) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getByName")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("workout.name", name))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, duration, calories, difficulty, equipment, target_muscles, steps
			FROM workouts
			WHERE name = $1;`,
		name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workoutsList, err := r.rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workoutsList) == 0 {
		return nil, ErrWorkoutNotFound
	}
	return &workoutsList[0], nil
}

func (r *Repo) rows2workouts(rows pgx.Rows) ([]Workout, error) {
	var workoutsList []Workout
	for rows.Next() {
		var w Workout
		if err := rows.Scan(
			&w.ID, &w.Name, &w.Duration, &w.Calories,
			&w.Difficulty, &w.Equipment, &w.TargetMuscles, &w.Steps,
		); err != nil {
			return nil, err
		}
		workoutsList = append(workoutsList, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if workoutsList == nil {
		workoutsList = make([]Workout, 0)
	}
	return workoutsList, nil
}
