package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	// the email column carries a unique index, but check upfront too so the
	// caller gets a conflict instead of a raw constraint violation
	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO users (name, surname, email, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`,
		user.Name, user.Surname, user.Email, user.PasswordHash, user.CreatedAt,
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

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("user.id", id))

	user.ID = id
	return &user, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, surname, email, password_hash, created_at FROM users WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users, err := r.rows2users(rows)
	if err != nil {
		return nil, err
	}
	if len(users) != 1 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByEmail")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, surname, email, password_hash, created_at FROM users WHERE email = $1;`,
		email,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users, err := r.rows2users(rows)
	if err != nil {
		return nil, err
	}
	if len(users) != 1 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}

func (r *Repo) List(ctx context.Context) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, surname, email, password_hash, created_at FROM users ORDER BY id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.rows2users(rows)
}

func (r *Repo) Update(ctx context.Context, user *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", user.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE users SET name = $1, surname = $2, email = $3, password_hash = $4 WHERE id = $5;`,
		user.Name, user.Surname, user.Email, user.PasswordHash, user.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete removes the user row; dependent rows (conversations, messages,
// metrics, progress, goals, recommendations) go with it via FK cascade.
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM users WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *Repo) rows2users(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if users == nil {
		users = make([]User, 0)
	}
	return users, nil
}
