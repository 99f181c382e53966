package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Repository persists users, face embeddings and attendance in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser registers a new user. Batch falls back to the source default.
func (r *Repository) CreateUser(ctx context.Context, name, email, department, batch string) (User, error) {
	if name == "" {
		return User{}, errors.New("name required")
	}
	if batch == "" {
		batch = "2"
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, department, batch)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, name, email, department, batch)
	u := User{Name: name, Email: email, Department: department, Batch: batch}
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return User{}, err
	}
	return u, nil
}

// GetUser returns a single user, or nil when unknown.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, department, batch, image_url, face_enrolled, enrolled_at, created_at
		FROM users WHERE id = $1
	`, id)
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Department, &u.Batch, &u.ImageURL, &u.Enrolled, &u.EnrolledAt, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, department, batch, image_url, face_enrolled, enrolled_at, created_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Department, &u.Batch, &u.ImageURL, &u.Enrolled, &u.EnrolledAt, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SetUserImage stores the enrollment image URL.
func (r *Repository) SetUserImage(ctx context.Context, id int64, imageURL string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET image_url = $2 WHERE id = $1`, id, imageURL)
	return err
}

// AddFace stores one reference embedding for a user and marks the user
// enrolled.
func (r *Repository) AddFace(ctx context.Context, userID int64, embedding []float32) error {
	if len(embedding) == 0 {
		return errors.New("empty embedding")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO faces (user_id, embedding) VALUES ($1, $2)
	`, userID, pgvector.NewVector(embedding)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET face_enrolled = TRUE, enrolled_at = NOW() WHERE id = $1
	`, userID); err != nil {
		return err
	}
	return tx.Commit()
}

// EnrolledFace is one (user, embedding) pair from the enrollment store.
type EnrolledFace struct {
	UserID    int64
	Name      string
	Embedding []float32
}

// ListEnrolledFaces returns every stored reference embedding joined with its
// user, ordered by user then face id. Users without faces do not appear.
func (r *Repository) ListEnrolledFaces(ctx context.Context) ([]EnrolledFace, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.user_id, u.name, f.embedding
		FROM faces f
		JOIN users u ON u.id = f.user_id
		ORDER BY f.user_id, f.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faces []EnrolledFace
	for rows.Next() {
		var f EnrolledFace
		var vec pgvector.Vector
		if err := rows.Scan(&f.UserID, &f.Name, &vec); err != nil {
			return nil, err
		}
		f.Embedding = vec.Slice()
		faces = append(faces, f)
	}
	return faces, rows.Err()
}

// Fetch implements Store.
func (r *Repository) Fetch(ctx context.Context, userID int64, day string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, to_char(day, 'YYYY-MM-DD'), login_time, logout_time, duration_seconds
		FROM attendance
		WHERE user_id = $1 AND day = $2
	`, userID, day)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// SaveLogin implements Store. A concurrent duplicate insert is a no-op so
// the first login of the day always wins.
func (r *Repository) SaveLogin(ctx context.Context, userID int64, day string, t time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (user_id, day, login_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, day) DO NOTHING
	`, userID, day, t)
	return err
}

// SaveLogout implements Store.
func (r *Repository) SaveLogout(ctx context.Context, userID int64, day string, t time.Time, d time.Duration) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance
		SET logout_time = $3, duration_seconds = $4
		WHERE user_id = $1 AND day = $2
	`, userID, day, t, int64(d.Seconds()))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DayEntry joins a record with its user for reporting.
type DayEntry struct {
	User   User
	Record Record
}

// ListDay returns all records for one calendar day, ordered by user.
func (r *Repository) ListDay(ctx context.Context, day string) ([]DayEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.department, u.batch,
		       a.user_id, to_char(a.day, 'YYYY-MM-DD'), a.login_time, a.logout_time, a.duration_seconds
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE a.day = $1
		ORDER BY u.id
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DayEntry
	for rows.Next() {
		var e DayEntry
		var logout sql.NullTime
		var seconds sql.NullInt64
		if err := rows.Scan(
			&e.User.ID, &e.User.Name, &e.User.Email, &e.User.Department, &e.User.Batch,
			&e.Record.UserID, &e.Record.Day, &e.Record.Login, &logout, &seconds,
		); err != nil {
			return nil, err
		}
		applyNullable(&e.Record, logout, seconds)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var logout sql.NullTime
	var seconds sql.NullInt64
	if err := row.Scan(&rec.UserID, &rec.Day, &rec.Login, &logout, &seconds); err != nil {
		return nil, err
	}
	applyNullable(&rec, logout, seconds)
	return &rec, nil
}

func applyNullable(rec *Record, logout sql.NullTime, seconds sql.NullInt64) {
	if logout.Valid {
		t := logout.Time
		rec.Logout = &t
	}
	if seconds.Valid {
		d := time.Duration(seconds.Int64) * time.Second
		rec.Duration = &d
	}
}
