package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spigell/interview-coach/internal/interview"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyEvaluated = errors.New("session already evaluated")
)

// Fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	mode             TEXT NOT NULL,
	context_data     TEXT NOT NULL,
	questions        TEXT NOT NULL,
	answers          TEXT NOT NULL,
	overall_feedback TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL,
	evaluated_at     TEXT
);
CREATE TABLE IF NOT EXISTS resumes (
	id          TEXT PRIMARY KEY,
	file_name   TEXT NOT NULL,
	text        TEXT NOT NULL,
	profile     TEXT,
	uploaded_at TEXT NOT NULL
);`

// SQLiteStore persists interview sessions and résumés. Questions, answers and
// profiles are stored as JSON columns.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveSession inserts a new session.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *interview.Session) error {
	questions, err := json.Marshal(session.Questions)
	if err != nil {
		return fmt.Errorf("encoding questions: %w", err)
	}
	answers, err := json.Marshal(session.Answers)
	if err != nil {
		return fmt.Errorf("encoding answers: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, mode, context_data, questions, answers, overall_feedback, created_at, evaluated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, string(session.Mode), session.ContextData, string(questions), string(answers),
		session.OverallFeedback, session.CreatedAt.UTC().Format(timeLayout), formatOptional(session.EvaluatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", session.ID, err)
	}
	return nil
}

// Session loads one session by id.
func (s *SQLiteStore) Session(ctx context.Context, id string) (*interview.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, mode, context_data, questions, answers, overall_feedback, created_at, evaluated_at
		 FROM sessions WHERE id = ?`, id)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return session, nil
}

// Sessions lists every session, newest first.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]*interview.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, context_data, questions, answers, overall_feedback, created_at, evaluated_at
		 FROM sessions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*interview.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("reading session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// SaveEvaluation stores the answers, overall feedback and evaluation time of
// an evaluated session in one statement. Only a pending session is updated.
func (s *SQLiteStore) SaveEvaluation(ctx context.Context, session *interview.Session) error {
	if session.EvaluatedAt == nil {
		return fmt.Errorf("session %s has not been evaluated", session.ID)
	}

	answers, err := json.Marshal(session.Answers)
	if err != nil {
		return fmt.Errorf("encoding answers: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET answers = ?, overall_feedback = ?, evaluated_at = ?
		 WHERE id = ? AND evaluated_at IS NULL`,
		string(answers), session.OverallFeedback, formatOptional(session.EvaluatedAt), session.ID,
	)
	if err != nil {
		return fmt.Errorf("saving evaluation of %s: %w", session.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving evaluation of %s: %w", session.ID, err)
	}
	if n == 1 {
		return nil
	}

	if _, err := s.Session(ctx, session.ID); err != nil {
		return err
	}
	return fmt.Errorf("session %s: %w", session.ID, ErrAlreadyEvaluated)
}

// SaveResume inserts a new résumé.
func (s *SQLiteStore) SaveResume(ctx context.Context, resume *interview.Resume) error {
	profile, err := encodeProfile(resume.Profile)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resumes (id, file_name, text, profile, uploaded_at) VALUES (?, ?, ?, ?, ?)`,
		resume.ID, resume.FileName, resume.Text, profile, resume.UploadedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving resume %s: %w", resume.ID, err)
	}
	return nil
}

// Resume loads one résumé by id.
func (s *SQLiteStore) Resume(ctx context.Context, id string) (*interview.Resume, error) {
	var (
		resume     interview.Resume
		profile    sql.NullString
		uploadedAt string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, file_name, text, profile, uploaded_at FROM resumes WHERE id = ?`, id,
	).Scan(&resume.ID, &resume.FileName, &resume.Text, &profile, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading resume %s: %w", id, err)
	}

	if resume.UploadedAt, err = time.Parse(timeLayout, uploadedAt); err != nil {
		return nil, fmt.Errorf("resume %s upload time: %w", id, err)
	}
	if profile.Valid && profile.String != "" {
		resume.Profile = &interview.Profile{}
		if err := json.Unmarshal([]byte(profile.String), resume.Profile); err != nil {
			return nil, fmt.Errorf("decoding profile of %s: %w", id, err)
		}
	}

	return &resume, nil
}

// UpdateProfile attaches an extracted profile to a stored résumé.
func (s *SQLiteStore) UpdateProfile(ctx context.Context, resumeID string, profile *interview.Profile) error {
	encoded, err := encodeProfile(profile)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE resumes SET profile = ? WHERE id = ?`, encoded, resumeID)
	if err != nil {
		return fmt.Errorf("updating profile of %s: %w", resumeID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("resume %s: %w", resumeID, ErrNotFound)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*interview.Session, error) {
	var (
		session     interview.Session
		mode        string
		questions   string
		answers     string
		createdAt   string
		evaluatedAt sql.NullString
	)

	if err := row.Scan(&session.ID, &mode, &session.ContextData, &questions, &answers,
		&session.OverallFeedback, &createdAt, &evaluatedAt); err != nil {
		return nil, err
	}

	session.Mode = interview.Mode(mode)
	if err := json.Unmarshal([]byte(questions), &session.Questions); err != nil {
		return nil, fmt.Errorf("decoding questions: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &session.Answers); err != nil {
		return nil, fmt.Errorf("decoding answers: %w", err)
	}

	var err error
	if session.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("decoding created_at: %w", err)
	}
	if evaluatedAt.Valid {
		t, err := time.Parse(timeLayout, evaluatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("decoding evaluated_at: %w", err)
		}
		session.EvaluatedAt = &t
	}

	return &session, nil
}

func formatOptional(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func encodeProfile(p *interview.Profile) (any, error) {
	if p == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding profile: %w", err)
	}
	return string(encoded), nil
}
