package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/professor/internal/apperr"
	"github.com/starford/professor/internal/models"
)

// Store is the persistence contract the lecture service depends on.
type Store interface {
	Create(ctx context.Context, topic string, outline []string) (*Lecture, error)
	Get(ctx context.Context, id string) (*Lecture, error)
	Update(ctx context.Context, l *Lecture) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]models.LectureSummary, error)
}

var _ Store = (*DB)(nil)

// Create inserts a new session with a random id, positioned on slide 0.
func (db *DB) Create(ctx context.Context, topic string, outline []string) (*Lecture, error) {
	if outline == nil {
		outline = []string{}
	}
	outlineJSON, err := json.Marshal(outline)
	if err != nil {
		return nil, fmt.Errorf("session: marshal outline: %w", err)
	}

	now := time.Now().UTC()
	l := &Lecture{
		ID:             uuid.NewString(),
		Topic:          topic,
		Outline:        outline,
		Slides:         make(map[int]models.Slide),
		KnowledgeLevel: LevelIntermediate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, topic, outline, current_index, knowledge_level,
		                      in_deep_dive, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, 0, ?, ?)
	`, l.ID, topic, string(outlineJSON), string(l.KnowledgeLevel), now, now)
	if err != nil {
		return nil, fmt.Errorf("session: insert: %w", err)
	}
	return l, nil
}

// Get loads a session and all of its slides.
func (db *DB) Get(ctx context.Context, id string) (*Lecture, error) {
	var (
		l           Lecture
		outlineJSON string
		level       string
		inDeepDive  int
		parent      sql.NullInt64
		concept     sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, topic, outline, current_index, knowledge_level, in_deep_dive,
		       deep_dive_parent_index, deep_dive_concept, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&l.ID, &l.Topic, &outlineJSON, &l.CurrentIndex, &level, &inDeepDive,
		&parent, &concept, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}

	if err := json.Unmarshal([]byte(outlineJSON), &l.Outline); err != nil {
		return nil, fmt.Errorf("session: decode outline: %w", err)
	}
	l.KnowledgeLevel = KnowledgeLevel(level)
	l.InDeepDive = inDeepDive != 0
	if parent.Valid {
		p := int(parent.Int64)
		l.DeepDiveParentIndex = &p
	}
	l.DeepDiveConcept = concept.String

	slides, err := db.slides(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Slides = slides
	return &l, nil
}

func (db *DB) slides(ctx context.Context, id string) (map[int]models.Slide, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT slide_index, content, controls FROM slides WHERE session_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("session: slides: %w", err)
	}
	defer rows.Close()

	out := make(map[int]models.Slide)
	for rows.Next() {
		var (
			idx               int
			content, controls string
			s                 models.Slide
		)
		if err := rows.Scan(&idx, &content, &controls); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(content), &s.Content); err != nil {
			return nil, fmt.Errorf("session: decode slide %d: %w", idx, err)
		}
		if err := json.Unmarshal([]byte(controls), &s.Controls); err != nil {
			return nil, fmt.Errorf("session: decode controls %d: %w", idx, err)
		}
		out[idx] = s
	}
	return out, rows.Err()
}

// Update writes the session row and upserts every slide in one transaction.
func (db *DB) Update(ctx context.Context, l *Lecture) error {
	outlineJSON, err := json.Marshal(l.Outline)
	if err != nil {
		return fmt.Errorf("session: marshal outline: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var parent sql.NullInt64
	if l.DeepDiveParentIndex != nil {
		parent = sql.NullInt64{Int64: int64(*l.DeepDiveParentIndex), Valid: true}
	}
	concept := sql.NullString{String: l.DeepDiveConcept, Valid: l.DeepDiveConcept != ""}
	inDeepDive := 0
	if l.InDeepDive {
		inDeepDive = 1
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET topic = ?, outline = ?, current_index = ?, knowledge_level = ?,
		    in_deep_dive = ?, deep_dive_parent_index = ?, deep_dive_concept = ?,
		    updated_at = ?
		WHERE id = ?
	`, l.Topic, string(outlineJSON), l.CurrentIndex, string(l.KnowledgeLevel),
		inDeepDive, parent, concept, now, l.ID)
	if err != nil {
		return fmt.Errorf("session: update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", l.ID, apperr.ErrNotFound)
	}

	if len(l.Slides) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO slides (session_id, slide_index, content, controls)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(session_id, slide_index) DO UPDATE SET
				content  = excluded.content,
				controls = excluded.controls
		`)
		if err != nil {
			return fmt.Errorf("session: prepare slide upsert: %w", err)
		}
		defer stmt.Close()

		for idx, s := range l.Slides {
			content, err := json.Marshal(s.Content)
			if err != nil {
				return fmt.Errorf("session: marshal slide %d content: %w", idx, err)
			}
			controls := s.Controls
			if controls == nil {
				controls = []models.InteractiveControl{}
			}
			controlsJSON, err := json.Marshal(controls)
			if err != nil {
				return fmt.Errorf("session: marshal slide %d controls: %w", idx, err)
			}
			if _, err := stmt.ExecContext(ctx, l.ID, idx, string(content), string(controlsJSON)); err != nil {
				return fmt.Errorf("session: upsert slide %d: %w", idx, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("session: commit: %w", err)
	}
	l.UpdatedAt = now
	return nil
}

// Delete removes a session; its slides go with it.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// List returns sessions, most recently updated first.
func (db *DB) List(ctx context.Context, limit, offset int) ([]models.LectureSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, topic, outline, current_index, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}
	defer rows.Close()

	out := []models.LectureSummary{}
	for rows.Next() {
		var (
			s           models.LectureSummary
			outlineJSON string
			outline     []string
		)
		if err := rows.Scan(&s.ID, &s.Topic, &outlineJSON, &s.CurrentIndex, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(outlineJSON), &outline); err != nil {
			return nil, fmt.Errorf("session: decode outline of %s: %w", s.ID, err)
		}
		s.TotalSlides = len(outline)
		out = append(out, s)
	}
	return out, rows.Err()
}
