package store

import (
	"context"
	"database/sql"

	"reelsmith/types"
)

const sessionColumns = `id, user_email, name, description, status, user_prompt,
	video_prompt, audio_prompt, output_video_path, total_files, created_at, updated_at`

// CreateSession inserts a video session in draft state.
func (s *Store) CreateSession(ctx context.Context, sess *types.Session) (*types.Session, error) {
	if sess.Status == "" {
		sess.Status = types.SessionDraft
	}
	createdAt := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (user_email, name, description, status, user_prompt,
			video_prompt, audio_prompt, output_video_path, total_files, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.UserEmail, nullString(sess.Name), nullString(sess.Description),
		string(sess.Status), nullString(sess.UserPrompt), nullString(sess.VideoPrompt),
		nullString(sess.AudioPrompt), nullString(sess.OutputVideoPath), sess.TotalFiles, createdAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *sess
	out.ID = id
	out.CreatedAt = parseTime(createdAt)
	return &out, nil
}

// GetSession fetches a session by id.
func (s *Store) GetSession(ctx context.Context, id int64) (*types.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// ListSessions returns sessions newest first; email filters by user when non-empty.
func (s *Store) ListSessions(ctx context.Context, email string, skip, limit int) ([]*types.Session, error) {
	if limit <= 0 {
		limit = 50
	}
	var (
		rows *sql.Rows
		err  error
	)
	if email != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+sessionColumns+` FROM sessions WHERE user_email = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
			email, limit, skip)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+sessionColumns+` FROM sessions ORDER BY id DESC LIMIT ? OFFSET ?`, limit, skip)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*types.Session
	for rows.Next() {
		sess, err := scanSessionRows(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// CountSessions returns the total session count, optionally per user.
func (s *Store) CountSessions(ctx context.Context, email string) (int, error) {
	var n int
	var err error
	if email != "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sessions WHERE user_email = ?`, email).Scan(&n)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n)
	}
	return n, err
}

// SessionUpdate carries optional field changes for UpdateSession.
type SessionUpdate struct {
	Name            *string
	Description     *string
	Status          *types.SessionStatus
	UserPrompt      *string
	VideoPrompt     *string
	AudioPrompt     *string
	OutputVideoPath *string
	TotalFiles      *int
}

// UpdateSession applies the non-nil fields of upd and bumps updated_at.
func (s *Store) UpdateSession(ctx context.Context, id int64, upd SessionUpdate) (*types.Session, error) {
	set := "updated_at = ?"
	args := []any{now()}
	if upd.Name != nil {
		set += ", name = ?"
		args = append(args, *upd.Name)
	}
	if upd.Description != nil {
		set += ", description = ?"
		args = append(args, *upd.Description)
	}
	if upd.Status != nil {
		set += ", status = ?"
		args = append(args, string(*upd.Status))
	}
	if upd.UserPrompt != nil {
		set += ", user_prompt = ?"
		args = append(args, *upd.UserPrompt)
	}
	if upd.VideoPrompt != nil {
		set += ", video_prompt = ?"
		args = append(args, *upd.VideoPrompt)
	}
	if upd.AudioPrompt != nil {
		set += ", audio_prompt = ?"
		args = append(args, *upd.AudioPrompt)
	}
	if upd.OutputVideoPath != nil {
		set += ", output_video_path = ?"
		args = append(args, *upd.OutputVideoPath)
	}
	if upd.TotalFiles != nil {
		set += ", total_files = ?"
		args = append(args, *upd.TotalFiles)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetSession(ctx, id)
}

// DeleteSession removes a session row.
func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSession(row *sql.Row) (*types.Session, error) {
	var sess types.Session
	var status, createdAt string
	var name, description, userPrompt, videoPrompt, audioPrompt, outputPath, updatedAt sql.NullString

	err := row.Scan(&sess.ID, &sess.UserEmail, &name, &description, &status, &userPrompt,
		&videoPrompt, &audioPrompt, &outputPath, &sess.TotalFiles, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	fillSession(&sess, status, name, description, userPrompt, videoPrompt, audioPrompt, outputPath, createdAt, updatedAt)
	return &sess, nil
}

func scanSessionRows(rows *sql.Rows) (*types.Session, error) {
	var sess types.Session
	var status, createdAt string
	var name, description, userPrompt, videoPrompt, audioPrompt, outputPath, updatedAt sql.NullString

	if err := rows.Scan(&sess.ID, &sess.UserEmail, &name, &description, &status, &userPrompt,
		&videoPrompt, &audioPrompt, &outputPath, &sess.TotalFiles, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	fillSession(&sess, status, name, description, userPrompt, videoPrompt, audioPrompt, outputPath, createdAt, updatedAt)
	return &sess, nil
}

func fillSession(sess *types.Session, status string, name, description, userPrompt, videoPrompt, audioPrompt, outputPath sql.NullString, createdAt string, updatedAt sql.NullString) {
	sess.Status = types.SessionStatus(status)
	sess.Name = name.String
	sess.Description = description.String
	sess.UserPrompt = userPrompt.String
	sess.VideoPrompt = videoPrompt.String
	sess.AudioPrompt = audioPrompt.String
	sess.OutputVideoPath = outputPath.String
	sess.CreatedAt = parseTime(createdAt)
	if updatedAt.Valid {
		sess.UpdatedAt = parseTime(updatedAt.String)
	}
}
