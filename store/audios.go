package store

import (
	"context"
	"database/sql"

	"reelsmith/config"
	"reelsmith/types"
)

const audioColumns = `id, user_email, text_input, voice_name, language_code, audio_format,
	status, file_path, file_size, duration, created_at, updated_at`

// CreateAudio inserts a TTS request row, applying voice defaults.
func (s *Store) CreateAudio(ctx context.Context, a *types.Audio) (*types.Audio, error) {
	if a.VoiceName == "" {
		a.VoiceName = config.DefaultVoiceName
	}
	if a.LanguageCode == "" {
		a.LanguageCode = config.DefaultLanguageCode
	}
	if a.AudioFormat == "" {
		a.AudioFormat = config.DefaultAudioFormat
	}
	if a.Status == "" {
		a.Status = types.AudioPending
	}
	createdAt := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO audios (user_email, text_input, voice_name, language_code, audio_format,
			status, file_path, file_size, duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserEmail, a.TextInput, a.VoiceName, a.LanguageCode, a.AudioFormat,
		string(a.Status), nullString(a.FilePath), nullInt(a.FileSize), nullInt(a.Duration), createdAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *a
	out.ID = id
	out.CreatedAt = parseTime(createdAt)
	return &out, nil
}

// GetAudio fetches an audio row by id.
func (s *Store) GetAudio(ctx context.Context, id int64) (*types.Audio, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+audioColumns+` FROM audios WHERE id = ?`, id)
	return scanAudio(row)
}

// ListAudios returns audio rows newest first.
func (s *Store) ListAudios(ctx context.Context, skip, limit int) ([]*types.Audio, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryAudios(ctx,
		`SELECT `+audioColumns+` FROM audios ORDER BY id DESC LIMIT ? OFFSET ?`, limit, skip)
}

// ListAudiosByUser returns all audio rows for a user email.
func (s *Store) ListAudiosByUser(ctx context.Context, email string) ([]*types.Audio, error) {
	return s.queryAudios(ctx,
		`SELECT `+audioColumns+` FROM audios WHERE user_email = ? ORDER BY id DESC`, email)
}

// AudioUpdate carries optional field changes for UpdateAudio.
type AudioUpdate struct {
	Status   *types.AudioStatus
	FilePath *string
	FileSize *int64
	Duration *int64
}

// UpdateAudio applies the non-nil fields of upd and bumps updated_at.
func (s *Store) UpdateAudio(ctx context.Context, id int64, upd AudioUpdate) (*types.Audio, error) {
	set := "updated_at = ?"
	args := []any{now()}
	if upd.Status != nil {
		set += ", status = ?"
		args = append(args, string(*upd.Status))
	}
	if upd.FilePath != nil {
		set += ", file_path = ?"
		args = append(args, *upd.FilePath)
	}
	if upd.FileSize != nil {
		set += ", file_size = ?"
		args = append(args, *upd.FileSize)
	}
	if upd.Duration != nil {
		set += ", duration = ?"
		args = append(args, *upd.Duration)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE audios SET `+set+` WHERE id = ?`, args...)
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
	return s.GetAudio(ctx, id)
}

func (s *Store) queryAudios(ctx context.Context, query string, args ...any) ([]*types.Audio, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audios []*types.Audio
	for rows.Next() {
		var a types.Audio
		var status, createdAt string
		var filePath, updatedAt sql.NullString
		var fileSize, duration sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserEmail, &a.TextInput, &a.VoiceName, &a.LanguageCode,
			&a.AudioFormat, &status, &filePath, &fileSize, &duration, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		a.Status = types.AudioStatus(status)
		a.FilePath = filePath.String
		a.FileSize = fileSize.Int64
		a.Duration = duration.Int64
		a.CreatedAt = parseTime(createdAt)
		if updatedAt.Valid {
			a.UpdatedAt = parseTime(updatedAt.String)
		}
		audios = append(audios, &a)
	}
	return audios, rows.Err()
}

func scanAudio(row *sql.Row) (*types.Audio, error) {
	var a types.Audio
	var status, createdAt string
	var filePath, updatedAt sql.NullString
	var fileSize, duration sql.NullInt64

	err := row.Scan(&a.ID, &a.UserEmail, &a.TextInput, &a.VoiceName, &a.LanguageCode,
		&a.AudioFormat, &status, &filePath, &fileSize, &duration, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = types.AudioStatus(status)
	a.FilePath = filePath.String
	a.FileSize = fileSize.Int64
	a.Duration = duration.Int64
	a.CreatedAt = parseTime(createdAt)
	if updatedAt.Valid {
		a.UpdatedAt = parseTime(updatedAt.String)
	}
	return &a, nil
}
