package store

import (
	"context"
	"database/sql"
	"time"

	"reelsmith/types"
)

const videoColumns = `id, user_email, video_task_id, remote_task_id, status, prompt, model,
	video_url, object_key, file_size, error, created_at, updated_at`

// CreateVideo inserts a video job row and returns it with the assigned id.
func (s *Store) CreateVideo(ctx context.Context, v *types.Video) (*types.Video, error) {
	if v.Status == "" {
		v.Status = types.VideoPending
	}
	createdAt := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO videos (user_email, video_task_id, remote_task_id, status, prompt, model,
			video_url, object_key, file_size, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.UserEmail, v.VideoTaskID, nullString(v.RemoteTaskID), string(v.Status),
		nullString(v.Prompt), nullString(v.Model), nullString(v.VideoURL),
		nullString(v.ObjectKey), nullInt(v.FileSize), nullString(v.Error), createdAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *v
	out.ID = id
	out.CreatedAt = parseTime(createdAt)
	return &out, nil
}

// GetVideo fetches a video by id.
func (s *Store) GetVideo(ctx context.Context, id int64) (*types.Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	return scanVideo(row)
}

// GetVideoByTaskID fetches a video by its job UUID.
func (s *Store) GetVideoByTaskID(ctx context.Context, taskID string) (*types.Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE video_task_id = ?`, taskID)
	return scanVideo(row)
}

// ListVideos returns videos newest first.
func (s *Store) ListVideos(ctx context.Context, skip, limit int) ([]*types.Video, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.queryVideos(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY id DESC LIMIT ? OFFSET ?`, limit, skip)
}

// ListVideosByUser returns all videos for a user email.
func (s *Store) ListVideosByUser(ctx context.Context, email string) ([]*types.Video, error) {
	return s.queryVideos(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE user_email = ? ORDER BY id DESC`, email)
}

// ListStalePending returns pending videos with a remote task id whose last
// update is older than cutoff. Used by the reconciliation job.
func (s *Store) ListStalePending(ctx context.Context, cutoff time.Time) ([]*types.Video, error) {
	return s.queryVideos(ctx, `
		SELECT `+videoColumns+` FROM videos
		WHERE status = ? AND remote_task_id IS NOT NULL AND remote_task_id != ''
		AND COALESCE(updated_at, created_at) < ?`,
		string(types.VideoPending), cutoff.UTC().Format(time.RFC3339))
}

// VideoUpdate carries optional field changes for UpdateVideo.
type VideoUpdate struct {
	Status       *types.VideoStatus
	RemoteTaskID *string
	VideoURL     *string
	ObjectKey    *string
	FileSize     *int64
	Error        *string
}

// UpdateVideo applies the non-nil fields of upd and bumps updated_at.
func (s *Store) UpdateVideo(ctx context.Context, id int64, upd VideoUpdate) (*types.Video, error) {
	set := "updated_at = ?"
	args := []any{now()}
	if upd.Status != nil {
		set += ", status = ?"
		args = append(args, string(*upd.Status))
	}
	if upd.RemoteTaskID != nil {
		set += ", remote_task_id = ?"
		args = append(args, *upd.RemoteTaskID)
	}
	if upd.VideoURL != nil {
		set += ", video_url = ?"
		args = append(args, *upd.VideoURL)
	}
	if upd.ObjectKey != nil {
		set += ", object_key = ?"
		args = append(args, *upd.ObjectKey)
	}
	if upd.FileSize != nil {
		set += ", file_size = ?"
		args = append(args, *upd.FileSize)
	}
	if upd.Error != nil {
		set += ", error = ?"
		args = append(args, *upd.Error)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE videos SET `+set+` WHERE id = ?`, args...)
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
	return s.GetVideo(ctx, id)
}

func (s *Store) queryVideos(ctx context.Context, query string, args ...any) ([]*types.Video, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*types.Video
	for rows.Next() {
		v, err := scanVideoRows(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func scanVideo(row *sql.Row) (*types.Video, error) {
	var v types.Video
	var status, createdAt string
	var remoteTask, prompt, model, videoURL, objectKey, errMsg, updatedAt sql.NullString
	var fileSize sql.NullInt64

	err := row.Scan(&v.ID, &v.UserEmail, &v.VideoTaskID, &remoteTask, &status, &prompt,
		&model, &videoURL, &objectKey, &fileSize, &errMsg, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	fillVideo(&v, status, remoteTask, prompt, model, videoURL, objectKey, errMsg, fileSize, createdAt, updatedAt)
	return &v, nil
}

func scanVideoRows(rows *sql.Rows) (*types.Video, error) {
	var v types.Video
	var status, createdAt string
	var remoteTask, prompt, model, videoURL, objectKey, errMsg, updatedAt sql.NullString
	var fileSize sql.NullInt64

	if err := rows.Scan(&v.ID, &v.UserEmail, &v.VideoTaskID, &remoteTask, &status, &prompt,
		&model, &videoURL, &objectKey, &fileSize, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	fillVideo(&v, status, remoteTask, prompt, model, videoURL, objectKey, errMsg, fileSize, createdAt, updatedAt)
	return &v, nil
}

func fillVideo(v *types.Video, status string, remoteTask, prompt, model, videoURL, objectKey, errMsg sql.NullString, fileSize sql.NullInt64, createdAt string, updatedAt sql.NullString) {
	v.Status = types.VideoStatus(status)
	v.RemoteTaskID = remoteTask.String
	v.Prompt = prompt.String
	v.Model = model.String
	v.VideoURL = videoURL.String
	v.ObjectKey = objectKey.String
	v.FileSize = fileSize.Int64
	v.Error = errMsg.String
	v.CreatedAt = parseTime(createdAt)
	if updatedAt.Valid {
		v.UpdatedAt = parseTime(updatedAt.String)
	}
}
