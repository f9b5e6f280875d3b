package store

import (
	"context"
	"database/sql"

	"reelsmith/types"
)

const fileColumns = `id, user_email, session_id, original_filename, object_key, bucket,
	size, content_type, category, public_url, description, is_public, created_at`

// CreateFile inserts an uploaded-file record.
func (s *Store) CreateFile(ctx context.Context, f *types.StoredFile) (*types.StoredFile, error) {
	createdAt := now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO files (user_email, session_id, original_filename, object_key, bucket,
			size, content_type, category, public_url, description, is_public, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(f.UserEmail), nullInt(f.SessionID), f.OriginalFilename, f.ObjectKey,
		f.Bucket, f.Size, nullString(f.ContentType), nullString(f.Category),
		nullString(f.PublicURL), nullString(f.Description), boolToInt(f.IsPublic), createdAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *f
	out.ID = id
	out.CreatedAt = parseTime(createdAt)
	return &out, nil
}

// GetFile fetches a file record by id.
func (s *Store) GetFile(ctx context.Context, id int64) (*types.StoredFile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = ?`, id)
	f, err := scanFileRow(row)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListFilesBySession returns a session's file records with pagination.
func (s *Store) ListFilesBySession(ctx context.Context, sessionID int64, skip, limit int) ([]*types.StoredFile, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryFiles(ctx,
		`SELECT `+fileColumns+` FROM files WHERE session_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
		sessionID, limit, skip)
}

// CountFilesBySession returns the number of files linked to a session.
func (s *Store) CountFilesBySession(ctx context.Context, sessionID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM files WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// ListFilesByUser returns a user's file records.
func (s *Store) ListFilesByUser(ctx context.Context, email string) ([]*types.StoredFile, error) {
	return s.queryFiles(ctx,
		`SELECT `+fileColumns+` FROM files WHERE user_email = ? ORDER BY id DESC`, email)
}

// DeleteFile removes a file record.
func (s *Store) DeleteFile(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
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

func (s *Store) queryFiles(ctx context.Context, query string, args ...any) ([]*types.StoredFile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*types.StoredFile
	for rows.Next() {
		var f types.StoredFile
		var createdAt string
		var userEmail, contentType, category, publicURL, description sql.NullString
		var sessionID sql.NullInt64
		var isPublic int
		if err := rows.Scan(&f.ID, &userEmail, &sessionID, &f.OriginalFilename, &f.ObjectKey,
			&f.Bucket, &f.Size, &contentType, &category, &publicURL, &description,
			&isPublic, &createdAt); err != nil {
			return nil, err
		}
		f.UserEmail = userEmail.String
		f.SessionID = sessionID.Int64
		f.ContentType = contentType.String
		f.Category = category.String
		f.PublicURL = publicURL.String
		f.Description = description.String
		f.IsPublic = isPublic == 1
		f.CreatedAt = parseTime(createdAt)
		files = append(files, &f)
	}
	return files, rows.Err()
}

func scanFileRow(row *sql.Row) (*types.StoredFile, error) {
	var f types.StoredFile
	var createdAt string
	var userEmail, contentType, category, publicURL, description sql.NullString
	var sessionID sql.NullInt64
	var isPublic int

	err := row.Scan(&f.ID, &userEmail, &sessionID, &f.OriginalFilename, &f.ObjectKey,
		&f.Bucket, &f.Size, &contentType, &category, &publicURL, &description,
		&isPublic, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	f.UserEmail = userEmail.String
	f.SessionID = sessionID.Int64
	f.ContentType = contentType.String
	f.Category = category.String
	f.PublicURL = publicURL.String
	f.Description = description.String
	f.IsPublic = isPublic == 1
	f.CreatedAt = parseTime(createdAt)
	return &f, nil
}
