package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const reviewColumns = "id, file_path, file_name, folder_path, parsed_name, parsed_version, parsed_vendor, suggested_json, confidence, status, manual_json, reviewed_by, created_at, reviewed_at"

func scanReviewItem(scanner interface{ Scan(dest ...any) error }) (*ReviewItem, error) {
	var (
		id            int64
		filePath      string
		fileName      string
		folderPath    string
		parsedName    sql.NullString
		parsedVersion sql.NullString
		parsedVendor  sql.NullString
		suggested     sql.NullString
		confidence    sql.NullFloat64
		status        string
		manual        sql.NullString
		reviewedBy    sql.NullString
		createdRaw    string
		reviewedRaw   sql.NullString
	)
	if err := scanner.Scan(&id, &filePath, &fileName, &folderPath, &parsedName, &parsedVersion, &parsedVendor, &suggested, &confidence, &status, &manual, &reviewedBy, &createdRaw, &reviewedRaw); err != nil {
		return nil, err
	}
	item := &ReviewItem{
		ID:            id,
		FilePath:      filePath,
		FileName:      fileName,
		FolderPath:    folderPath,
		ParsedName:    parsedName.String,
		ParsedVersion: parsedVersion.String,
		ParsedVendor:  parsedVendor.String,
		SuggestedJSON: suggested.String,
		Confidence:    confidence.Float64,
		Status:        status,
		ManualJSON:    manual.String,
		ReviewedBy:    reviewedBy.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if reviewedRaw.Valid {
		if reviewed, err := parseTimeString(reviewedRaw.String); err == nil {
			item.ReviewedAt = &reviewed
		}
	}
	return item, nil
}

// UpsertReviewItem parks a low-confidence match for review. A re-scan of the
// same file refreshes the parsed fields and suggestion and reopens the item.
func (s *Store) UpsertReviewItem(ctx context.Context, item *ReviewItem) error {
	if item == nil {
		return errors.New("review item is nil")
	}
	now := time.Now().UTC()

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO review_queue (
            file_path, file_name, folder_path, parsed_name, parsed_version,
            parsed_vendor, suggested_json, confidence, status, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(file_path) DO UPDATE SET
            parsed_name = excluded.parsed_name,
            parsed_version = excluded.parsed_version,
            parsed_vendor = excluded.parsed_vendor,
            suggested_json = excluded.suggested_json,
            confidence = excluded.confidence,
            status = excluded.status,
            reviewed_by = NULL,
            reviewed_at = NULL`,
		item.FilePath,
		item.FileName,
		item.FolderPath,
		nullableString(item.ParsedName),
		nullableString(item.ParsedVersion),
		nullableString(item.ParsedVendor),
		nullableString(item.SuggestedJSON),
		item.Confidence,
		ReviewPending,
		timestamp(now),
	)
	if err != nil {
		return fmt.Errorf("upsert review item: %w", err)
	}

	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+reviewColumns+` FROM review_queue WHERE file_path = ?`, item.FilePath)
	stored, err := scanReviewItem(row)
	if err != nil {
		return fmt.Errorf("reload review item: %w", err)
	}
	*item = *stored
	return nil
}

// GetReviewItem fetches a review item by identifier, or nil.
func (s *Store) GetReviewItem(ctx context.Context, id int64) (*ReviewItem, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+reviewColumns+` FROM review_queue WHERE id = ?`, id)
	item, err := scanReviewItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review item: %w", err)
	}
	return item, nil
}

// ListReviewItems returns review items, optionally filtered by status,
// oldest first.
func (s *Store) ListReviewItems(ctx context.Context, status string) ([]*ReviewItem, error) {
	query := `SELECT ` + reviewColumns + ` FROM review_queue`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list review items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*ReviewItem
	for rows.Next() {
		item, err := scanReviewItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review items: %w", err)
	}
	return items, nil
}

// CloseReviewItem moves a pending item to a terminal status, recording the
// reviewer and optional manual metadata.
func (s *Store) CloseReviewItem(ctx context.Context, id int64, status, reviewer, manualJSON string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE review_queue SET status = ?, reviewed_by = ?, manual_json = ?, reviewed_at = ? WHERE id = ?`,
		status,
		nullableString(reviewer),
		nullableString(manualJSON),
		timestamp(time.Now().UTC()),
		id,
	)
	if err != nil {
		return fmt.Errorf("close review item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("close review item %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// CountReviewItems returns the number of review items with the given status,
// or all items when status is empty.
func (s *Store) CountReviewItems(ctx context.Context, status string) (int64, error) {
	query := `SELECT COUNT(1) FROM review_queue`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	var count int64
	if err := s.db.QueryRowContext(ensureContext(ctx), query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count review items: %w", err)
	}
	return count, nil
}
