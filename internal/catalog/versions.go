package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const versionColumns = "id, product_id, version_name, file_name, file_path, file_size, release_date, is_portable, created_at"

func scanVersion(scanner interface{ Scan(dest ...any) error }) (*Version, error) {
	var (
		id          int64
		productID   int64
		versionName sql.NullString
		fileName    string
		filePath    string
		fileSize    sql.NullInt64
		releaseRaw  string
		isPortable  sql.NullInt64
		createdRaw  string
	)
	if err := scanner.Scan(&id, &productID, &versionName, &fileName, &filePath, &fileSize, &releaseRaw, &isPortable, &createdRaw); err != nil {
		return nil, err
	}
	version := &Version{
		ID:          id,
		ProductID:   productID,
		VersionName: versionName.String,
		FileName:    fileName,
		FilePath:    filePath,
		FileSize:    fileSize.Int64,
		IsPortable:  isPortable.Valid && isPortable.Int64 != 0,
	}
	if released, err := parseTimeString(releaseRaw); err == nil {
		version.ReleaseDate = released
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		version.CreatedAt = created
	}
	return version, nil
}

func createVersion(ctx context.Context, q querier, version *Version) error {
	if version == nil {
		return errors.New("version is nil")
	}
	now := time.Now().UTC()
	version.CreatedAt = now
	if version.ReleaseDate.IsZero() {
		version.ReleaseDate = now
	}

	res, err := q.ExecContext(
		ctx,
		`INSERT INTO versions (
            product_id, version_name, file_name, file_path, file_size,
            release_date, is_portable, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		version.ProductID,
		nullableString(version.VersionName),
		version.FileName,
		version.FilePath,
		version.FileSize,
		timestamp(version.ReleaseDate),
		boolToInt(version.IsPortable),
		timestamp(now),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	version.ID = id
	return nil
}

func getVersionByFilePath(ctx context.Context, q querier, filePath string) (*Version, error) {
	row := q.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM versions WHERE file_path = ?`, filePath)
	version, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get version by path: %w", err)
	}
	return version, nil
}

// CreateVersion inserts a new version and sets its ID.
func (s *Store) CreateVersion(ctx context.Context, version *Version) error {
	return createVersion(ensureContext(ctx), s.db, version)
}

// CreateVersion inserts a new version inside the transaction.
func (t *Tx) CreateVersion(ctx context.Context, version *Version) error {
	return createVersion(ensureContext(ctx), t.tx, version)
}

// GetVersionByFilePath returns the version owning filePath, or nil.
func (s *Store) GetVersionByFilePath(ctx context.Context, filePath string) (*Version, error) {
	return getVersionByFilePath(ensureContext(ctx), s.db, filePath)
}

// GetVersionByFilePath looks up a version inside the transaction.
func (t *Tx) GetVersionByFilePath(ctx context.Context, filePath string) (*Version, error) {
	return getVersionByFilePath(ensureContext(ctx), t.tx, filePath)
}

// ListVersionsForProduct returns the versions of one product, newest first.
func (s *Store) ListVersionsForProduct(ctx context.Context, productID int64) ([]*Version, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+versionColumns+` FROM versions WHERE product_id = ? ORDER BY id DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectVersions(rows)
}

// ListVersionsUnder returns every version whose product folder is root or
// sits below it. Used by the reconciler to find vanished files.
func (s *Store) ListVersionsUnder(ctx context.Context, root string) ([]*Version, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT v.id, v.product_id, v.version_name, v.file_name, v.file_path, v.file_size, v.release_date, v.is_portable, v.created_at
         FROM versions v
         JOIN products p ON p.id = v.product_id
         WHERE p.folder_path = ? OR p.folder_path LIKE ? ESCAPE '\'`,
		root,
		folderSubtreePattern(root),
	)
	if err != nil {
		return nil, fmt.Errorf("list versions under root: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return collectVersions(rows)
}

func collectVersions(rows *sql.Rows) ([]*Version, error) {
	var versions []*Version
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// DeleteVersions removes versions by identifier. Returns the number deleted.
func (s *Store) DeleteVersions(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM versions WHERE id IN (`+makePlaceholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete versions: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

// CountVersions returns the number of versions in the catalog.
func (s *Store) CountVersions(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM versions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return count, nil
}
