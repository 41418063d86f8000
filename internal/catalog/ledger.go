package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrPartialResolution is returned when a ledger entry is resolved with only
// one of the product/version references.
var ErrPartialResolution = errors.New("ledger entry needs both catalog references or neither")

const ledgerColumns = "id, folder_path, file_name, kind, details, suggestion, resolved, product_id, version_id, created_at"

func scanLedgerEntry(scanner interface{ Scan(dest ...any) error }) (*LedgerEntry, error) {
	var (
		id         int64
		folderPath string
		fileName   string
		kind       string
		details    sql.NullString
		suggestion sql.NullString
		resolved   sql.NullInt64
		productID  sql.NullInt64
		versionID  sql.NullInt64
		createdRaw string
	)
	if err := scanner.Scan(&id, &folderPath, &fileName, &kind, &details, &suggestion, &resolved, &productID, &versionID, &createdRaw); err != nil {
		return nil, err
	}
	entry := &LedgerEntry{
		ID:         id,
		FolderPath: folderPath,
		FileName:   fileName,
		Kind:       kind,
		Details:    details.String,
		Suggestion: suggestion.String,
		Resolved:   resolved.Valid && resolved.Int64 != 0,
	}
	if productID.Valid {
		value := productID.Int64
		entry.ProductID = &value
	}
	if versionID.Valid {
		value := versionID.Int64
		entry.VersionID = &value
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}

// InsertEntry records a discovered file. The (folder, file) pair is unique;
// re-inserting an existing pair is a no-op and reports false.
func (s *Store) InsertEntry(ctx context.Context, entry *LedgerEntry) (bool, error) {
	if entry == nil {
		return false, errors.New("entry is nil")
	}
	now := time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO scan_ledger (
            folder_path, file_name, kind, details, suggestion, resolved,
            product_id, version_id, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.FolderPath,
		entry.FileName,
		entry.Kind,
		nullableString(entry.Details),
		nullableString(entry.Suggestion),
		boolToInt(entry.Resolved),
		nullableInt64(entry.ProductID),
		nullableInt64(entry.VersionID),
		timestamp(now),
	)
	if err != nil {
		return false, fmt.Errorf("insert ledger entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = now
	return true, nil
}

// GetEntry fetches the ledger entry for a (folder, file) pair, or nil.
func (s *Store) GetEntry(ctx context.Context, folderPath, fileName string) (*LedgerEntry, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+ledgerColumns+` FROM scan_ledger WHERE folder_path = ? AND file_name = ?`,
		folderPath,
		fileName,
	)
	entry, err := scanLedgerEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return entry, nil
}

// GetEntryByID fetches a ledger entry by identifier, or nil.
func (s *Store) GetEntryByID(ctx context.Context, id int64) (*LedgerEntry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+ledgerColumns+` FROM scan_ledger WHERE id = ?`, id)
	entry, err := scanLedgerEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return entry, nil
}

// LedgerFilter narrows ListEntries. Zero values mean no constraint.
type LedgerFilter struct {
	Kind     string
	Resolved *bool
	Folder   string
}

// ListEntries returns ledger entries matching the filter, oldest first.
func (s *Store) ListEntries(ctx context.Context, filter LedgerFilter) ([]*LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM scan_ledger WHERE 1=1`
	var args []any
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	if filter.Resolved != nil {
		query += ` AND resolved = ?`
		args = append(args, boolToInt(*filter.Resolved))
	}
	if filter.Folder != "" {
		query += ` AND folder_path = ?`
		args = append(args, filter.Folder)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}

// ListUnresolved returns the unresolved entries of one kind, or of every
// kind when kind is empty.
func (s *Store) ListUnresolved(ctx context.Context, kind string) ([]*LedgerEntry, error) {
	resolved := false
	return s.ListEntries(ctx, LedgerFilter{Kind: kind, Resolved: &resolved})
}

func resolveEntry(ctx context.Context, q querier, id, productID, versionID int64) error {
	if (productID == 0) != (versionID == 0) {
		return ErrPartialResolution
	}
	var productRef, versionRef any
	if productID != 0 {
		productRef = productID
		versionRef = versionID
	}
	res, err := q.ExecContext(
		ctx,
		`UPDATE scan_ledger SET resolved = 1, product_id = ?, version_id = ? WHERE id = ?`,
		productRef,
		versionRef,
		id,
	)
	if err != nil {
		return fmt.Errorf("resolve ledger entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("resolve ledger entry %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ResolveEntry marks an entry resolved. Pass both catalog identifiers for a
// match, or both zero for a resolution without catalog references (for
// example a renamed violation). This is the only way entries get resolved.
func (s *Store) ResolveEntry(ctx context.Context, id, productID, versionID int64) error {
	return resolveEntry(ensureContext(ctx), s.db, id, productID, versionID)
}

// ResolveEntry marks an entry resolved inside the transaction.
func (t *Tx) ResolveEntry(ctx context.Context, id, productID, versionID int64) error {
	return resolveEntry(ensureContext(ctx), t.tx, id, productID, versionID)
}

// DeleteEntry removes a ledger entry.
func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM scan_ledger WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	return nil
}

// DeleteEntryByFile removes the ledger entry recorded for one file. Used by
// the reconciler when the file itself has vanished, so a resolved entry never
// outlives its version with only the product reference left.
func (s *Store) DeleteEntryByFile(ctx context.Context, folderPath, fileName string) error {
	if _, err := s.execWithRetry(
		ctx,
		`DELETE FROM scan_ledger WHERE folder_path = ? AND file_name = ?`,
		folderPath, fileName,
	); err != nil {
		return fmt.Errorf("delete ledger entry by file: %w", err)
	}
	return nil
}

// CountUnresolved returns how many ledger entries still await resolution.
func (s *Store) CountUnresolved(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM scan_ledger WHERE resolved = 0`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unresolved: %w", err)
	}
	return count, nil
}
