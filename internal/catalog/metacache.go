package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const cacheColumns = "id, software_name, metadata_json, confidence, source, hit_count, created_at, updated_at"

func scanCacheEntry(scanner interface{ Scan(dest ...any) error }) (*CacheEntry, error) {
	var (
		id         int64
		name       string
		metadata   string
		confidence sql.NullFloat64
		source     string
		hitCount   sql.NullInt64
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &name, &metadata, &confidence, &source, &hitCount, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	entry := &CacheEntry{
		ID:           id,
		SoftwareName: name,
		MetadataJSON: metadata,
		Confidence:   confidence.Float64,
		Source:       source,
		HitCount:     hitCount.Int64,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		entry.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		entry.UpdatedAt = updated
	}
	return entry, nil
}

// LookupMetadata returns the cached metadata for a normalized software name
// and bumps its hit count. Returns nil on a miss.
func (s *Store) LookupMetadata(ctx context.Context, softwareName string) (*CacheEntry, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+cacheColumns+` FROM metadata_cache WHERE software_name = ?`,
		softwareName,
	)
	entry, err := scanCacheEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup metadata cache: %w", err)
	}

	if _, err := s.execWithRetry(ctx, `UPDATE metadata_cache SET hit_count = hit_count + 1 WHERE id = ?`, entry.ID); err != nil {
		return nil, fmt.Errorf("bump cache hit count: %w", err)
	}
	entry.HitCount++
	return entry, nil
}

// SaveMetadata inserts or refreshes the cached metadata for a normalized
// software name.
func (s *Store) SaveMetadata(ctx context.Context, softwareName, metadataJSON string, confidence float64, source string) error {
	if softwareName == "" {
		return errors.New("software name is empty")
	}
	now := timestamp(time.Now().UTC())

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO metadata_cache (
            software_name, metadata_json, confidence, source, hit_count,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, 0, ?, ?)
        ON CONFLICT(software_name) DO UPDATE SET
            metadata_json = excluded.metadata_json,
            confidence = excluded.confidence,
            source = excluded.source,
            updated_at = excluded.updated_at`,
		softwareName,
		metadataJSON,
		confidence,
		source,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("save metadata cache: %w", err)
	}
	return nil
}

// CountCacheEntries returns the number of cached metadata records.
func (s *Store) CountCacheEntries(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM metadata_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cache entries: %w", err)
	}
	return count, nil
}
