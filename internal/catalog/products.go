package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const productColumns = "id, title, subtitle, description, vendor, icon_url, category, folder_path, is_portable, official_website, license_type, platform, detailed_description, features_json, system_requirements_json, supported_formats_json, installation_info_json, release_notes, release_date, created_at, updated_at"

func scanProduct(scanner interface{ Scan(dest ...any) error }) (*Product, error) {
	var (
		id           int64
		title        string
		subtitle     sql.NullString
		description  sql.NullString
		vendor       sql.NullString
		iconURL      sql.NullString
		category     sql.NullString
		folderPath   string
		isPortable   sql.NullInt64
		website      sql.NullString
		licenseType  sql.NullString
		platform     sql.NullString
		detailedDesc sql.NullString
		features     sql.NullString
		sysReqs      sql.NullString
		formats      sql.NullString
		installInfo  sql.NullString
		releaseNotes sql.NullString
		releaseDate  sql.NullString
		createdRaw   string
		updatedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&title,
		&subtitle,
		&description,
		&vendor,
		&iconURL,
		&category,
		&folderPath,
		&isPortable,
		&website,
		&licenseType,
		&platform,
		&detailedDesc,
		&features,
		&sysReqs,
		&formats,
		&installInfo,
		&releaseNotes,
		&releaseDate,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	product := &Product{
		ID:                  id,
		Title:               title,
		Subtitle:            subtitle.String,
		Description:         description.String,
		Vendor:              vendor.String,
		IconURL:             iconURL.String,
		Category:            category.String,
		FolderPath:          folderPath,
		IsPortable:          isPortable.Valid && isPortable.Int64 != 0,
		OfficialWebsite:     website.String,
		LicenseType:         licenseType.String,
		Platform:            platform.String,
		DetailedDescription: detailedDesc.String,
		Features:            unmarshalStrings(features),
		SystemRequirements:  unmarshalStringMap(sysReqs),
		SupportedFormats:    unmarshalStrings(formats),
		InstallationInfo:    unmarshalStringMap(installInfo),
		ReleaseNotes:        releaseNotes.String,
		ReleaseDate:         releaseDate.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		product.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		product.UpdatedAt = updated
	}
	return product, nil
}

func createProduct(ctx context.Context, q querier, product *Product) error {
	if product == nil {
		return errors.New("product is nil")
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if len(product.Features) > maxFeatures {
		product.Features = product.Features[:maxFeatures]
	}

	res, err := q.ExecContext(
		ctx,
		`INSERT INTO products (
            title, subtitle, description, vendor, icon_url, category,
            folder_path, is_portable, official_website, license_type,
            platform, detailed_description, features_json,
            system_requirements_json, supported_formats_json,
            installation_info_json, release_notes, release_date, created_at,
            updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.Title,
		nullableString(product.Subtitle),
		nullableString(product.Description),
		nullableString(product.Vendor),
		nullableString(product.IconURL),
		nullableString(product.Category),
		product.FolderPath,
		boolToInt(product.IsPortable),
		nullableString(product.OfficialWebsite),
		nullableString(product.LicenseType),
		nullableString(product.Platform),
		nullableString(product.DetailedDescription),
		marshalStrings(product.Features),
		marshalStringMap(product.SystemRequirements),
		marshalStrings(product.SupportedFormats),
		marshalStringMap(product.InstallationInfo),
		nullableString(product.ReleaseNotes),
		nullableString(product.ReleaseDate),
		timestamp(now),
		timestamp(now),
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	product.ID = id
	return nil
}

func updateProduct(ctx context.Context, q querier, product *Product) error {
	if product == nil {
		return errors.New("product is nil")
	}
	product.UpdatedAt = time.Now().UTC()
	if len(product.Features) > maxFeatures {
		product.Features = product.Features[:maxFeatures]
	}

	_, err := q.ExecContext(
		ctx,
		`UPDATE products SET
            title = ?, subtitle = ?, description = ?, vendor = ?,
            icon_url = ?, category = ?, folder_path = ?, is_portable = ?,
            official_website = ?, license_type = ?, platform = ?,
            detailed_description = ?, features_json = ?,
            system_requirements_json = ?, supported_formats_json = ?,
            installation_info_json = ?, release_notes = ?, release_date = ?,
            updated_at = ?
        WHERE id = ?`,
		product.Title,
		nullableString(product.Subtitle),
		nullableString(product.Description),
		nullableString(product.Vendor),
		nullableString(product.IconURL),
		nullableString(product.Category),
		product.FolderPath,
		boolToInt(product.IsPortable),
		nullableString(product.OfficialWebsite),
		nullableString(product.LicenseType),
		nullableString(product.Platform),
		nullableString(product.DetailedDescription),
		marshalStrings(product.Features),
		marshalStringMap(product.SystemRequirements),
		marshalStrings(product.SupportedFormats),
		marshalStringMap(product.InstallationInfo),
		nullableString(product.ReleaseNotes),
		nullableString(product.ReleaseDate),
		timestamp(product.UpdatedAt),
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func getProductByFolder(ctx context.Context, q querier, folderPath string) (*Product, error) {
	row := q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE folder_path = ?`, folderPath)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product by folder: %w", err)
	}
	return product, nil
}

// CreateProduct inserts a new product and sets its ID.
func (s *Store) CreateProduct(ctx context.Context, product *Product) error {
	return createProduct(ensureContext(ctx), s.db, product)
}

// CreateProduct inserts a new product inside the transaction.
func (t *Tx) CreateProduct(ctx context.Context, product *Product) error {
	return createProduct(ensureContext(ctx), t.tx, product)
}

// UpdateProduct persists changes to an existing product.
func (s *Store) UpdateProduct(ctx context.Context, product *Product) error {
	return updateProduct(ensureContext(ctx), s.db, product)
}

// UpdateProduct persists changes to an existing product inside the
// transaction.
func (t *Tx) UpdateProduct(ctx context.Context, product *Product) error {
	return updateProduct(ensureContext(ctx), t.tx, product)
}

// GetProductByFolder returns the product anchored to folderPath, or nil when
// none exists.
func (s *Store) GetProductByFolder(ctx context.Context, folderPath string) (*Product, error) {
	return getProductByFolder(ensureContext(ctx), s.db, folderPath)
}

// GetProductByFolder looks up a product inside the transaction.
func (t *Tx) GetProductByFolder(ctx context.Context, folderPath string) (*Product, error) {
	return getProductByFolder(ensureContext(ctx), t.tx, folderPath)
}

// GetProductByID fetches a product by identifier, or nil when absent.
func (s *Store) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListProducts returns all products ordered by title.
func (s *Store) ListProducts(ctx context.Context) ([]*Product, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+productColumns+` FROM products ORDER BY title COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []*Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// CountProducts returns the number of products in the catalog.
func (s *Store) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// DeleteProductsWithoutVersionsUnder removes products under root that no
// longer own any version. Returns the number deleted.
func (s *Store) DeleteProductsWithoutVersionsUnder(ctx context.Context, root string) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM products
         WHERE (folder_path = ? OR folder_path LIKE ? ESCAPE '\')
           AND NOT EXISTS (SELECT 1 FROM versions WHERE versions.product_id = products.id)`,
		root,
		folderSubtreePattern(root),
	)
	if err != nil {
		return 0, fmt.Errorf("delete empty products: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}
