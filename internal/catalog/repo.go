package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("catalog entity not found")
	ErrSizeInUse = errors.New("size is referenced by products")
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

type ShopQuery struct {
	CategorySlug string
	MaxPrice     decimal.NullDecimal
	Sort         string // price_asc | price_desc | "" (newest first)
}

type Repository interface {
	// public storefront reads
	Categories(ctx context.Context) ([]Category, error)
	OnSaleProducts(ctx context.Context, limit int) ([]Product, error)
	NewProducts(ctx context.Context, limit int) ([]Product, error)
	Shop(ctx context.Context, q ShopQuery) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	RelatedProducts(ctx context.Context, p *Product, limit int) ([]Product, error)

	// staff CRUD
	ListCategories(ctx context.Context, q Query) ([]Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) (bool, error)

	ListSubCategories(ctx context.Context, q Query) ([]SubCategory, error)
	CreateSubCategory(ctx context.Context, sc *SubCategory) error
	UpdateSubCategory(ctx context.Context, sc *SubCategory) error
	DeleteSubCategory(ctx context.Context, id int64) (bool, error)

	ListSizes(ctx context.Context, q Query) ([]Size, error)
	CreateSize(ctx context.Context, s *Size) error
	UpdateSize(ctx context.Context, s *Size) error
	DeleteSize(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, q Query) ([]Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productCols = `
	p.id, p.name, p.category_id, p.sub_category_id, p.description,
	p.regular_price::text, p.sale_price::text, p.size_value::text, p.size_id,
	p.image_url, p.created_at, p.on_sale, p.is_new, p.slug,
	c.name, COALESCE(sc.name,''), COALESCE(s.abbreviation,'')`

const productJoins = `
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN subcategories sc ON sc.id = p.sub_category_id
	LEFT JOIN sizes s ON s.id = p.size_id`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.SubCategoryID, &p.Description,
		&p.RegularPrice, &p.SalePrice, &p.SizeValue, &p.SizeID,
		&p.ImageURL, &p.CreatedAt, &p.OnSale, &p.IsNew, &p.Slug,
		&p.CategoryName, &p.SubCategoryName, &p.SizeAbbr,
	)
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func clampPage(q Query) (int, int) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ---------- public storefront reads ----------

func (r *PGRepo) Categories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, image_url FROM categories ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) OnSaleProducts(ctx context.Context, limit int) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+productJoins+`
		WHERE p.on_sale
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *PGRepo) NewProducts(ctx context.Context, limit int) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+productJoins+`
		WHERE p.is_new
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *PGRepo) Shop(ctx context.Context, q ShopQuery) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	order := "p.created_at DESC"
	switch q.Sort {
	case "price_asc":
		order = "COALESCE(p.sale_price, p.regular_price) ASC"
	case "price_desc":
		order = "COALESCE(p.sale_price, p.regular_price) DESC"
	}

	var maxPrice *string
	if q.MaxPrice.Valid {
		s := q.MaxPrice.Decimal.String()
		maxPrice = &s
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+productJoins+`
		WHERE ($1 = '' OR c.slug = $1)
		  AND ($2::numeric IS NULL OR COALESCE(p.sale_price, p.regular_price) <= $2::numeric)
		ORDER BY `+order+`
	`, q.CategorySlug, maxPrice)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *PGRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Product
	err := scanProduct(r.db.QueryRow(ctx, `
		SELECT `+productCols+productJoins+`
		WHERE p.id = $1
	`, id), &p)
	if err != nil {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *PGRepo) RelatedProducts(ctx context.Context, p *Product, limit int) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+productJoins+`
		WHERE p.category_id = $1 AND p.id <> $2
		ORDER BY p.created_at DESC
		LIMIT $3
	`, p.CategoryID, p.ID, limit)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// ---------- categories ----------

func (r *PGRepo) ListCategories(ctx context.Context, q Query) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset := clampPage(q)
	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, image_url
		FROM categories
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%')
		ORDER BY name
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(q.Q), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO categories (name, slug, image_url)
		VALUES ($1,$2,$3) RETURNING id
	`, c.Name, c.Slug, c.ImageURL).Scan(&c.ID)
}

func (r *PGRepo) UpdateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE categories
		SET name = COALESCE(NULLIF($2,''), name),
		    slug = COALESCE(NULLIF($3,''), slug),
		    image_url = COALESCE(NULLIF($4,''), image_url)
		WHERE id = $1
	`, c.ID, c.Name, c.Slug, c.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// ---------- subcategories ----------

func (r *PGRepo) ListSubCategories(ctx context.Context, q Query) ([]SubCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset := clampPage(q)
	rows, err := r.db.Query(ctx, `
		SELECT sc.id, sc.category_id, sc.name, sc.slug, sc.image_url, c.name
		FROM subcategories sc
		JOIN categories c ON c.id = sc.category_id
		WHERE ($1 = '' OR sc.name ILIKE '%'||$1||'%')
		ORDER BY c.name, sc.name
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(q.Q), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SubCategory
	for rows.Next() {
		var sc SubCategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Slug, &sc.ImageURL, &sc.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateSubCategory(ctx context.Context, sc *SubCategory) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if sc.Slug == "" {
		sc.Slug = Slugify(sc.Name)
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO subcategories (category_id, name, slug, image_url)
		VALUES ($1,$2,$3,$4) RETURNING id
	`, sc.CategoryID, sc.Name, sc.Slug, sc.ImageURL).Scan(&sc.ID)
}

func (r *PGRepo) UpdateSubCategory(ctx context.Context, sc *SubCategory) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE subcategories
		SET category_id = COALESCE(NULLIF($2,0), category_id),
		    name = COALESCE(NULLIF($3,''), name),
		    slug = COALESCE(NULLIF($4,''), slug),
		    image_url = COALESCE(NULLIF($5,''), image_url)
		WHERE id = $1
	`, sc.ID, sc.CategoryID, sc.Name, sc.Slug, sc.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteSubCategory(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM subcategories WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// ---------- sizes ----------

func (r *PGRepo) ListSizes(ctx context.Context, q Query) ([]Size, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset := clampPage(q)
	rows, err := r.db.Query(ctx, `
		SELECT id, name, abbreviation
		FROM sizes
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR abbreviation ILIKE '%'||$1||'%')
		ORDER BY abbreviation
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(q.Q), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Size
	for rows.Next() {
		var s Size
		if err := rows.Scan(&s.ID, &s.Name, &s.Abbreviation); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateSize(ctx context.Context, s *Size) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO sizes (name, abbreviation) VALUES ($1,$2) RETURNING id
	`, s.Name, s.Abbreviation).Scan(&s.ID)
}

func (r *PGRepo) UpdateSize(ctx context.Context, s *Size) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE sizes
		SET name = COALESCE(NULLIF($2,''), name),
		    abbreviation = COALESCE(NULLIF($3,''), abbreviation)
		WHERE id = $1
	`, s.ID, s.Name, s.Abbreviation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSize refuses to remove a size still referenced by products
// (FK is RESTRICT; the violation surfaces as ErrSizeInUse).
func (r *PGRepo) DeleteSize(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM sizes WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrSizeInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- products ----------

func (r *PGRepo) ListProducts(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset := clampPage(q)
	rows, err := r.db.Query(ctx, `
		SELECT `+productCols+productJoins+`
		WHERE ($1 = '' OR p.name ILIKE '%'||$1||'%' OR c.name ILIKE '%'||$1||'%' OR sc.name ILIKE '%'||$1||'%')
		ORDER BY p.id DESC
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(q.Q), limit, offset)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *PGRepo) CreateProduct(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.Slug == "" {
		slug, err := uniqueSlug(ctx, r, p.Name, 0)
		if err != nil {
			return err
		}
		p.Slug = slug
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO products
			(name, category_id, sub_category_id, description,
			 regular_price, sale_price, size_value, size_id,
			 image_url, created_at, on_sale, is_new, slug)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),$10,$11,$12)
		RETURNING id, created_at
	`, p.Name, p.CategoryID, p.SubCategoryID, p.Description,
		p.RegularPrice, p.SalePrice, p.SizeValue, p.SizeID,
		p.ImageURL, p.OnSale, p.IsNew, p.Slug).Scan(&p.ID, &p.CreatedAt)
}

func (r *PGRepo) UpdateProduct(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = COALESCE(NULLIF($2,''), name),
		    category_id = COALESCE(NULLIF($3,0), category_id),
		    sub_category_id = $4,
		    description = $5,
		    regular_price = $6,
		    sale_price = $7,
		    size_value = $8,
		    size_id = $9,
		    image_url = COALESCE(NULLIF($10,''), image_url),
		    on_sale = $11,
		    is_new = $12
		WHERE id = $1
	`, p.ID, p.Name, p.CategoryID, p.SubCategoryID, p.Description,
		p.RegularPrice, p.SalePrice, p.SizeValue, p.SizeID,
		p.ImageURL, p.OnSale, p.IsNew)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM products WHERE slug=$1 AND id<>$2)
	`, slug, excludeID).Scan(&exists)
	return exists, err
}
