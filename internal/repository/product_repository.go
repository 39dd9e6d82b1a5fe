package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

// ProductRepo is the MySQL ProductStore backed by the `products` table.
// The (seller_id, status) index serves ListBySeller, which the blacklist
// cascade uses to find a seller's active products.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `id, seller_id, name, description, price_cents, status,
	is_admin_approved, is_admin_rejected, rejection_reason, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (model.Product, uint64, error) {
	var (
		p       model.Product
		status  string
		reason  sql.NullString
		version uint64
	)
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.PriceCents, &status,
		&p.IsAdminApproved, &p.IsAdminRejected, &reason, &version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Product{}, 0, err
	}
	p.Status = model.ProductStatus(status)
	if reason.Valid {
		r := reason.String
		p.RejectionReason = &r
	}
	return p, version, nil
}

// Get loads a product and its version.
func (r *ProductRepo) Get(ctx context.Context, id uint64) (model.Product, uint64, error) {
	p, version, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, 0, ErrNotFound
	}
	return p, version, err
}

// CompareAndSwap writes the product's content and lifecycle fields if the
// stored version equals version.  seller_id is never rewritten.
func (r *ProductRepo) CompareAndSwap(ctx context.Context, id, version uint64, p model.Product) (bool, uint64, error) {
	const q = `UPDATE products SET name = ?, description = ?, price_cents = ?, status = ?,
		is_admin_approved = ?, is_admin_rejected = ?, rejection_reason = ?,
		version = version + 1
		WHERE id = ? AND version = ?`
	var reason sql.NullString
	if p.RejectionReason != nil {
		reason = sql.NullString{String: *p.RejectionReason, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q,
		p.Name, p.Description, p.PriceCents, string(p.Status),
		p.IsAdminApproved, p.IsAdminRejected, reason,
		id, version)
	if err != nil {
		return false, 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	if n == 1 {
		return true, version + 1, nil
	}
	var current uint64
	err = r.db.QueryRowContext(ctx, "SELECT version FROM products WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, err
	}
	return false, current, nil
}

// Create inserts a product for an existing seller and returns its id.
// A missing status defaults to DRAFT.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (uint64, error) {
	if p.Status == "" {
		p.Status = model.ProductDraft
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO products (seller_id, name, description, price_cents, status)
		 SELECT id, ?, ?, ?, ? FROM sellers WHERE id = ?`,
		p.Name, p.Description, p.PriceCents, string(p.Status), p.SellerID)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, ErrNotFound
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListBySeller returns the seller's products, optionally filtered by status.
func (r *ProductRepo) ListBySeller(ctx context.Context, sellerID uint64, status model.ProductStatus) ([]model.Product, error) {
	q := "SELECT " + productColumns + " FROM products WHERE seller_id = ?"
	args := []any{sellerID}
	if status != "" {
		q += " AND status = ?"
		args = append(args, string(status))
	}
	q += " ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, _, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
