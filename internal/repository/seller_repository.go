package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/chiragcj27/chariot-sub001/internal/model"
)

// SellerRepo is the MySQL SellerStore.  The blacklist and reapplication
// records are flattened into nullable columns of the `sellers` table;
// a NULL blacklist_expires_at means no blacklist is on record and a NULL
// reapply_submitted_at means no reapplication.  Every successful write
// bumps the version column.
type SellerRepo struct {
	db *sql.DB
}

// NewSellerRepo returns a SellerRepo bound to the given database.
func NewSellerRepo(db *sql.DB) *SellerRepo { return &SellerRepo{db: db} }

const sellerColumns = `id, approval_status, rejection_reason,
	blacklist_reason, blacklisted_at, blacklisted_by, blacklist_expires_at,
	reapply_submitted_at, reapply_reason, reapply_decision, reapply_decided_at, reapply_decided_by,
	version, created_at, updated_at`

// Reapplication decisions as stored in reapply_decision.
const (
	decisionApproved = "APPROVED"
	decisionRejected = "REJECTED"
)

// Get loads a seller and its version.  ErrNotFound is returned when no
// row matches.
func (r *SellerRepo) Get(ctx context.Context, id uint64) (model.Seller, uint64, error) {
	var (
		s                                  model.Seller
		status                             string
		blReason, reReason, reDecision     sql.NullString
		blAt, blExpires, reSubmitted, reAt sql.NullTime
		blBy, reBy                         sql.NullInt64
		version                            uint64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT "+sellerColumns+" FROM sellers WHERE id = ? LIMIT 1", id,
	).Scan(&s.ID, &status, &s.RejectionReason,
		&blReason, &blAt, &blBy, &blExpires,
		&reSubmitted, &reReason, &reDecision, &reAt, &reBy,
		&version, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Seller{}, 0, ErrNotFound
	}
	if err != nil {
		return model.Seller{}, 0, err
	}
	s.ApprovalStatus = model.ApprovalStatus(status)
	if blExpires.Valid {
		s.Blacklist = &model.BlacklistRecord{
			Reason:        blReason.String,
			BlacklistedAt: blAt.Time.UTC(),
			BlacklistedBy: uint64(blBy.Int64),
			ExpiryDate:    blExpires.Time.UTC(),
		}
	}
	if reSubmitted.Valid {
		s.Reapplication = &model.ReapplicationRequest{
			SubmittedAt: reSubmitted.Time.UTC(),
			Reason:      reReason.String,
		}
		if reDecision.Valid {
			s.Reapplication.Decision = &model.ReapplicationDecision{
				Approved:  reDecision.String == decisionApproved,
				DecidedAt: reAt.Time.UTC(),
				DecidedBy: uint64(reBy.Int64),
			}
		}
	}
	return s, version, nil
}

// CompareAndSwap writes the seller's trust fields if the stored version
// equals version.  When no row is updated the current version is read
// back to tell a lost race (ok=false) from a missing seller (ErrNotFound).
func (r *SellerRepo) CompareAndSwap(ctx context.Context, id, version uint64, s model.Seller) (bool, uint64, error) {
	const q = `UPDATE sellers SET approval_status = ?, rejection_reason = ?,
		blacklist_reason = ?, blacklisted_at = ?, blacklisted_by = ?, blacklist_expires_at = ?,
		reapply_submitted_at = ?, reapply_reason = ?, reapply_decision = ?, reapply_decided_at = ?, reapply_decided_by = ?,
		version = version + 1
		WHERE id = ? AND version = ?`
	args := append(sellerArgs(s), id, version)
	res, err := r.db.ExecContext(ctx, q, args...)
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
	err = r.db.QueryRowContext(ctx, "SELECT version FROM sellers WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, err
	}
	return false, current, nil
}

// Create inserts a newly registered seller and returns its id.
func (r *SellerRepo) Create(ctx context.Context, s model.Seller) (uint64, error) {
	if s.ApprovalStatus == "" {
		s.ApprovalStatus = model.SellerPending
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO sellers (approval_status, rejection_reason) VALUES (?, ?)",
		string(s.ApprovalStatus), s.RejectionReason)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// sellerArgs flattens the seller into the column order used by
// CompareAndSwap (everything after the version bump is appended there).
func sellerArgs(s model.Seller) []any {
	var (
		blReason, reReason, reDecision     sql.NullString
		blAt, blExpires, reSubmitted, reAt sql.NullTime
		blBy, reBy                         sql.NullInt64
	)
	if b := s.Blacklist; b != nil {
		blReason = sql.NullString{String: b.Reason, Valid: true}
		blAt = nullTime(b.BlacklistedAt)
		blBy = sql.NullInt64{Int64: int64(b.BlacklistedBy), Valid: true}
		blExpires = nullTime(b.ExpiryDate)
	}
	if ra := s.Reapplication; ra != nil {
		reSubmitted = nullTime(ra.SubmittedAt)
		reReason = sql.NullString{String: ra.Reason, Valid: true}
		if d := ra.Decision; d != nil {
			decision := decisionRejected
			if d.Approved {
				decision = decisionApproved
			}
			reDecision = sql.NullString{String: decision, Valid: true}
			reAt = nullTime(d.DecidedAt)
			reBy = sql.NullInt64{Int64: int64(d.DecidedBy), Valid: true}
		}
	}
	return []any{
		string(s.ApprovalStatus), s.RejectionReason,
		blReason, blAt, blBy, blExpires,
		reSubmitted, reReason, reDecision, reAt, reBy,
	}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
