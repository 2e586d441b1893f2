package database

import (
	"database/sql"
	"errors"
	"time"

	"library-backend/internal/models"
)

var (
	ErrMemberInactive = errors.New("member is not active")
	ErrStockInactive  = errors.New("stock unit is not active")
	ErrCheckoutLimit  = errors.New("member has reached the checkout limit")
	ErrBorrowNotFound = errors.New("no open borrow for this member and stock")
)

// BorrowRepo handles borrow database operations
type BorrowRepo struct {
	db *sql.DB
}

// NewBorrowRepo creates a new borrow repository
func NewBorrowRepo(store *Store) *BorrowRepo {
	return &BorrowRepo{db: store.DB()}
}

// Checkout opens a borrow after checking, inside one transaction, that
// the member is active, the stock unit is active, and the member's open
// borrow count is below the limit.
func (r *BorrowRepo) Checkout(memberID, stockID int64, limit int) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var memberActive bool
	err = tx.QueryRow("SELECT active FROM member WHERE id = ?", memberID).Scan(&memberActive)
	if err == sql.ErrNoRows {
		return 0, ErrMemberNotFound
	}
	if err != nil {
		return 0, err
	}
	if !memberActive {
		return 0, ErrMemberInactive
	}

	var stockActive bool
	err = tx.QueryRow("SELECT active FROM stock WHERE id = ?", stockID).Scan(&stockActive)
	if err == sql.ErrNoRows {
		return 0, ErrStockNotFound
	}
	if err != nil {
		return 0, err
	}
	if !stockActive {
		return 0, ErrStockInactive
	}

	var open int
	err = tx.QueryRow("SELECT COUNT(*) FROM borrow WHERE member_id = ? AND closed = 0", memberID).Scan(&open)
	if err != nil {
		return 0, err
	}
	if open >= limit {
		return 0, ErrCheckoutLimit
	}

	result, err := tx.Exec(`
		INSERT INTO borrow (member_id, stock_id, created, closed) VALUES (?, ?, ?, 0)
	`, memberID, stockID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	borrowID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(`
		UPDATE member SET checked_out = checked_out + 1, total_borrowed = total_borrowed + 1
		WHERE id = ?
	`, memberID)
	if err != nil {
		return 0, err
	}

	return borrowID, tx.Commit()
}

// Checkin closes the matching open borrow. The stock unit must resolve
// to a known resource before the borrow is looked up.
func (r *BorrowRepo) Checkin(memberID, stockID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var resourceID int64
	err = tx.QueryRow("SELECT resource_id FROM stock WHERE id = ?", stockID).Scan(&resourceID)
	if err == sql.ErrNoRows {
		return ErrStockNotFound
	}
	if err != nil {
		return err
	}

	var exists int
	err = tx.QueryRow("SELECT COUNT(*) FROM resource WHERE id = ?", resourceID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrResourceNotFound
	}

	var borrowID int64
	err = tx.QueryRow(`
		SELECT id FROM borrow WHERE member_id = ? AND stock_id = ? AND closed = 0
	`, memberID, stockID).Scan(&borrowID)
	if err == sql.ErrNoRows {
		return ErrBorrowNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec("UPDATE borrow SET closed = 1 WHERE id = ?", borrowID); err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE member SET checked_out = MAX(checked_out - 1, 0) WHERE id = ?
	`, memberID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// OpenCount returns the member's number of open borrows
func (r *BorrowRepo) OpenCount(memberID int64) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM borrow WHERE member_id = ? AND closed = 0", memberID).Scan(&count)
	return count, err
}

// ListForMember returns all borrows for a member, open first
func (r *BorrowRepo) ListForMember(memberID int64) ([]*models.Borrow, error) {
	rows, err := r.db.Query(`
		SELECT id, member_id, stock_id, created, closed
		FROM borrow WHERE member_id = ? ORDER BY closed, created DESC
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var borrows []*models.Borrow
	for rows.Next() {
		borrow := &models.Borrow{}
		if err := rows.Scan(&borrow.ID, &borrow.MemberID, &borrow.StockID, &borrow.Created, &borrow.Closed); err != nil {
			return nil, err
		}
		borrows = append(borrows, borrow)
	}
	return borrows, rows.Err()
}
