package postgres

import (
	"context"
	"database/sql"

	"inquiry-system/internal/domain/inquiry"
)

type InquiryRepo struct {
	db *sql.DB
}

func NewInquiryRepo(db *sql.DB) *InquiryRepo {
	return &InquiryRepo{db: db}
}

const inquiryColumns = `id, parent_id, type, title, description, status, creator_id, created_at, updated_at`

func (r *InquiryRepo) Create(ctx context.Context, q *inquiry.Inquiry) (int64, error) {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO inquiries (parent_id, type, title, description, status, creator_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `, q.ParentID, q.Type, q.Title, q.Description, q.Status, q.CreatorID).
		Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return q.ID, nil
}

func (r *InquiryRepo) GetByID(ctx context.Context, id int64) (*inquiry.Inquiry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, id)
	q, err := scanInquiry(row)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *InquiryRepo) List(ctx context.Context, status *string) ([]inquiry.Inquiry, error) {
	if status != nil {
		return r.query(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE status = $1 ORDER BY created_at DESC`, *status)
	}
	return r.query(ctx, `SELECT `+inquiryColumns+` FROM inquiries ORDER BY created_at DESC`)
}

func (r *InquiryRepo) ListChildren(ctx context.Context, parentID int64) ([]inquiry.Inquiry, error) {
	return r.query(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE parent_id = $1 ORDER BY id`, parentID)
}

func (r *InquiryRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE inquiries SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *InquiryRepo) query(ctx context.Context, query string, args ...any) ([]inquiry.Inquiry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []inquiry.Inquiry
	for rows.Next() {
		q, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, q)
	}
	return res, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInquiry(s scanner) (inquiry.Inquiry, error) {
	var q inquiry.Inquiry
	err := s.Scan(&q.ID, &q.ParentID, &q.Type, &q.Title, &q.Description,
		&q.Status, &q.CreatorID, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}
