package postgres

import (
	"context"
	"database/sql"
	"errors"

	"inquiry-system/internal/domain/vote"
)

type VoteRepo struct {
	db *sql.DB
}

func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

const voteColumns = `id, inquiry_id, user_id, value, created_at, deleted_at`

func (r *VoteRepo) Get(ctx context.Context, inquiryID, userID int64) (*vote.Vote, error) {
	return r.getOne(ctx, `WHERE inquiry_id = $1 AND user_id = $2`, inquiryID, userID)
}

func (r *VoteRepo) GetByID(ctx context.Context, id int64) (*vote.Vote, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// Upsert writes the user's vote, reviving a soft deleted row for the same pair.
func (r *VoteRepo) Upsert(ctx context.Context, v *vote.Vote) error {
	return r.db.QueryRowContext(ctx, `
        INSERT INTO votes (inquiry_id, user_id, value)
        VALUES ($1, $2, $3)
        ON CONFLICT (inquiry_id, user_id) DO UPDATE
        SET value = EXCLUDED.value,
            deleted_at = NULL
        RETURNING id, created_at
    `, v.InquiryID, v.UserID, int16(v.Value)).Scan(&v.ID, &v.CreatedAt)
}

func (r *VoteRepo) SoftDelete(ctx context.Context, inquiryID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE votes SET deleted_at = now()
        WHERE inquiry_id = $1 AND user_id = $2 AND deleted_at IS NULL
    `, inquiryID, userID)
	return affectedOne(res, err)
}

func (r *VoteRepo) Restore(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE votes SET deleted_at = NULL WHERE id = $1`, id)
	return affectedOne(res, err)
}

func (r *VoteRepo) ListByInquiry(ctx context.Context, inquiryID int64) ([]vote.Vote, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+voteColumns+` FROM votes WHERE inquiry_id = $1 ORDER BY id`, inquiryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []vote.Vote
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (r *VoteRepo) getOne(ctx context.Context, where string, args ...any) (*vote.Vote, error) {
	v, err := scanVote(r.db.QueryRowContext(ctx, `SELECT `+voteColumns+` FROM votes `+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, vote.ErrVoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scanVote(s scanner) (vote.Vote, error) {
	var v vote.Vote
	var value int16
	err := s.Scan(&v.ID, &v.InquiryID, &v.UserID, &value, &v.CreatedAt, &v.DeletedAt)
	v.Value = vote.Value(value)
	return v, err
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return vote.ErrVoteNotFound
	}
	return nil
}
