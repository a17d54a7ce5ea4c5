package postgres

import (
	"context"
	"errors"
	"fmt"
	"raid-bot/internal/recruit"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recruitmentColumns = `
	id, category, kind, difficulty, capacity, start_time, note,
	leader_id, channel_id, thread_id, message_id, created_at, updated_at
`

type pgRecruitmentRepository struct {
	pool *pgxpool.Pool
}

func NewRecruitmentRepository(pool *pgxpool.Pool) recruit.RecruitmentRepository {
	return &pgRecruitmentRepository{
		pool: pool,
	}
}

func scanRecruitment(row pgx.Row) (*recruit.Recruitment, error) {
	var r recruit.Recruitment
	var messageID *string
	err := row.Scan(
		&r.ID,
		&r.Category,
		&r.Kind,
		&r.Difficulty,
		&r.Capacity,
		&r.StartTime,
		&r.Note,
		&r.LeaderID,
		&r.ChannelID,
		&r.ThreadID,
		&messageID,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if messageID != nil {
		r.MessageID = recruit.MessageID(*messageID)
	}
	return &r, nil
}

func (r *pgRecruitmentRepository) Create(ctx context.Context, state *recruit.Recruitment) (recruit.RecruitmentID, error) {
	query := `
		INSERT INTO recruitments (category, kind, difficulty, capacity, start_time, note, leader_id, channel_id, thread_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	createdAt := state.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id recruit.RecruitmentID
	err := r.pool.QueryRow(
		ctx,
		query,
		string(state.Category),
		state.Kind,
		state.Difficulty,
		state.Capacity,
		state.StartTime,
		state.Note,
		string(state.LeaderID),
		string(state.ChannelID),
		string(state.ThreadID),
		createdAt,
	).Scan(&id)
	if err != nil {
		return 0, recruit.StoreError("create recruitment", err)
	}

	return id, nil
}

func (r *pgRecruitmentRepository) UpdateMessageID(ctx context.Context, id recruit.RecruitmentID, messageID recruit.MessageID) error {
	query := `
		UPDATE recruitments
		SET message_id = $1, updated_at = now()
		WHERE id = $2
	`

	tag, err := r.pool.Exec(ctx, query, string(messageID), int64(id))
	if err != nil {
		return recruit.StoreError("update message id", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", recruit.ErrRecruitmentNotFound, id)
	}

	return nil
}

func (r *pgRecruitmentRepository) Get(ctx context.Context, id recruit.RecruitmentID) (*recruit.Recruitment, error) {
	query := `SELECT ` + recruitmentColumns + ` FROM recruitments WHERE id = $1`

	state, err := scanRecruitment(r.pool.QueryRow(ctx, query, int64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", recruit.ErrRecruitmentNotFound, id)
	}
	if err != nil {
		return nil, recruit.StoreError("get recruitment", err)
	}

	return state, nil
}

func (r *pgRecruitmentRepository) GetByMessage(
	ctx context.Context,
	threadID recruit.ThreadID,
	messageID recruit.MessageID,
) (*recruit.Recruitment, error) {
	query := `SELECT ` + recruitmentColumns + ` FROM recruitments WHERE thread_id = $1 AND message_id = $2`

	state, err := scanRecruitment(r.pool.QueryRow(ctx, query, string(threadID), string(messageID)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s, %s", recruit.ErrRecruitmentNotFound, threadID, messageID)
	}
	if err != nil {
		return nil, recruit.StoreError("get recruitment by message", err)
	}

	return state, nil
}

func (r *pgRecruitmentRepository) List(ctx context.Context) ([]*recruit.Recruitment, error) {
	query := `SELECT ` + recruitmentColumns + ` FROM recruitments ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, recruit.StoreError("list recruitments", err)
	}
	defer rows.Close()

	var recruitments []*recruit.Recruitment
	for rows.Next() {
		state, err := scanRecruitment(rows)
		if err != nil {
			return nil, recruit.StoreError("scan recruitment", err)
		}
		recruitments = append(recruitments, state)
	}

	if err := rows.Err(); err != nil {
		return nil, recruit.StoreError("iterate recruitments", err)
	}

	return recruitments, nil
}

type pgParticipantRepository struct {
	pool *pgxpool.Pool
}

func NewParticipantRepository(pool *pgxpool.Pool) recruit.ParticipantRepository {
	return &pgParticipantRepository{
		pool: pool,
	}
}

// Insert は募集行をロックしてから挿入する。
// 同じ募集への挿入がseq順にコミットされるので、挿入後の一覧で自分より前の行が必ず見える
func (r *pgParticipantRepository) Insert(ctx context.Context, id recruit.RecruitmentID, userID recruit.UserID) error {
	query := `
		WITH target AS (
			SELECT id FROM recruitments WHERE id = $1 FOR UPDATE
		)
		INSERT INTO participants (recruitment_id, participant_id)
		SELECT id, $2 FROM target
	`

	tag, err := r.pool.Exec(ctx, query, int64(id), string(userID))
	if isDuplicateParticipant(err) {
		return recruit.ErrAlreadyApplied
	}
	if err != nil {
		return recruit.StoreError("insert participant", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", recruit.ErrRecruitmentNotFound, id)
	}

	return nil
}

func (r *pgParticipantRepository) Delete(ctx context.Context, id recruit.RecruitmentID, userID recruit.UserID) (bool, error) {
	query := `
		DELETE FROM participants
		WHERE recruitment_id = $1 AND participant_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, int64(id), string(userID))
	if err != nil {
		return false, recruit.StoreError("delete participant", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *pgParticipantRepository) List(ctx context.Context, id recruit.RecruitmentID) ([]recruit.Participant, error) {
	query := `
		SELECT seq, recruitment_id, participant_id, created_at
		FROM participants
		WHERE recruitment_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.pool.Query(ctx, query, int64(id))
	if err != nil {
		return nil, recruit.StoreError("list participants", err)
	}
	defer rows.Close()

	var participants []recruit.Participant
	for rows.Next() {
		var p recruit.Participant
		var recruitmentID int64
		var userID string
		if err := rows.Scan(&p.Seq, &recruitmentID, &userID, &p.CreatedAt); err != nil {
			return nil, recruit.StoreError("scan participant", err)
		}
		p.RecruitmentID = recruit.RecruitmentID(recruitmentID)
		p.UserID = recruit.UserID(userID)
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, recruit.StoreError("iterate participants", err)
	}

	return participants, nil
}
