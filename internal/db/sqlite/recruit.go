package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"raid-bot/internal/recruit"
	"time"

	"github.com/mattn/go-sqlite3"
)

const recruitmentColumns = `
	id, category, kind, difficulty, capacity, start_time, note,
	leader_id, channel_id, thread_id, message_id, created_at, updated_at
`

type sqliteRecruitmentRepository struct {
	db *sql.DB
}

func NewRecruitmentRepository(db *sql.DB) recruit.RecruitmentRepository {
	return &sqliteRecruitmentRepository{
		db: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecruitment(row rowScanner) (*recruit.Recruitment, error) {
	var r recruit.Recruitment
	var messageID sql.NullString
	var updatedAt sql.NullTime
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
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.MessageID = recruit.MessageID(messageID.String)
	if updatedAt.Valid {
		r.UpdatedAt = &updatedAt.Time
	}
	return &r, nil
}

func (r *sqliteRecruitmentRepository) Create(ctx context.Context, state *recruit.Recruitment) (recruit.RecruitmentID, error) {
	query := `
		INSERT INTO recruitments (category, kind, difficulty, capacity, start_time, note, leader_id, channel_id, thread_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := state.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := r.db.ExecContext(
		ctx,
		query,
		state.Category,
		state.Kind,
		state.Difficulty,
		state.Capacity,
		state.StartTime,
		state.Note,
		state.LeaderID,
		state.ChannelID,
		state.ThreadID,
		createdAt,
	)
	if err != nil {
		return 0, recruit.StoreError("create recruitment", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, recruit.StoreError("get last insert id", err)
	}

	return recruit.RecruitmentID(id), nil
}

func (r *sqliteRecruitmentRepository) UpdateMessageID(ctx context.Context, id recruit.RecruitmentID, messageID recruit.MessageID) error {
	query := `
		UPDATE recruitments
		SET message_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, messageID, time.Now(), id)
	if err != nil {
		return recruit.StoreError("update message id", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return recruit.StoreError("get rows affected", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: %d", recruit.ErrRecruitmentNotFound, id)
	}

	return nil
}

func (r *sqliteRecruitmentRepository) Get(ctx context.Context, id recruit.RecruitmentID) (*recruit.Recruitment, error) {
	query := `SELECT ` + recruitmentColumns + ` FROM recruitments WHERE id = ?`

	state, err := scanRecruitment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", recruit.ErrRecruitmentNotFound, id)
	}
	if err != nil {
		return nil, recruit.StoreError("get recruitment", err)
	}

	return state, nil
}

func (r *sqliteRecruitmentRepository) GetByMessage(
	ctx context.Context,
	threadID recruit.ThreadID,
	messageID recruit.MessageID,
) (*recruit.Recruitment, error) {
	query := `SELECT ` + recruitmentColumns + ` FROM recruitments WHERE thread_id = ? AND message_id = ?`

	state, err := scanRecruitment(r.db.QueryRowContext(ctx, query, threadID, messageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s, %s", recruit.ErrRecruitmentNotFound, threadID, messageID)
	}
	if err != nil {
		return nil, recruit.StoreError("get recruitment by message", err)
	}

	return state, nil
}

func (r *sqliteRecruitmentRepository) List(ctx context.Context) ([]*recruit.Recruitment, error) {
	query := `SELECT ` + recruitmentColumns + ` FROM recruitments ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
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

type sqliteParticipantRepository struct {
	db *sql.DB
}

func NewParticipantRepository(db *sql.DB) recruit.ParticipantRepository {
	return &sqliteParticipantRepository{
		db: db,
	}
}

func (r *sqliteParticipantRepository) Insert(ctx context.Context, id recruit.RecruitmentID, userID recruit.UserID) error {
	query := `
		INSERT INTO participants (recruitment_id, participant_id, created_at)
		VALUES (?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, id, userID, time.Now())
	if isUniqueViolation(err) {
		return recruit.ErrAlreadyApplied
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %d", recruit.ErrRecruitmentNotFound, id)
	}
	if err != nil {
		return recruit.StoreError("insert participant", err)
	}

	return nil
}

func (r *sqliteParticipantRepository) Delete(ctx context.Context, id recruit.RecruitmentID, userID recruit.UserID) (bool, error) {
	query := `
		DELETE FROM participants
		WHERE recruitment_id = ? AND participant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, recruit.StoreError("delete participant", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, recruit.StoreError("get rows affected", err)
	}

	return rows > 0, nil
}

func (r *sqliteParticipantRepository) List(ctx context.Context, id recruit.RecruitmentID) ([]recruit.Participant, error) {
	query := `
		SELECT seq, recruitment_id, participant_id, created_at
		FROM participants
		WHERE recruitment_id = ?
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, recruit.StoreError("list participants", err)
	}
	defer rows.Close()

	var participants []recruit.Participant
	for rows.Next() {
		var p recruit.Participant
		if err := rows.Scan(&p.Seq, &p.RecruitmentID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, recruit.StoreError("scan participant", err)
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, recruit.StoreError("iterate participants", err)
	}

	return participants, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
