package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database"
	"github.com/VastSea0/italiano-sub000/internal/repository"
)

type SessionRepository struct {
	drv dialect.Driver
}

// NewSessionRepository constructs a SQL-backed session store.
func NewSessionRepository(drv dialect.Driver) repository.SessionRepository {
	return &SessionRepository{drv: drv}
}

var sessionColumns = database.ColumnNames(database.ReviewSessionsTable)

func (r *SessionRepository) Create(ctx context.Context, session *entity.ReviewSession) (*entity.ReviewSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query, args := entsql.Dialect(r.drv.Dialect()).
		Insert(database.ReviewSessionsTable.Name).
		Columns(sessionColumns...).
		Values(
			session.ID,
			session.LearnerID,
			session.ReviewCount,
			session.CorrectCount,
			session.Accuracy,
			session.Duration.Milliseconds(),
			session.StartedAt.UTC(),
			session.FinishedAt.UTC(),
			session.CreatedAt.UTC(),
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateSession
		}
		return nil, fmt.Errorf("create review session: %w", err)
	}
	saved := *session
	return &saved, nil
}

func (r *SessionRepository) List(ctx context.Context, query *repository.ListSessionQuery) ([]entity.ReviewSession, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	builder := entsql.Dialect(r.drv.Dialect())

	countQuery, countArgs := builder.
		Select(entsql.Count("*")).
		From(entsql.Table(database.ReviewSessionsTable.Name)).
		Where(entsql.EQ("learner_id", query.LearnerID)).
		Query()
	var total int64
	if err := scanOne(ctx, r.drv, countQuery, countArgs, &total); err != nil {
		return nil, 0, fmt.Errorf("count review sessions: %w", err)
	}

	listQuery, listArgs := builder.
		Select(sessionColumns...).
		From(entsql.Table(database.ReviewSessionsTable.Name)).
		Where(entsql.EQ("learner_id", query.LearnerID)).
		OrderBy(entsql.Desc("finished_at"), entsql.Asc("id")).
		Limit(int(query.Limit())).
		Offset(int(query.Offset())).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, listQuery, listArgs, rows); err != nil {
		return nil, 0, fmt.Errorf("list review sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]entity.ReviewSession, 0, query.Limit())
	for rows.Next() {
		var (
			s          entity.ReviewSession
			durationMS int64
		)
		if err := rows.Scan(
			&s.ID,
			&s.LearnerID,
			&s.ReviewCount,
			&s.CorrectCount,
			&s.Accuracy,
			&durationMS,
			&s.StartedAt,
			&s.FinishedAt,
			&s.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review session: %w", err)
		}
		s.Duration = time.Duration(durationMS) * time.Millisecond
		s.StartedAt = s.StartedAt.UTC()
		s.FinishedAt = s.FinishedAt.UTC()
		s.CreatedAt = s.CreatedAt.UTC()
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review sessions: %w", err)
	}
	return sessions, total, nil
}

func scanOne(ctx context.Context, drv dialect.Driver, query string, args []any, dest any) error {
	rows := &entsql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(dest); err != nil {
			return err
		}
	}
	return rows.Err()
}
