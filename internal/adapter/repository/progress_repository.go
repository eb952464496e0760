package repository

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/VastSea0/italiano-sub000/internal/entity"
	"github.com/VastSea0/italiano-sub000/internal/infrastructure/database"
	"github.com/VastSea0/italiano-sub000/internal/repository"
	"github.com/VastSea0/italiano-sub000/pkg/filterexpr"
)

type ProgressRepository struct {
	drv dialect.Driver
}

// NewProgressRepository constructs a SQL-backed progress store.
func NewProgressRepository(drv dialect.Driver) repository.ProgressRepository {
	return &ProgressRepository{drv: drv}
}

var progressColumns = database.ColumnNames(database.ProgressTable)

func (r *ProgressRepository) Get(ctx context.Context, learnerID, itemID string) (*entity.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query, args := r.selectProgress().
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("item_id", itemID),
		)).
		Limit(1).
		Query()

	records, err := r.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	if len(records) == 0 {
		return nil, entity.ErrProgressNotFound
	}
	return &records[0], nil
}

func (r *ProgressRepository) Snapshot(ctx context.Context, learnerID string) (map[string]entity.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query, args := r.selectProgress().
		Where(entsql.EQ("learner_id", learnerID)).
		Query()

	records, err := r.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("snapshot progress: %w", err)
	}
	snapshot := make(map[string]entity.Progress, len(records))
	for _, record := range records {
		snapshot[record.ItemID] = record
	}
	return snapshot, nil
}

// Upsert writes the record keyed by (learner_id, item_id). created_at is
// kept from the stored row on conflict.
func (r *ProgressRepository) Upsert(ctx context.Context, progress *entity.Progress) (*entity.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, entity.ErrInvalidItemID
	}
	record := progress.Clone()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = record.UpdatedAt
	}

	query, args := entsql.Dialect(r.drv.Dialect()).
		Insert(database.ProgressTable.Name).
		Columns(progressColumns...).
		Values(progressValues(record)...).
		OnConflict(
			entsql.ConflictColumns("learner_id", "item_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, col := range progressColumns {
					switch col {
					case "learner_id", "item_id", "created_at":
						continue
					}
					u.SetExcluded(col)
				}
			}),
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateProgress
		}
		return nil, fmt.Errorf("upsert progress: %w", err)
	}
	return record, nil
}

func (r *ProgressRepository) List(ctx context.Context, query *repository.ListProgressQuery) ([]entity.Progress, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	filters, err := filterexpr.ParseFilter(query.GetFilter(), listProgressSchema)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: filter: %v", entity.ErrInvalidFilter, err)
	}
	terms, err := filterexpr.ParseOrder(query.GetOrderBy(), listProgressSchema.Order)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: order_by: %v", entity.ErrInvalidFilter, err)
	}

	// Predicates carry builder state, so each statement gets a fresh set.
	where := func() (*entsql.Predicate, error) {
		preds := []*entsql.Predicate{entsql.EQ("learner_id", query.LearnerID)}
		for _, f := range filters {
			p, err := toPredicate(f)
			if err != nil {
				return nil, err
			}
			preds = append(preds, p)
		}
		return entsql.And(preds...), nil
	}

	countWhere, err := where()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}
	countQuery, countArgs := entsql.Dialect(r.drv.Dialect()).
		Select(entsql.Count("*")).
		From(entsql.Table(database.ProgressTable.Name)).
		Where(countWhere).
		Query()
	var total int64
	if err := scanOne(ctx, r.drv, countQuery, countArgs, &total); err != nil {
		return nil, 0, fmt.Errorf("count progress: %w", err)
	}

	listWhere, err := where()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}
	listQuery, listArgs := r.selectProgress().
		Where(listWhere).
		OrderBy(orderClauses(terms)...).
		Limit(int(query.Limit())).
		Offset(int(query.Offset())).
		Query()
	records, err := r.query(ctx, listQuery, listArgs)
	if err != nil {
		return nil, 0, fmt.Errorf("list progress: %w", err)
	}
	return records, total, nil
}

func (r *ProgressRepository) selectProgress() *entsql.Selector {
	return entsql.Dialect(r.drv.Dialect()).
		Select(progressColumns...).
		From(entsql.Table(database.ProgressTable.Name))
}

func (r *ProgressRepository) query(ctx context.Context, query string, args []any) ([]entity.Progress, error) {
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []entity.Progress
	for rows.Next() {
		record, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func progressValues(p *entity.Progress) []any {
	var lastReviewed any
	if p.LastReviewedAt != nil {
		lastReviewed = p.LastReviewedAt.UTC()
	}
	return []any{
		p.LearnerID,
		p.ItemID,
		p.IntervalDays,
		p.RepetitionCount,
		p.EaseFactor,
		p.CurrentEaseFactor(),
		p.DueAt.UTC(),
		lastReviewed,
		p.LapseCount,
		p.StreakCount,
		string(p.Status),
		p.LastQuality,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	}
}

func scanProgress(rows *entsql.Rows) (entity.Progress, error) {
	var (
		p            entity.Progress
		status       string
		lastReviewed sql.NullTime
	)
	if err := rows.Scan(
		&p.LearnerID,
		&p.ItemID,
		&p.IntervalDays,
		&p.RepetitionCount,
		&p.EaseFactor,
		&p.EaseFactorExact,
		&p.DueAt,
		&lastReviewed,
		&p.LapseCount,
		&p.StreakCount,
		&status,
		&p.LastQuality,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return entity.Progress{}, fmt.Errorf("scan progress: %w", err)
	}
	p.Status = entity.ParseStatus(status)
	p.DueAt = p.DueAt.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	if lastReviewed.Valid {
		t := lastReviewed.Time.UTC()
		p.LastReviewedAt = &t
	}
	return p, nil
}
