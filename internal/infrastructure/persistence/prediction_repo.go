package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"churnguard/internal/domain"
	"churnguard/internal/domain/entity"
	"churnguard/pkg/errcodes"
)

const predictionColumns = `id, client_id, record, probability, threshold, flagged,
	tier, recommendation, confidence, model_version, created_at`

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// withTx runs fn inside a transaction.
func (r *PredictionRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// Create stores one prediction.
func (r *PredictionRepository) Create(ctx context.Context, prediction *entity.Prediction) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		return r.createTx(ctx, tx, prediction)
	})
}

// CreateBatch stores predictions atomically.
func (r *PredictionRepository) CreateBatch(ctx context.Context, predictions []*entity.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		for i, prediction := range predictions {
			if err := r.createTx(ctx, tx, prediction); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError,
					fmt.Sprintf("failed at index %d", i))
			}
		}
		return nil
	})
}

// GetByID returns one stored prediction.
func (r *PredictionRepository) GetByID(ctx context.Context, id string) (*entity.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = $1`

	var schema predictionSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.PredictionNotFound, "prediction not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get prediction")
	}

	return schema.toDomain()
}

// ListRecent returns the latest predictions, newest first.
func (r *PredictionRepository) ListRecent(ctx context.Context, limit int) ([]entity.Prediction, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	var schemas []predictionSchema
	if err := r.db.SelectContext(ctx, &schemas, query, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list predictions")
	}

	predictions := make([]entity.Prediction, 0, len(schemas))
	for _, s := range schemas {
		prediction, err := s.toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert prediction")
		}
		predictions = append(predictions, *prediction)
	}

	return predictions, nil
}

// ListByClient returns the latest predictions of a single client.
func (r *PredictionRepository) ListByClient(ctx context.Context, clientID string, limit int) ([]entity.Prediction, error) {
	query := `SELECT ` + predictionColumns + `
		FROM predictions
		WHERE client_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	var schemas []predictionSchema
	if err := r.db.SelectContext(ctx, &schemas, query, clientID, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list predictions by client")
	}

	predictions := make([]entity.Prediction, 0, len(schemas))
	for _, s := range schemas {
		prediction, err := s.toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert prediction")
		}
		predictions = append(predictions, *prediction)
	}

	return predictions, nil
}

// CountByTier aggregates stored predictions per risk tier.
func (r *PredictionRepository) CountByTier(ctx context.Context) (map[entity.RiskTier]int64, error) {
	query := `SELECT tier, COUNT(*) AS total FROM predictions GROUP BY tier`

	var rows []struct {
		Tier  int   `db:"tier"`
		Total int64 `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to count predictions")
	}

	counts := make(map[entity.RiskTier]int64, len(rows))
	for _, row := range rows {
		counts[entity.RiskTier(row.Tier)] = row.Total
	}

	return counts, nil
}

func (r *PredictionRepository) createTx(ctx context.Context, tx *sqlx.Tx, prediction *entity.Prediction) error {
	schema, err := fromPrediction(prediction)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to marshal record")
	}

	query := `
		INSERT INTO predictions (` + predictionColumns + `)
		VALUES (:id, :client_id, :record, :probability, :threshold, :flagged,
			:tier, :recommendation, :confidence, :model_version, :created_at)`

	if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert prediction")
	}

	return nil
}
