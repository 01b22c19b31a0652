package nudge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

type nudgeRepoPG struct{ pool *pgxpool.Pool }

func NewNudgeRepoPG(pool *pgxpool.Pool) NudgeRepository {
	return &nudgeRepoPG{pool: pool}
}

const nudgeCols = `id, patient_id, category, priority, title, message, action_text,
	target_behavior, delivery_method, delivered_at, viewed_at, clicked_at,
	dismissed_at, user_feedback, created_at, expires_at`

func scanNudge(row pgx.Row) (*Nudge, error) {
	var n Nudge
	err := row.Scan(&n.ID, &n.PatientID, &n.Category, &n.Priority, &n.Title, &n.Message, &n.ActionText,
		&n.TargetBehavior, &n.DeliveryMethod, &n.DeliveredAt, &n.ViewedAt, &n.ClickedAt,
		&n.DismissedAt, &n.UserFeedback, &n.CreatedAt, &n.ExpiresAt)
	return &n, err
}

func (r *nudgeRepoPG) Create(ctx context.Context, n *Nudge) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO smart_nudges (id, patient_id, category, priority, title, message,
			action_text, target_behavior, delivery_method, delivered_at, viewed_at,
			clicked_at, dismissed_at, user_feedback, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		n.ID, n.PatientID, n.Category, n.Priority, n.Title, n.Message,
		n.ActionText, n.TargetBehavior, n.DeliveryMethod, n.DeliveredAt, n.ViewedAt,
		n.ClickedAt, n.DismissedAt, n.UserFeedback, n.CreatedAt, n.ExpiresAt)
	return err
}

func (r *nudgeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Nudge, error) {
	return scanNudge(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+nudgeCols+` FROM smart_nudges WHERE id = $1`, id))
}

func (r *nudgeRepoPG) Update(ctx context.Context, n *Nudge) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE smart_nudges SET delivered_at = $2, viewed_at = $3, clicked_at = $4,
			dismissed_at = $5, user_feedback = $6
		WHERE id = $1`,
		n.ID, n.DeliveredAt, n.ViewedAt, n.ClickedAt, n.DismissedAt, n.UserFeedback)
	return err
}

func (r *nudgeRepoPG) ListActive(ctx context.Context, patientID uuid.UUID, now time.Time) ([]*Nudge, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+nudgeCols+` FROM smart_nudges
		WHERE patient_id = $1 AND expires_at > $2 AND dismissed_at IS NULL
		ORDER BY CASE priority
			WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3
		END, created_at DESC`,
		patientID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Nudge
	for rows.Next() {
		n, err := scanNudge(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *nudgeRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Nudge, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM smart_nudges WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+nudgeCols+` FROM smart_nudges WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Nudge
	for rows.Next() {
		n, err := scanNudge(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

type predictionRepoPG struct{ pool *pgxpool.Pool }

func NewPredictionRepoPG(pool *pgxpool.Pool) PredictionRepository {
	return &predictionRepoPG{pool: pool}
}

const predictionCols = `id, patient_id, prediction_type, time_horizon, probability, confidence,
	predicted_value, description, key_factors, model_name, model_version,
	actual_outcome, outcome_recorded_at, created_at, expires_at`

func scanPrediction(row pgx.Row) (*Prediction, error) {
	var p Prediction
	err := row.Scan(&p.ID, &p.PatientID, &p.PredictionType, &p.TimeHorizon, &p.Probability, &p.Confidence,
		&p.PredictedValue, &p.Description, &p.KeyFactors, &p.ModelName, &p.ModelVersion,
		&p.ActualOutcome, &p.OutcomeRecordedAt, &p.CreatedAt, &p.ExpiresAt)
	return &p, err
}

func (r *predictionRepoPG) Create(ctx context.Context, p *Prediction) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO health_predictions (id, patient_id, prediction_type, time_horizon,
			probability, confidence, predicted_value, description, key_factors,
			model_name, model_version, actual_outcome, outcome_recorded_at, created_at, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		p.ID, p.PatientID, p.PredictionType, p.TimeHorizon,
		p.Probability, p.Confidence, p.PredictedValue, p.Description, p.KeyFactors,
		p.ModelName, p.ModelVersion, p.ActualOutcome, p.OutcomeRecordedAt, p.CreatedAt, p.ExpiresAt)
	return err
}

func (r *predictionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prediction, error) {
	return scanPrediction(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+predictionCols+` FROM health_predictions WHERE id = $1`, id))
}

func (r *predictionRepoPG) Update(ctx context.Context, p *Prediction) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE health_predictions SET actual_outcome = $2, outcome_recorded_at = $3
		WHERE id = $1`,
		p.ID, p.ActualOutcome, p.OutcomeRecordedAt)
	return err
}

func (r *predictionRepoPG) ListActive(ctx context.Context, patientID uuid.UUID, now time.Time) ([]*Prediction, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+predictionCols+` FROM health_predictions
		WHERE patient_id = $1 AND expires_at > $2
		ORDER BY created_at DESC`,
		patientID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *predictionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prediction, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM health_predictions WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+predictionCols+` FROM health_predictions WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
