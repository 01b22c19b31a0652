package scoring

import (
	"context"

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

type scoreRepoPG struct{ pool *pgxpool.Pool }

func NewScoreRepoPG(pool *pgxpool.Pool) ScoreRepository {
	return &scoreRepoPG{pool: pool}
}

func (r *scoreRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const scoreCols = `id, patient_id, score, risk_level, vital_signs_score, lifestyle_score,
	medication_score, symptom_score, identified_risks, risk_probability,
	model_version, calculation_method, confidence_level, calculated_at`

func scanScore(row pgx.Row) (*StabilityScore, error) {
	var s StabilityScore
	err := row.Scan(&s.ID, &s.PatientID, &s.Score, &s.RiskLevel, &s.VitalSignsScore, &s.LifestyleScore,
		&s.MedicationScore, &s.SymptomScore, &s.IdentifiedRisks, &s.RiskProbability,
		&s.ModelVersion, &s.CalculationMethod, &s.ConfidenceLevel, &s.CalculatedAt)
	return &s, err
}

func (r *scoreRepoPG) Create(ctx context.Context, s *StabilityScore) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO stability_scores (id, patient_id, score, risk_level, vital_signs_score,
			lifestyle_score, medication_score, symptom_score, identified_risks,
			risk_probability, model_version, calculation_method, confidence_level, calculated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		s.ID, s.PatientID, s.Score, s.RiskLevel, s.VitalSignsScore,
		s.LifestyleScore, s.MedicationScore, s.SymptomScore, s.IdentifiedRisks,
		s.RiskProbability, s.ModelVersion, s.CalculationMethod, s.ConfidenceLevel, s.CalculatedAt)
	return err
}

func (r *scoreRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StabilityScore, error) {
	return scanScore(r.conn(ctx).QueryRow(ctx,
		`SELECT `+scoreCols+` FROM stability_scores WHERE id = $1`, id))
}

func (r *scoreRepoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*StabilityScore, error) {
	return scanScore(r.conn(ctx).QueryRow(ctx,
		`SELECT `+scoreCols+` FROM stability_scores WHERE patient_id = $1 ORDER BY calculated_at DESC LIMIT 1`,
		patientID))
}

func (r *scoreRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*StabilityScore, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM stability_scores WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+scoreCols+` FROM stability_scores WHERE patient_id = $1 ORDER BY calculated_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*StabilityScore
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}
