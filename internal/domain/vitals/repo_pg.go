package vitals

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

// --- vital signs ---

type vitalSignsRepoPG struct{ pool *pgxpool.Pool }

func NewVitalSignsRepoPG(pool *pgxpool.Pool) VitalSignsRepository {
	return &vitalSignsRepoPG{pool: pool}
}

const vitalCols = `id, patient_id, systolic_bp, diastolic_bp, heart_rate, temperature,
	weight, height, blood_glucose, oxygen_saturation, respiratory_rate,
	measured_at, source, notes, created_at`

func scanVitals(row pgx.Row) (*VitalSigns, error) {
	var v VitalSigns
	err := row.Scan(&v.ID, &v.PatientID, &v.SystolicBP, &v.DiastolicBP, &v.HeartRate, &v.Temperature,
		&v.Weight, &v.Height, &v.BloodGlucose, &v.OxygenSaturation, &v.RespiratoryRate,
		&v.MeasuredAt, &v.Source, &v.Notes, &v.CreatedAt)
	return &v, err
}

func (r *vitalSignsRepoPG) Create(ctx context.Context, v *VitalSigns) error {
	v.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO vital_signs (id, patient_id, systolic_bp, diastolic_bp, heart_rate,
			temperature, weight, height, blood_glucose, oxygen_saturation,
			respiratory_rate, measured_at, source, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		v.ID, v.PatientID, v.SystolicBP, v.DiastolicBP, v.HeartRate,
		v.Temperature, v.Weight, v.Height, v.BloodGlucose, v.OxygenSaturation,
		v.RespiratoryRate, v.MeasuredAt, v.Source, v.Notes)
	return err
}

func (r *vitalSignsRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*VitalSigns, error) {
	return scanVitals(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+vitalCols+` FROM vital_signs WHERE id = $1`, id))
}

func (r *vitalSignsRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*VitalSigns, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM vital_signs WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+vitalCols+` FROM vital_signs WHERE patient_id = $1 ORDER BY measured_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectVitals(rows)
	return items, total, err
}

func (r *vitalSignsRepoPG) ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*VitalSigns, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+vitalCols+` FROM vital_signs WHERE patient_id = $1 AND measured_at >= $2 ORDER BY measured_at ASC`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVitals(rows)
}

func (r *vitalSignsRepoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*VitalSigns, error) {
	return scanVitals(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+vitalCols+` FROM vital_signs WHERE patient_id = $1 ORDER BY measured_at DESC LIMIT 1`, patientID))
}

func collectVitals(rows pgx.Rows) ([]*VitalSigns, error) {
	var items []*VitalSigns
	for rows.Next() {
		v, err := scanVitals(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// --- lifestyle metrics ---

type lifestyleRepoPG struct{ pool *pgxpool.Pool }

func NewLifestyleRepoPG(pool *pgxpool.Pool) LifestyleRepository {
	return &lifestyleRepoPG{pool: pool}
}

const lifestyleCols = `id, patient_id, stress_level, mood_rating, sleep_hours,
	sleep_quality, activity_level, exercise_minutes, steps_count,
	medication_adherence, recorded_at, notes, created_at`

func scanLifestyle(row pgx.Row) (*LifestyleMetrics, error) {
	var m LifestyleMetrics
	err := row.Scan(&m.ID, &m.PatientID, &m.StressLevel, &m.MoodRating, &m.SleepHours,
		&m.SleepQuality, &m.ActivityLevel, &m.ExerciseMinutes, &m.StepsCount,
		&m.MedicationAdherence, &m.RecordedAt, &m.Notes, &m.CreatedAt)
	return &m, err
}

func (r *lifestyleRepoPG) Create(ctx context.Context, m *LifestyleMetrics) error {
	m.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO lifestyle_metrics (id, patient_id, stress_level, mood_rating, sleep_hours,
			sleep_quality, activity_level, exercise_minutes, steps_count,
			medication_adherence, recorded_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		m.ID, m.PatientID, m.StressLevel, m.MoodRating, m.SleepHours,
		m.SleepQuality, m.ActivityLevel, m.ExerciseMinutes, m.StepsCount,
		m.MedicationAdherence, m.RecordedAt, m.Notes)
	return err
}

func (r *lifestyleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LifestyleMetrics, error) {
	return scanLifestyle(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+lifestyleCols+` FROM lifestyle_metrics WHERE id = $1`, id))
}

func (r *lifestyleRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LifestyleMetrics, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM lifestyle_metrics WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+lifestyleCols+` FROM lifestyle_metrics WHERE patient_id = $1 ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectLifestyle(rows)
	return items, total, err
}

func (r *lifestyleRepoPG) ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*LifestyleMetrics, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+lifestyleCols+` FROM lifestyle_metrics WHERE patient_id = $1 AND recorded_at >= $2 ORDER BY recorded_at ASC`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLifestyle(rows)
}

func collectLifestyle(rows pgx.Rows) ([]*LifestyleMetrics, error) {
	var items []*LifestyleMetrics
	for rows.Next() {
		m, err := scanLifestyle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// --- symptom reports ---

type symptomRepoPG struct{ pool *pgxpool.Pool }

func NewSymptomRepoPG(pool *pgxpool.Pool) SymptomRepository {
	return &symptomRepoPG{pool: pool}
}

const symptomCols = `id, patient_id, symptom_name, description, severity, onset_time,
	duration_hours, triggers, resolved, resolved_at, reported_at`

func scanSymptom(row pgx.Row) (*SymptomReport, error) {
	var s SymptomReport
	err := row.Scan(&s.ID, &s.PatientID, &s.SymptomName, &s.Description, &s.Severity, &s.OnsetTime,
		&s.DurationHours, &s.Triggers, &s.Resolved, &s.ResolvedAt, &s.ReportedAt)
	return &s, err
}

func (r *symptomRepoPG) Create(ctx context.Context, s *SymptomReport) error {
	s.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO symptom_reports (id, patient_id, symptom_name, description, severity,
			onset_time, duration_hours, triggers, resolved)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.PatientID, s.SymptomName, s.Description, s.Severity,
		s.OnsetTime, s.DurationHours, s.Triggers, s.Resolved)
	return err
}

func (r *symptomRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SymptomReport, error) {
	return scanSymptom(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+symptomCols+` FROM symptom_reports WHERE id = $1`, id))
}

func (r *symptomRepoPG) Update(ctx context.Context, s *SymptomReport) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE symptom_reports SET resolved=$2, resolved_at=$3 WHERE id = $1`,
		s.ID, s.Resolved, s.ResolvedAt)
	return err
}

func (r *symptomRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*SymptomReport, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM symptom_reports WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+symptomCols+` FROM symptom_reports WHERE patient_id = $1 ORDER BY reported_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectSymptoms(rows)
	return items, total, err
}

func (r *symptomRepoPG) ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*SymptomReport, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+symptomCols+` FROM symptom_reports WHERE patient_id = $1 AND reported_at >= $2 ORDER BY reported_at ASC`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSymptoms(rows)
}

func collectSymptoms(rows pgx.Rows) ([]*SymptomReport, error) {
	var items []*SymptomReport
	for rows.Next() {
		s, err := scanSymptom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
