package medication

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

// --- alerts ---

type alertRepoPG struct{ pool *pgxpool.Pool }

func NewAlertRepoPG(pool *pgxpool.Pool) AlertRepository {
	return &alertRepoPG{pool: pool}
}

const alertCols = `id, patient_id, medicine_name, dosage, form, instructions,
	alert_type, times_per_day, alert_times, priority, snooze_minutes,
	start_date, end_date, status, enabled, created_at, updated_at`

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.PatientID, &a.MedicineName, &a.Dosage, &a.Form, &a.Instructions,
		&a.AlertType, &a.TimesPerDay, &a.AlertTimes, &a.Priority, &a.SnoozeMinutes,
		&a.StartDate, &a.EndDate, &a.Status, &a.Enabled, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *alertRepoPG) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO medicine_alerts (id, patient_id, medicine_name, dosage, form, instructions,
			alert_type, times_per_day, alert_times, priority, snooze_minutes,
			start_date, end_date, status, enabled)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		a.ID, a.PatientID, a.MedicineName, a.Dosage, a.Form, a.Instructions,
		a.AlertType, a.TimesPerDay, a.AlertTimes, a.Priority, a.SnoozeMinutes,
		a.StartDate, a.EndDate, a.Status, a.Enabled)
	return err
}

func (r *alertRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return scanAlert(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+alertCols+` FROM medicine_alerts WHERE id = $1`, id))
}

func (r *alertRepoPG) Update(ctx context.Context, a *Alert) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE medicine_alerts SET medicine_name=$2, dosage=$3, form=$4, instructions=$5,
			alert_type=$6, times_per_day=$7, alert_times=$8, priority=$9,
			snooze_minutes=$10, start_date=$11, end_date=$12, status=$13,
			enabled=$14, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.MedicineName, a.Dosage, a.Form, a.Instructions,
		a.AlertType, a.TimesPerDay, a.AlertTimes, a.Priority,
		a.SnoozeMinutes, a.StartDate, a.EndDate, a.Status, a.Enabled)
	return err
}

func (r *alertRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM medicine_alerts WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+alertCols+` FROM medicine_alerts WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectAlerts(rows)
	return items, total, err
}

func (r *alertRepoPG) ListActiveByPatient(ctx context.Context, patientID uuid.UUID) ([]*Alert, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+alertCols+` FROM medicine_alerts
		 WHERE patient_id = $1 AND status = 'active' AND enabled
		 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func collectAlerts(rows pgx.Rows) ([]*Alert, error) {
	var items []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// --- intakes ---

type intakeRepoPG struct{ pool *pgxpool.Pool }

func NewIntakeRepoPG(pool *pgxpool.Pool) IntakeRepository {
	return &intakeRepoPG{pool: pool}
}

const intakeCols = `id, alert_id, patient_id, scheduled_time, actual_time, status,
	dosage_taken, notes, side_effects, recorded_at`

func scanIntake(row pgx.Row) (*Intake, error) {
	var i Intake
	err := row.Scan(&i.ID, &i.AlertID, &i.PatientID, &i.ScheduledTime, &i.ActualTime, &i.Status,
		&i.DosageTaken, &i.Notes, &i.SideEffects, &i.RecordedAt)
	return &i, err
}

func (r *intakeRepoPG) Create(ctx context.Context, i *Intake) error {
	i.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO medicine_intakes (id, alert_id, patient_id, scheduled_time, actual_time,
			status, dosage_taken, notes, side_effects)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		i.ID, i.AlertID, i.PatientID, i.ScheduledTime, i.ActualTime,
		i.Status, i.DosageTaken, i.Notes, i.SideEffects)
	return err
}

func (r *intakeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Intake, error) {
	return scanIntake(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+intakeCols+` FROM medicine_intakes WHERE id = $1`, id))
}

func (r *intakeRepoPG) ListByAlert(ctx context.Context, alertID uuid.UUID, limit, offset int) ([]*Intake, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM medicine_intakes WHERE alert_id = $1`, alertID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+intakeCols+` FROM medicine_intakes WHERE alert_id = $1 ORDER BY scheduled_time DESC LIMIT $2 OFFSET $3`,
		alertID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectIntakes(rows)
	return items, total, err
}

func (r *intakeRepoPG) ListSince(ctx context.Context, patientID uuid.UUID, since time.Time) ([]*Intake, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+intakeCols+` FROM medicine_intakes WHERE patient_id = $1 AND scheduled_time >= $2 ORDER BY scheduled_time ASC`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIntakes(rows)
}

func collectIntakes(rows pgx.Rows) ([]*Intake, error) {
	var items []*Intake
	for rows.Next() {
		i, err := scanIntake(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
