package patient

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// --- profiles ---

type profileRepoPG struct{ pool *pgxpool.Pool }

func NewProfileRepoPG(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepoPG{pool: pool}
}

const profileCols = `id, user_id, date_of_birth, gender, phone_number,
	emergency_contact, emergency_phone, chronic_conditions, medications, allergies,
	stability_score, risk_level, last_assessment, active, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.UserID, &p.DateOfBirth, &p.Gender, &p.PhoneNumber,
		&p.EmergencyContact, &p.EmergencyPhone, &p.ChronicConditions, &p.Medications, &p.Allergies,
		&p.StabilityScore, &p.RiskLevel, &p.LastAssessment, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *profileRepoPG) Create(ctx context.Context, p *Profile) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patient_profiles (id, user_id, date_of_birth, gender, phone_number,
			emergency_contact, emergency_phone, chronic_conditions, medications, allergies,
			stability_score, risk_level, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.ID, p.UserID, p.DateOfBirth, p.Gender, p.PhoneNumber,
		p.EmergencyContact, p.EmergencyPhone, p.ChronicConditions, p.Medications, p.Allergies,
		p.StabilityScore, p.RiskLevel, p.Active)
	return err
}

func (r *profileRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return scanProfile(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+profileCols+` FROM patient_profiles WHERE id = $1`, id))
}

func (r *profileRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return scanProfile(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+profileCols+` FROM patient_profiles WHERE user_id = $1`, userID))
}

func (r *profileRepoPG) Update(ctx context.Context, p *Profile) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE patient_profiles SET date_of_birth=$2, gender=$3, phone_number=$4,
			emergency_contact=$5, emergency_phone=$6, chronic_conditions=$7, medications=$8,
			allergies=$9, stability_score=$10, risk_level=$11, last_assessment=$12,
			active=$13, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.DateOfBirth, p.Gender, p.PhoneNumber,
		p.EmergencyContact, p.EmergencyPhone, p.ChronicConditions, p.Medications,
		p.Allergies, p.StabilityScore, p.RiskLevel, p.LastAssessment, p.Active)
	return err
}

func (r *profileRepoPG) List(ctx context.Context, limit, offset int) ([]*Profile, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_profiles WHERE active`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+profileCols+` FROM patient_profiles WHERE active ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectProfiles(rows, total)
}

func (r *profileRepoPG) ListByRiskLevel(ctx context.Context, riskLevel string, limit, offset int) ([]*Profile, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_profiles WHERE active AND risk_level = $1`, riskLevel).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+profileCols+` FROM patient_profiles WHERE active AND risk_level = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		riskLevel, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectProfiles(rows, total)
}

func collectProfiles(rows pgx.Rows, total int) ([]*Profile, int, error) {
	var items []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

// --- health goals ---

type goalRepoPG struct{ pool *pgxpool.Pool }

func NewGoalRepoPG(pool *pgxpool.Pool) GoalRepository {
	return &goalRepoPG{pool: pool}
}

const goalCols = `id, patient_id, goal_type, title, description, target_value,
	current_value, unit, target_date, status, created_at, updated_at`

func scanGoal(row pgx.Row) (*HealthGoal, error) {
	var g HealthGoal
	err := row.Scan(&g.ID, &g.PatientID, &g.GoalType, &g.Title, &g.Description,
		&g.TargetValue, &g.CurrentValue, &g.Unit, &g.TargetDate, &g.Status,
		&g.CreatedAt, &g.UpdatedAt)
	return &g, err
}

func (r *goalRepoPG) Create(ctx context.Context, g *HealthGoal) error {
	g.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO health_goals (id, patient_id, goal_type, title, description,
			target_value, current_value, unit, target_date, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		g.ID, g.PatientID, g.GoalType, g.Title, g.Description,
		g.TargetValue, g.CurrentValue, g.Unit, g.TargetDate, g.Status)
	return err
}

func (r *goalRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthGoal, error) {
	return scanGoal(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+goalCols+` FROM health_goals WHERE id = $1`, id))
}

func (r *goalRepoPG) Update(ctx context.Context, g *HealthGoal) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE health_goals SET goal_type=$2, title=$3, description=$4, target_value=$5,
			current_value=$6, unit=$7, target_date=$8, status=$9, updated_at=NOW()
		WHERE id = $1`,
		g.ID, g.GoalType, g.Title, g.Description, g.TargetValue,
		g.CurrentValue, g.Unit, g.TargetDate, g.Status)
	return err
}

func (r *goalRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM health_goals WHERE id = $1`, id)
	return err
}

func (r *goalRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthGoal, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM health_goals WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+goalCols+` FROM health_goals WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*HealthGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, g)
	}
	return items, total, nil
}

// --- notes ---

type noteRepoPG struct{ pool *pgxpool.Pool }

func NewNoteRepoPG(pool *pgxpool.Pool) NoteRepository {
	return &noteRepoPG{pool: pool}
}

const noteCols = `id, patient_id, note_type, title, content, author_id, private,
	tags, created_at, updated_at`

func scanNote(row pgx.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.PatientID, &n.NoteType, &n.Title, &n.Content,
		&n.AuthorID, &n.Private, &n.Tags, &n.CreatedAt, &n.UpdatedAt)
	return &n, err
}

func (r *noteRepoPG) Create(ctx context.Context, n *Note) error {
	n.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patient_notes (id, patient_id, note_type, title, content, author_id, private, tags)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID, n.PatientID, n.NoteType, n.Title, n.Content, n.AuthorID, n.Private, n.Tags)
	return err
}

func (r *noteRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Note, error) {
	return scanNote(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+noteCols+` FROM patient_notes WHERE id = $1`, id))
}

func (r *noteRepoPG) Update(ctx context.Context, n *Note) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE patient_notes SET note_type=$2, title=$3, content=$4, private=$5, tags=$6, updated_at=NOW()
		WHERE id = $1`,
		n.ID, n.NoteType, n.Title, n.Content, n.Private, n.Tags)
	return err
}

func (r *noteRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM patient_notes WHERE id = $1`, id)
	return err
}

func (r *noteRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, includePrivate bool, limit, offset int) ([]*Note, int, error) {
	where := `WHERE patient_id = $1`
	if !includePrivate {
		where += ` AND NOT private`
	}
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_notes `+where, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+noteCols+` FROM patient_notes `+where+` ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, nil
}
