package clinician

import (
	"context"
	"fmt"

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

const profileCols = `id, user_id, license_number, specialization, years_experience,
	phone_number, hospital_affiliation, department, medical_degree,
	board_certifications, languages_spoken, active, created_at, updated_at`

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.UserID, &p.LicenseNumber, &p.Specialization, &p.YearsExperience,
		&p.PhoneNumber, &p.HospitalAffiliation, &p.Department, &p.MedicalDegree,
		&p.BoardCertifications, &p.LanguagesSpoken, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *profileRepoPG) Create(ctx context.Context, p *Profile) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO clinician_profiles (id, user_id, license_number, specialization,
			years_experience, phone_number, hospital_affiliation, department,
			medical_degree, board_certifications, languages_spoken, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.UserID, p.LicenseNumber, p.Specialization,
		p.YearsExperience, p.PhoneNumber, p.HospitalAffiliation, p.Department,
		p.MedicalDegree, p.BoardCertifications, p.LanguagesSpoken, p.Active)
	return err
}

func (r *profileRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return scanProfile(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+profileCols+` FROM clinician_profiles WHERE id = $1`, id))
}

func (r *profileRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return scanProfile(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+profileCols+` FROM clinician_profiles WHERE user_id = $1`, userID))
}

func (r *profileRepoPG) GetByLicense(ctx context.Context, licenseNumber string) (*Profile, error) {
	return scanProfile(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+profileCols+` FROM clinician_profiles WHERE license_number = $1`, licenseNumber))
}

func (r *profileRepoPG) Update(ctx context.Context, p *Profile) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE clinician_profiles SET specialization=$2, years_experience=$3, phone_number=$4,
			hospital_affiliation=$5, department=$6, medical_degree=$7,
			board_certifications=$8, languages_spoken=$9, active=$10, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Specialization, p.YearsExperience, p.PhoneNumber,
		p.HospitalAffiliation, p.Department, p.MedicalDegree,
		p.BoardCertifications, p.LanguagesSpoken, p.Active)
	return err
}

func (r *profileRepoPG) List(ctx context.Context, specialization string, limit, offset int) ([]*Profile, int, error) {
	where := `WHERE active`
	args := []interface{}{}
	if specialization != "" {
		where += ` AND specialization = $1`
		args = append(args, specialization)
	}
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM clinician_profiles `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	listSQL := fmt.Sprintf(`SELECT %s FROM clinician_profiles %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		profileCols, where, len(args)+1, len(args)+2)
	rows, err := conn(ctx, r.pool).Query(ctx, listSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
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

// --- assignments ---

type assignmentRepoPG struct{ pool *pgxpool.Pool }

func NewAssignmentRepoPG(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepoPG{pool: pool}
}

const assignmentCols = `id, clinician_id, patient_id, assignment_type, status,
	assigned_at, ended_at, notes, created_at, updated_at`

func scanAssignment(row pgx.Row) (*Assignment, error) {
	var a Assignment
	err := row.Scan(&a.ID, &a.ClinicianID, &a.PatientID, &a.AssignmentType, &a.Status,
		&a.AssignedAt, &a.EndedAt, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *assignmentRepoPG) Create(ctx context.Context, a *Assignment) error {
	a.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patient_assignments (id, clinician_id, patient_id, assignment_type, status, assigned_at, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.ClinicianID, a.PatientID, a.AssignmentType, a.Status, a.AssignedAt, a.Notes)
	return err
}

func (r *assignmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error) {
	return scanAssignment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+assignmentCols+` FROM patient_assignments WHERE id = $1`, id))
}

func (r *assignmentRepoPG) Find(ctx context.Context, clinicianID, patientID uuid.UUID, assignmentType string) (*Assignment, error) {
	return scanAssignment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+assignmentCols+` FROM patient_assignments
		 WHERE clinician_id = $1 AND patient_id = $2 AND assignment_type = $3`,
		clinicianID, patientID, assignmentType))
}

func (r *assignmentRepoPG) Update(ctx context.Context, a *Assignment) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE patient_assignments SET status=$2, ended_at=$3, notes=$4, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.Status, a.EndedAt, a.Notes)
	return err
}

func (r *assignmentRepoPG) ListByClinician(ctx context.Context, clinicianID uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	return r.listBy(ctx, `clinician_id`, clinicianID, limit, offset)
}

func (r *assignmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	return r.listBy(ctx, `patient_id`, patientID, limit, offset)
}

func (r *assignmentRepoPG) listBy(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Assignment, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient_assignments WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+assignmentCols+` FROM patient_assignments WHERE `+col+` = $1 ORDER BY assigned_at DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, nil
}

// --- clinical notes ---

type clinicalNoteRepoPG struct{ pool *pgxpool.Pool }

func NewClinicalNoteRepoPG(pool *pgxpool.Pool) ClinicalNoteRepository {
	return &clinicalNoteRepoPG{pool: pool}
}

const clinicalNoteCols = `id, clinician_id, patient_id, note_type, title, content,
	diagnosis_codes, medications_prescribed, recommendations,
	follow_up_required, follow_up_date, created_at, updated_at`

func scanClinicalNote(row pgx.Row) (*ClinicalNote, error) {
	var n ClinicalNote
	err := row.Scan(&n.ID, &n.ClinicianID, &n.PatientID, &n.NoteType, &n.Title, &n.Content,
		&n.DiagnosisCodes, &n.MedicationsPrescribed, &n.Recommendations,
		&n.FollowUpRequired, &n.FollowUpDate, &n.CreatedAt, &n.UpdatedAt)
	return &n, err
}

func (r *clinicalNoteRepoPG) Create(ctx context.Context, n *ClinicalNote) error {
	n.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO clinical_notes (id, clinician_id, patient_id, note_type, title, content,
			diagnosis_codes, medications_prescribed, recommendations, follow_up_required, follow_up_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		n.ID, n.ClinicianID, n.PatientID, n.NoteType, n.Title, n.Content,
		n.DiagnosisCodes, n.MedicationsPrescribed, n.Recommendations, n.FollowUpRequired, n.FollowUpDate)
	return err
}

func (r *clinicalNoteRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ClinicalNote, error) {
	return scanClinicalNote(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+clinicalNoteCols+` FROM clinical_notes WHERE id = $1`, id))
}

func (r *clinicalNoteRepoPG) Update(ctx context.Context, n *ClinicalNote) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE clinical_notes SET note_type=$2, title=$3, content=$4, diagnosis_codes=$5,
			medications_prescribed=$6, recommendations=$7, follow_up_required=$8,
			follow_up_date=$9, updated_at=NOW()
		WHERE id = $1`,
		n.ID, n.NoteType, n.Title, n.Content, n.DiagnosisCodes,
		n.MedicationsPrescribed, n.Recommendations, n.FollowUpRequired, n.FollowUpDate)
	return err
}

func (r *clinicalNoteRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*ClinicalNote, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM clinical_notes WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+clinicalNoteCols+` FROM clinical_notes WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ClinicalNote
	for rows.Next() {
		n, err := scanClinicalNote(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, nil
}

// --- treatment plans ---

type treatmentPlanRepoPG struct{ pool *pgxpool.Pool }

func NewTreatmentPlanRepoPG(pool *pgxpool.Pool) TreatmentPlanRepository {
	return &treatmentPlanRepoPG{pool: pool}
}

const planCols = `id, clinician_id, patient_id, title, description, status, priority,
	goals, interventions, medications, lifestyle_modifications,
	start_date, end_date, review_date, progress_notes, adherence_score,
	created_at, updated_at`

func scanPlan(row pgx.Row) (*TreatmentPlan, error) {
	var p TreatmentPlan
	err := row.Scan(&p.ID, &p.ClinicianID, &p.PatientID, &p.Title, &p.Description, &p.Status, &p.Priority,
		&p.Goals, &p.Interventions, &p.Medications, &p.LifestyleModifications,
		&p.StartDate, &p.EndDate, &p.ReviewDate, &p.ProgressNotes, &p.AdherenceScore,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *treatmentPlanRepoPG) Create(ctx context.Context, p *TreatmentPlan) error {
	p.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO treatment_plans (id, clinician_id, patient_id, title, description, status,
			priority, goals, interventions, medications, lifestyle_modifications,
			start_date, end_date, review_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.ClinicianID, p.PatientID, p.Title, p.Description, p.Status,
		p.Priority, p.Goals, p.Interventions, p.Medications, p.LifestyleModifications,
		p.StartDate, p.EndDate, p.ReviewDate)
	return err
}

func (r *treatmentPlanRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*TreatmentPlan, error) {
	return scanPlan(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plans WHERE id = $1`, id))
}

func (r *treatmentPlanRepoPG) Update(ctx context.Context, p *TreatmentPlan) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE treatment_plans SET title=$2, description=$3, status=$4, priority=$5,
			goals=$6, interventions=$7, medications=$8, lifestyle_modifications=$9,
			start_date=$10, end_date=$11, review_date=$12, progress_notes=$13,
			adherence_score=$14, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Title, p.Description, p.Status, p.Priority,
		p.Goals, p.Interventions, p.Medications, p.LifestyleModifications,
		p.StartDate, p.EndDate, p.ReviewDate, p.ProgressNotes, p.AdherenceScore)
	return err
}

func (r *treatmentPlanRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TreatmentPlan, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM treatment_plans WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+planCols+` FROM treatment_plans WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*TreatmentPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}
