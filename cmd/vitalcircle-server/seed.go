package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/config"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/clinician"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/identity"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/medication"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/patient"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/domain/vitals"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/auth"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/db"
	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/notify"
)

// runSeed loads a demo clinician, two patients with a week of health data,
// and runs the scoring and nudge pipelines so a fresh environment has
// something to look at. Safe to run once against an empty database.
func runSeed() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	secret, err := resolveJWTSecret(cfg, logger)
	if err != nil {
		return err
	}
	issuer := auth.NewTokenIssuer(secret, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	svcs := buildServices(pool, issuer, notify.NopPublisher{})

	// Accounts
	clinicianSess, err := svcs.identity.Register(ctx, identity.RegisterInput{
		Username: "dr.mehta", Email: "dr.mehta@vitalcircle.dev", Password: "seed-password-1",
		FirstName: "Anita", LastName: "Mehta", Role: "clinician",
	})
	if err != nil {
		return fmt.Errorf("seed clinician account: %w", err)
	}

	stableSess, err := svcs.identity.Register(ctx, identity.RegisterInput{
		Username: "ravi.k", Email: "ravi.k@vitalcircle.dev", Password: "seed-password-2",
		FirstName: "Ravi", LastName: "Kumar", Role: "patient",
	})
	if err != nil {
		return fmt.Errorf("seed patient account: %w", err)
	}

	atRiskSess, err := svcs.identity.Register(ctx, identity.RegisterInput{
		Username: "meera.s", Email: "meera.s@vitalcircle.dev", Password: "seed-password-3",
		FirstName: "Meera", LastName: "Shah", Role: "patient",
	})
	if err != nil {
		return fmt.Errorf("seed patient account: %w", err)
	}

	// Clinician profile
	clinProfile := &clinician.Profile{
		UserID:          clinicianSess.User.ID,
		LicenseNumber:   "MH-2014-88231",
		Specialization:  "cardiology",
		YearsExperience: 12,
	}
	if err := svcs.clinician.CreateProfile(ctx, clinProfile); err != nil {
		return fmt.Errorf("seed clinician profile: %w", err)
	}

	// Patient profiles
	stable := &patient.Profile{
		UserID:      stableSess.User.ID,
		DateOfBirth: time.Date(1988, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:      "M",
	}
	if err := svcs.patient.CreateProfile(ctx, stable); err != nil {
		return fmt.Errorf("seed patient profile: %w", err)
	}

	atRisk := &patient.Profile{
		UserID:            atRiskSess.User.ID,
		DateOfBirth:       time.Date(1961, 11, 3, 0, 0, 0, 0, time.UTC),
		Gender:            "F",
		ChronicConditions: []string{"hypertension", "diabetes"},
	}
	if err := svcs.patient.CreateProfile(ctx, atRisk); err != nil {
		return fmt.Errorf("seed patient profile: %w", err)
	}

	for _, pid := range []struct {
		patientID string
		profile   *patient.Profile
	}{{"stable", stable}, {"at-risk", atRisk}} {
		assignment := &clinician.Assignment{
			ClinicianID: clinProfile.ID,
			PatientID:   pid.profile.ID,
		}
		if err := svcs.clinician.AssignPatient(ctx, assignment); err != nil {
			return fmt.Errorf("seed %s assignment: %w", pid.patientID, err)
		}
	}

	now := time.Now()

	// A week of readings: the stable patient hovers around 120/78, the
	// at-risk patient trends upward toward stage 2 hypertension.
	for day := 6; day >= 0; day-- {
		at := now.AddDate(0, 0, -day)

		if _, err := svcs.vitals.RecordVitals(ctx, &vitals.VitalSigns{
			PatientID:   stable.ID,
			SystolicBP:  iptr(118 + day%3),
			DiastolicBP: iptr(76 + day%2),
			HeartRate:   iptr(68 + day%4),
			MeasuredAt:  at,
		}); err != nil {
			return fmt.Errorf("seed stable vitals: %w", err)
		}
		if _, err := svcs.vitals.RecordLifestyle(ctx, &vitals.LifestyleMetrics{
			PatientID:           stable.ID,
			StressLevel:         iptr(2),
			SleepHours:          fptr(7.5),
			SleepQuality:        iptr(4),
			ExerciseMinutes:     iptr(40),
			MedicationAdherence: fptr(95),
			RecordedAt:          at,
		}); err != nil {
			return fmt.Errorf("seed stable lifestyle: %w", err)
		}

		if _, err := svcs.vitals.RecordVitals(ctx, &vitals.VitalSigns{
			PatientID:   atRisk.ID,
			SystolicBP:  iptr(138 + (6-day)*4),
			DiastolicBP: iptr(86 + (6-day)),
			HeartRate:   iptr(88 + (6-day)*2),
			MeasuredAt:  at,
		}); err != nil {
			return fmt.Errorf("seed at-risk vitals: %w", err)
		}
		if _, err := svcs.vitals.RecordLifestyle(ctx, &vitals.LifestyleMetrics{
			PatientID:           atRisk.ID,
			StressLevel:         iptr(4),
			SleepHours:          fptr(5.5),
			SleepQuality:        iptr(2),
			ExerciseMinutes:     iptr(10),
			MedicationAdherence: fptr(70),
			RecordedAt:          at,
		}); err != nil {
			return fmt.Errorf("seed at-risk lifestyle: %w", err)
		}
	}

	// Medication schedule for the at-risk patient with a patchy record.
	alert := &medication.Alert{
		PatientID:    atRisk.ID,
		MedicineName: "Amlodipine",
		Dosage:       "5mg",
		TimesPerDay:  1,
		AlertTimes:   []string{"08:00"},
		StartDate:    now.AddDate(0, 0, -30),
	}
	if err := svcs.medication.CreateAlert(ctx, alert); err != nil {
		return fmt.Errorf("seed medication alert: %w", err)
	}
	for day, status := range []string{"taken", "taken", "missed", "late", "taken", "missed", "taken"} {
		scheduled := now.AddDate(0, 0, day-6).Truncate(24 * time.Hour).Add(8 * time.Hour)
		if err := svcs.medication.RecordIntake(ctx, &medication.Intake{
			AlertID:       alert.ID,
			ScheduledTime: scheduled,
			Status:        status,
		}); err != nil {
			return fmt.Errorf("seed intake: %w", err)
		}
	}

	if _, err := svcs.vitals.ReportSymptom(ctx, &vitals.SymptomReport{
		PatientID:   atRisk.ID,
		SymptomName: "headache",
		Description: "Dull morning headache, two days running",
		Severity:    3,
		OnsetTime:   now.AddDate(0, 0, -1),
	}); err != nil {
		return fmt.Errorf("seed symptom: %w", err)
	}

	// Run the pipelines so the dashboard has scores, nudges and predictions.
	for _, p := range []*patient.Profile{stable, atRisk} {
		score, err := svcs.scoring.Calculate(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("seed stability score: %w", err)
		}
		logger.Info().
			Str("patient_id", p.ID.String()).
			Float64("score", score.Score).
			Str("risk_level", score.RiskLevel).
			Msg("seeded stability score")

		nudges, err := svcs.nudge.Generate(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("seed nudges: %w", err)
		}
		predictions, err := svcs.nudge.GeneratePredictions(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("seed predictions: %w", err)
		}
		logger.Info().
			Str("patient_id", p.ID.String()).
			Int("nudges", len(nudges)).
			Int("predictions", len(predictions)).
			Msg("seeded engagement data")
	}

	logger.Info().Msg("seed complete: dr.mehta / ravi.k / meera.s (passwords seed-password-1..3)")
	return nil
}

func iptr(v int) *int         { return &v }
func fptr(v float64) *float64 { return &v }
