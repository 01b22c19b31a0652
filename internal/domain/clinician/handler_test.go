package clinician

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func request(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateProfileHandler(t *testing.T) {
	h := NewHandler(newTestService())
	body := `{"user_id":"` + uuid.NewString() + `","license_number":"MD-999","specialization":"general","years_experience":3}`
	c, rec := request(http.MethodPost, "/clinicians", body)
	if err := h.CreateProfile(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }
	if !strings.Contains(rec.Body.String(), `"license_number":"MD-999"`) { t.Errorf("unexpected body: %s", rec.Body.String()) }
}

func TestCreateProfileHandler_Invalid(t *testing.T) {
	h := NewHandler(newTestService())
	c, _ := request(http.MethodPost, "/clinicians", `{"license_number":""}`)
	err := h.CreateProfile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Fatalf("expected 400, got %v", err) }
}

func TestAssignPatientHandler(t *testing.T) {
	svc := newTestService()
	h := NewHandler(svc)
	cl := validClinician()
	svc.CreateProfile(context.Background(), cl)

	body := `{"clinician_id":"` + cl.ID.String() + `","patient_id":"` + uuid.NewString() + `"}`
	c, rec := request(http.MethodPost, "/assignments", body)
	if err := h.AssignPatient(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }
	if !strings.Contains(rec.Body.String(), `"assignment_type":"primary"`) { t.Errorf("unexpected body: %s", rec.Body.String()) }
}

func TestUpdatePlanStatusHandler(t *testing.T) {
	svc := newTestService()
	h := NewHandler(svc)
	p := &TreatmentPlan{ClinicianID: uuid.New(), PatientID: uuid.New(), Title: "plan"}
	svc.CreatePlan(context.Background(), p)

	c, rec := request(http.MethodPut, "/treatment-plans/"+p.ID.String()+"/status", `{"status":"active"}`)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	if err := h.UpdatePlanStatus(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }
	if !strings.Contains(rec.Body.String(), `"status":"active"`) { t.Errorf("unexpected body: %s", rec.Body.String()) }
}
