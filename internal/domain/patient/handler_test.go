package patient

import (
	"context"
	"encoding/json"
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
	body := `{"user_id":"` + uuid.NewString() + `","date_of_birth":"1975-03-02T00:00:00Z","gender":"M"}`
	c, rec := request(http.MethodPost, "/patients", body)
	if err := h.CreateProfile(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }

	var resp struct {
		Success bool    `json:"success"`
		Data    Profile `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil { t.Fatalf("invalid body: %v", err) }
	if !resp.Success || resp.Data.ID == uuid.Nil { t.Errorf("unexpected response: %s", rec.Body.String()) }
}

func TestCreateProfileHandler_Invalid(t *testing.T) {
	h := NewHandler(newTestService())
	c, _ := request(http.MethodPost, "/patients", `{"gender":"Q"}`)
	err := h.CreateProfile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Fatalf("expected 400, got %v", err) }
}

func TestGetProfileHandler_NotFound(t *testing.T) {
	h := NewHandler(newTestService())
	c, _ := request(http.MethodGet, "/patients/"+uuid.NewString(), "")
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	err := h.GetProfile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound { t.Fatalf("expected 404, got %v", err) }
}

func TestGetProfileHandler_BadID(t *testing.T) {
	h := NewHandler(newTestService())
	c, _ := request(http.MethodGet, "/patients/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	err := h.GetProfile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest { t.Fatalf("expected 400, got %v", err) }
}

func TestCreateGoalHandler(t *testing.T) {
	svc := newTestService()
	h := NewHandler(svc)
	p := validProfile()
	svc.CreateProfile(context.Background(), p)

	c, rec := request(http.MethodPost, "/patients/"+p.ID.String()+"/goals",
		`{"goal_type":"weight","title":"Lose 10 lbs","target_value":10,"unit":"lbs"}`)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	if err := h.CreateGoal(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusCreated { t.Errorf("expected 201, got %d", rec.Code) }
	if !strings.Contains(rec.Body.String(), `"status":"active"`) { t.Errorf("unexpected body: %s", rec.Body.String()) }
}

func TestListProfilesHandler(t *testing.T) {
	svc := newTestService()
	h := NewHandler(svc)
	svc.CreateProfile(context.Background(), validProfile())

	c, rec := request(http.MethodGet, "/patients?limit=10", "")
	if err := h.ListProfiles(c); err != nil { t.Fatalf("unexpected error: %v", err) }
	if rec.Code != http.StatusOK { t.Errorf("expected 200, got %d", rec.Code) }
	if !strings.Contains(rec.Body.String(), `"total":1`) { t.Errorf("unexpected body: %s", rec.Body.String()) }
}
