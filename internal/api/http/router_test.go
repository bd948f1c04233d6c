package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/salim0986/okr-production-sub000/internal/api/http/handlers"
	"github.com/salim0986/okr-production-sub000/internal/auth"
	"github.com/salim0986/okr-production-sub000/internal/config"
	"github.com/salim0986/okr-production-sub000/internal/events"
	"github.com/salim0986/okr-production-sub000/internal/observability"
	"github.com/salim0986/okr-production-sub000/internal/persistence"
	"github.com/salim0986/okr-production-sub000/internal/repository/memory"
	"github.com/salim0986/okr-production-sub000/internal/service"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type testServer struct {
	t       *testing.T
	app     *fiber.App
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	deps := service.Dependencies{Store: store, Dispatcher: events.NewInMemoryDispatcher(nil)}
	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret: "router-secret", AccessTokenTTLMinutes: 30, BcryptCost: bcrypt.MinCost,
	}, deps)
	dashboard := service.NewDashboardService(config.DashboardConfig{}, deps)
	notifications := service.NewNotificationService(deps, nil, "")
	notifications.RegisterHandlers()

	metrics := observability.NewMetrics()
	app := NewApp("okr-test", nil, metrics, 5*time.Second, RouteConfig{
		Health:         handlers.NewHealthHandler("okr-test", "test", &persistence.Postgres{}, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Organization:   handlers.NewOrganizationHandler(service.NewOrganizationService(deps), dashboard),
		Teams:          handlers.NewTeamsHandler(service.NewTeamService(deps), dashboard),
		Users:          handlers.NewUsersHandler(service.NewUserService(bcrypt.MinCost, deps)),
		Objectives:     handlers.NewObjectivesHandler(service.NewObjectiveService(deps)),
		CheckIns:       handlers.NewCheckInsHandler(service.NewCheckInService(deps)),
		Comments:       handlers.NewCommentsHandler(service.NewCommentService(deps)),
		Notifications:  handlers.NewNotificationsHandler(notifications),
		Dashboard:      handlers.NewDashboardHandler(dashboard),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users(), store.Teams()),
	})
	return &testServer{t: t, app: app, metrics: metrics}
}

// do sends a request and decodes the envelope. out may be nil.
func (s *testServer) do(method, path, token string, body any, out any) (int, *envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) == 0 {
		return resp.StatusCode, &envelope{}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			s.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return resp.StatusCode, &env
}

type authData struct {
	User struct {
		ID     string  `json:"id"`
		Role   string  `json:"role"`
		TeamID *string `json:"team_id"`
	} `json:"user"`
	Auth struct {
		Token string `json:"token"`
	} `json:"auth"`
}

type idOnly struct {
	ID string `json:"id"`
}

func (s *testServer) register(org, email string) authData {
	s.t.Helper()
	var out authData
	status, env := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"organization_name": org, "name": "Admin", "email": email, "password": "password-123",
	}, &out)
	if status != http.StatusCreated {
		s.t.Fatalf("register status = %d, error = %+v", status, env.Error)
	}
	return out
}

func (s *testServer) login(email string) string {
	s.t.Helper()
	var out authData
	status, env := s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "password-123",
	}, &out)
	if status != http.StatusOK {
		s.t.Fatalf("login status = %d, error = %+v", status, env.Error)
	}
	return out.Auth.Token
}

func (s *testServer) createUser(admin, email, role, teamID string) string {
	s.t.Helper()
	var out idOnly
	status, env := s.do(http.MethodPost, "/users", admin, map[string]any{
		"name": email, "email": email, "password": "password-123", "role": role, "team_id": teamID,
	}, &out)
	if status != http.StatusCreated {
		s.t.Fatalf("create user status = %d, error = %+v", status, env.Error)
	}
	return out.ID
}

func TestHealth_Public(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(http.MethodGet, "/health/live", "", nil, nil)
	if status != http.StatusOK {
		t.Errorf("live status = %d, want 200", status)
	}
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(http.MethodGet, "/dashboard", "", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Errorf("error = %+v, want UNAUTHORIZED", env.Error)
	}
}

func TestRegister_ValidationDetails(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"organization_name": "Acme", "name": "Ada", "email": "not-an-email", "password": "short",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if env.Error == nil || env.Error.Code != "VALIDATION_FAILED" {
		t.Fatalf("error = %+v, want VALIDATION_FAILED", env.Error)
	}
	for _, field := range []string{"email", "password"} {
		if _, ok := env.Error.Details[field]; !ok {
			t.Errorf("details missing %q: %v", field, env.Error.Details)
		}
	}
}

func TestMalformedJSON_IsValidationError(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEmployeeCannotCreateTeam(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("Acme", "ada@acme.test")
	adminToken := admin.Auth.Token

	var team idOnly
	if status, env := s.do(http.MethodPost, "/teams", adminToken, map[string]string{"name": "Platform"}, &team); status != http.StatusCreated {
		t.Fatalf("create team status = %d, error = %+v", status, env.Error)
	}
	s.createUser(adminToken, "emi@acme.test", "employee", team.ID)
	employee := s.login("emi@acme.test")

	status, env := s.do(http.MethodPost, "/teams", employee, map[string]string{"name": "Shadow"}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if env.Error.Code != "FORBIDDEN" {
		t.Errorf("code = %q, want FORBIDDEN", env.Error.Code)
	}
}

func TestCrossOrganizationReadIsNotFound(t *testing.T) {
	s := newTestServer(t)
	acme := s.register("Acme", "ada@acme.test")
	globex := s.register("Globex", "gus@globex.test")

	var team idOnly
	s.do(http.MethodPost, "/teams", acme.Auth.Token, map[string]string{"name": "Platform"}, &team)

	status, env := s.do(http.MethodGet, "/teams/"+team.ID, globex.Auth.Token, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if env.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", env.Error.Code)
	}
}

func TestCheckInWorkflowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	admin := s.register("Acme", "ada@acme.test").Auth.Token

	var team idOnly
	s.do(http.MethodPost, "/teams", admin, map[string]string{"name": "Platform"}, &team)
	s.createUser(admin, "lee@acme.test", "team_lead", team.ID)
	employeeID := s.createUser(admin, "emi@acme.test", "employee", team.ID)
	lead := s.login("lee@acme.test")
	employee := s.login("emi@acme.test")

	var objective idOnly
	status, env := s.do(http.MethodPost, "/objectives", lead, map[string]string{
		"team_id": team.ID, "title": "Ship v2", "start_date": "2026-01-01", "end_date": "2026-06-30",
	}, &objective)
	if status != http.StatusCreated {
		t.Fatalf("create objective status = %d, error = %+v", status, env.Error)
	}

	var kr idOnly
	status, env = s.do(http.MethodPost, "/objectives/"+objective.ID+"/key-results", lead, map[string]any{
		"title": "Migrate services", "target_value": 8, "units": "services", "assigned_to": employeeID,
	}, &kr)
	if status != http.StatusCreated {
		t.Fatalf("create key result status = %d, error = %+v", status, env.Error)
	}

	status, _ = s.do(http.MethodPost, "/key-results/"+kr.ID+"/check-ins", employee, map[string]any{"progress_value": 9}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("over-target check-in status = %d, want 400", status)
	}

	var checkIn idOnly
	status, env = s.do(http.MethodPost, "/key-results/"+kr.ID+"/check-ins", employee, map[string]any{"progress_value": 6}, &checkIn)
	if status != http.StatusCreated {
		t.Fatalf("submit status = %d, error = %+v", status, env.Error)
	}

	var pending []idOnly
	s.do(http.MethodGet, "/check-ins/pending", lead, nil, &pending)
	if len(pending) != 1 || pending[0].ID != checkIn.ID {
		t.Errorf("pending = %v, want [%s]", pending, checkIn.ID)
	}

	if status, _ := s.do(http.MethodPost, "/check-ins/"+checkIn.ID+"/approve", employee, nil, nil); status != http.StatusForbidden {
		t.Errorf("employee approve status = %d, want 403", status)
	}

	var review struct {
		CheckIn   struct{ Status string } `json:"check_in"`
		KeyResult struct {
			CurrentValue float64 `json:"current_value"`
			Percent      float64 `json:"percent"`
		} `json:"key_result"`
	}
	status, env = s.do(http.MethodPost, "/check-ins/"+checkIn.ID+"/approve", lead, nil, &review)
	if status != http.StatusOK {
		t.Fatalf("approve status = %d, error = %+v", status, env.Error)
	}
	if review.CheckIn.Status != "approved" {
		t.Errorf("check-in status = %q, want approved", review.CheckIn.Status)
	}
	if review.KeyResult.CurrentValue != 6 {
		t.Errorf("current_value = %v, want 6", review.KeyResult.CurrentValue)
	}

	status, env = s.do(http.MethodPost, "/check-ins/"+checkIn.ID+"/reject", lead, nil, nil)
	if status != http.StatusConflict {
		t.Errorf("second review status = %d, want 409", status)
	}

	var inbox []struct {
		Type string `json:"type"`
	}
	s.do(http.MethodGet, "/notifications?unread=true", employee, nil, &inbox)
	var types []string
	for _, n := range inbox {
		types = append(types, n.Type)
	}
	want := map[string]bool{"key_result_assigned": true, "check_in_approved": true}
	if len(types) != len(want) {
		t.Fatalf("inbox types = %v, want %v", types, want)
	}
	for _, typ := range types {
		if !want[typ] {
			t.Errorf("unexpected notification %q", typ)
		}
	}
}

func TestUnknownRouteCountsAsError(t *testing.T) {
	s := newTestServer(t)
	token := s.register("Acme", "ada@acme.test").Auth.Token
	status, env := s.do(http.MethodGet, "/nowhere", token, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
	if len(s.metrics.Snapshot().Errors) == 0 {
		t.Error("error counter not recorded")
	}
}

func TestReady_InMemoryWithoutRedis(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Dependencies["postgres"] != "in-memory" || body.Dependencies["redis"] != "disabled" {
		t.Errorf("dependencies = %v", body.Dependencies)
	}
}
