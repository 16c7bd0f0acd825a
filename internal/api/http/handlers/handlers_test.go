package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/roster-service/internal/api/http"
	"github.com/spec-kit/roster-service/internal/api/http/handlers"
	"github.com/spec-kit/roster-service/internal/auth"
	"github.com/spec-kit/roster-service/internal/config"
	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/events"
	"github.com/spec-kit/roster-service/internal/observability"
	"github.com/spec-kit/roster-service/internal/persistence"
	"github.com/spec-kit/roster-service/internal/rbac"
	"github.com/spec-kit/roster-service/internal/repository"
	"github.com/spec-kit/roster-service/internal/service"
)

type testApp struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	members *repository.MemoryMemberRepository
	groups  *repository.MemoryGroupRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	members := repository.NewMemoryMemberRepository(0)
	groups := repository.NewMemoryGroupRepository(0)
	pending := repository.NewMemoryPendingImportRepository()
	resolver := rbac.NewResolver(rbac.DefaultCatalog())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	memberService := service.NewMemberService(service.MemberDependencies{
		MemberRepo: members,
		GroupRepo:  groups,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	groupService := service.NewGroupService(service.GroupDependencies{
		GroupRepo:  groups,
		MemberRepo: members,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	importService := service.NewImportService(config.ImportConfig{
		MaxUploadBytes:    1 << 20,
		PreviewTTLMinutes: 30,
		ErrorPreviewLimit: 5,
	}, service.ImportDependencies{
		MemberRepo:  members,
		GroupRepo:   groups,
		PendingRepo: pending,
		Resolver:    resolver,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	tokens := auth.NewTokenManager("test-secret", 60)
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("roster-service", "test", &persistence.Postgres{}, &persistence.Redis{}, metrics),
		Session:        handlers.NewSessionHandler(tokens),
		Members:        handlers.NewMembersHandler(memberService),
		Groups:         handlers.NewGroupsHandler(groupService),
		Imports:        handlers.NewImportsHandler(importService),
		AuthMiddleware: auth.NewMiddleware(tokens),
		Resolver:       resolver,
	})
	return &testApp{app: app, tokens: tokens, members: members, groups: groups}
}

func (ta *testApp) request(t *testing.T, method, target string, role domain.Role, body []byte) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		token, _, err := ta.tokens.GenerateToken(role)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	payload := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if err := json.Unmarshal(payload.Data, out); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func (ta *testApp) seedMember(t *testing.T, m domain.Member) {
	t.Helper()
	if err := ta.members.Create(context.Background(), &m); err != nil {
		t.Fatalf("seed member: %v", err)
	}
}

func TestListMembersQueryFilters(t *testing.T) {
	ta := newTestApp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ta.seedMember(t, domain.Member{
		ID: "m1", Name: "Jane Doe", Email: "jane@club.org",
		Status: domain.MemberStatusActive, GroupID: "g1", CreatedAt: base,
	})
	ta.seedMember(t, domain.Member{
		ID: "m2", Name: "Bob Roe", Email: "bob@club.org",
		Status: domain.MemberStatusPending, CreatedAt: base.Add(time.Minute),
	})
	ta.seedMember(t, domain.Member{
		ID: "m3", Name: "Janet Poe", Email: "janet@club.org",
		Status: domain.MemberStatusActive, CreatedAt: base.Add(2 * time.Minute),
	})

	tests := []struct {
		name    string
		target  string
		wantIDs []string
	}{
		{"no filters lists all", "/members/", []string{"m1", "m2", "m3"}},
		{"status filter", "/members/?status=ACTIVE", []string{"m1", "m3"}},
		{"search filter", "/members/?search=jane", []string{"m1", "m3"}},
		{"group filter", "/members/?group_id=g1", []string{"m1"}},
		{"combined", "/members/?status=ACTIVE&search=janet", []string{"m3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ta.request(t, http.MethodGet, tt.target, domain.RoleViewer, nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			var items []struct {
				ID string `json:"id"`
			}
			decodeData(t, resp, &items)
			if len(items) != len(tt.wantIDs) {
				t.Fatalf("got %d members, want %d", len(items), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if items[i].ID != want {
					t.Fatalf("items[%d].ID = %q, want %q", i, items[i].ID, want)
				}
			}
		})
	}
}

func TestMemberRouteStatuses(t *testing.T) {
	ta := newTestApp(t)
	ta.seedMember(t, domain.Member{ID: "m1", Name: "Jane Doe", Status: domain.MemberStatusActive})

	tests := []struct {
		name       string
		method     string
		target     string
		role       domain.Role
		body       []byte
		wantStatus int
	}{
		{"get existing", http.MethodGet, "/members/m1", domain.RoleViewer, nil, http.StatusOK},
		{"get unknown maps to 404", http.MethodGet, "/members/nope", domain.RoleViewer, nil, http.StatusNotFound},
		{"no token", http.MethodGet, "/members/m1", "", nil, http.StatusUnauthorized},
		{"viewer may not create", http.MethodPost, "/members/", domain.RoleViewer, []byte(`{"name":"X"}`), http.StatusForbidden},
		{"owner creates", http.MethodPost, "/members/", domain.RoleOwner, []byte(`{"name":"X"}`), http.StatusCreated},
		{"manager may not delete", http.MethodDelete, "/members/m1", domain.RoleManager, nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ta.request(t, tt.method, tt.target, tt.role, tt.body)
			resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestSessionRoutes(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, http.MethodPost, "/session/assert", "", []byte(`{"role":"coach"}`))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("assert status = %d, want 201", resp.StatusCode)
	}
	var asserted struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	decodeData(t, resp, &asserted)
	if asserted.Role != "COACH" || asserted.Token == "" {
		t.Fatalf("asserted = %+v", asserted)
	}

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer "+asserted.Token)
	introspect, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("GET /session: %v", err)
	}
	if introspect.StatusCode != http.StatusOK {
		t.Fatalf("introspect status = %d, want 200", introspect.StatusCode)
	}
	var current struct {
		Role string `json:"role"`
	}
	decodeData(t, introspect, &current)
	if current.Role != "COACH" {
		t.Fatalf("current role = %q, want COACH", current.Role)
	}

	anonymous := ta.request(t, http.MethodGet, "/session", "", nil)
	anonymous.Body.Close()
	if anonymous.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", anonymous.StatusCode)
	}

	unknown := ta.request(t, http.MethodPost, "/session/assert", "", []byte(`{"role":"wizard"}`))
	unknown.Body.Close()
	if unknown.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown role status = %d, want 400", unknown.StatusCode)
	}
}

func TestReadyWithInMemoryStores(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, http.MethodGet, "/health/ready", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	defer resp.Body.Close()

	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
		ImportTotals struct {
			Runs int64 `json:"runs"`
		} `json:"import_totals"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "ready" {
		t.Fatalf("status = %q, want ready", body.Status)
	}
	if body.Dependencies["store"] != "in-memory" || body.Dependencies["preview_store"] != "in-memory" {
		t.Fatalf("dependencies = %v", body.Dependencies)
	}
	if body.ImportTotals.Runs != 0 {
		t.Fatalf("import runs = %d, want 0", body.ImportTotals.Runs)
	}
}
