package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/campushelp/helpdesk-service/internal/api/http"
	"github.com/campushelp/helpdesk-service/internal/api/http/handlers"
	"github.com/campushelp/helpdesk-service/internal/auth"
	"github.com/campushelp/helpdesk-service/internal/config"
	"github.com/campushelp/helpdesk-service/internal/domain"
	"github.com/campushelp/helpdesk-service/internal/events"
	"github.com/campushelp/helpdesk-service/internal/observability"
	"github.com/campushelp/helpdesk-service/internal/persistence"
	"github.com/campushelp/helpdesk-service/internal/repository"
	"github.com/campushelp/helpdesk-service/internal/service"
)

func TestHandlers(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HTTP Handlers Suite")
}

const provisionKey = "campus-provision-key"

type testEnv struct {
	app    *fiber.App
	tokens *auth.TokenManager
	store  *repository.MemoryStore
}

func newTestEnv() *testEnv {
	logger := zap.NewNop()
	store := repository.NewMemoryStore()

	svc := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store.Tickets(),
		CommentRepo: store.Comments(),
		UserRepo:    store.Users(),
		Dispatcher:  events.NewInMemoryDispatcher(),
	})

	tokens := auth.NewTokenManager("test-signing-secret")
	metrics := observability.NewMetrics()
	redis := persistence.NewRedis(config.RedisConfig{}, logger)

	keyHash, err := bcrypt.GenerateFromPassword([]byte(provisionKey), bcrypt.MinCost)
	Expect(err).ToNot(HaveOccurred())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-service", "test", nil, redis, metrics),
		Tickets:        handlers.NewTicketsHandler(svc),
		Stats:          handlers.NewStatsHandler(svc),
		Staff:          handlers.NewStaffHandler(svc),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users()),
		ProvisionGuard: auth.RequireProvisionKey(string(keyHash)),
	})

	return &testEnv{app: app, tokens: tokens, store: store}
}

func (e *testEnv) token(userID string, role domain.Role) string {
	token, err := e.tokens.IssueToken(userID, role, userID+"@campus.edu", "Test", userID, time.Hour)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	return token
}

func (e *testEnv) request(method, path, token string, body any) (*http.Response, map[string]any) {
	var reader io.Reader = http.NoBody
	if body != nil {
		buf := &bytes.Buffer{}
		ExpectWithOffset(1, json.NewEncoder(buf).Encode(body)).To(Succeed())
		reader = buf
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())

	raw, err := io.ReadAll(resp.Body)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	resp.Body.Close()

	decoded := map[string]any{}
	if len(raw) > 0 {
		ExpectWithOffset(1, json.Unmarshal(raw, &decoded)).To(Succeed(), "body: %s", raw)
	}
	return resp, decoded
}

func dataObject(body map[string]any) map[string]any {
	data, ok := body["data"].(map[string]any)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected data object, got %v", body)
	return data
}

func dataList(body map[string]any) []any {
	data, ok := body["data"].([]any)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected data list, got %v", body)
	return data
}

func errorCode(body map[string]any) string {
	errObj, ok := body["error"].(map[string]any)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected error object, got %v", body)
	code, _ := errObj["code"].(string)
	return code
}

var _ = Describe("Helpdesk API", func() {
	var (
		env          *testEnv
		studentToken string
		student2Tok  string
		adminToken   string
	)

	BeforeEach(func() {
		env = newTestEnv()
		studentToken = env.token("stu-1", domain.RoleStudent)
		student2Tok = env.token("stu-2", domain.RoleStudent)
		adminToken = env.token("adm-1", domain.RoleAdmin)
	})

	Describe("authentication", func() {
		It("rejects requests without a bearer token", func() {
			resp, body := env.request(http.MethodGet, "/tickets", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(body)).To(Equal("UNAUTHORIZED"))
		})

		It("rejects a token signed with the wrong secret", func() {
			other := auth.NewTokenManager("some-other-secret")
			forged, err := other.IssueToken("stu-1", domain.RoleStudent, "", "", "", time.Hour)
			Expect(err).ToNot(HaveOccurred())

			resp, body := env.request(http.MethodGet, "/tickets", forged, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(body)).To(Equal("UNAUTHORIZED"))
		})

		It("rejects tokens carrying a role it does not know", func() {
			weird := env.token("ghost-1", domain.Role("superuser"))
			resp, body := env.request(http.MethodGet, "/tickets", weird, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(errorCode(body)).To(Equal("UNAUTHORIZED"))
		})
	})

	Describe("ticket lifecycle", func() {
		It("walks a ticket from submission through triage", func() {
			// Student reports a printer jam.
			resp, body := env.request(http.MethodPost, "/tickets", studentToken, map[string]any{
				"subject":     "Printer jam",
				"description": "Tray 2 stuck",
				"issueType":   "printing",
				"priority":    "low",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			ticket := dataObject(body)
			Expect(ticket["status"]).To(Equal("new"))
			Expect(ticket["submitterId"]).To(Equal("stu-1"))
			Expect(ticket["assignedToId"]).To(BeNil())
			ticketID := ticket["id"].(float64)

			// Admin takes the ticket.
			resp, body = env.request(http.MethodPatch, ticketPath(ticketID), adminToken, map[string]any{
				"status":       "in-progress",
				"assignedToId": "adm-1",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			updated := dataObject(body)
			Expect(updated["status"]).To(Equal("in-progress"))
			Expect(updated["assignedToId"]).To(Equal("adm-1"))
			Expect(updated["assignee"]).ToNot(BeNil())

			// Student sees the progress in their stats.
			resp, body = env.request(http.MethodGet, "/stats", studentToken, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			stats := dataObject(body)
			Expect(stats["total"]).To(Equal(float64(1)))
			Expect(stats["inProgress"]).To(Equal(float64(1)))
			Expect(stats["new"]).To(Equal(float64(0)))

			// Admin dashboard counts the assignment against the caller.
			resp, body = env.request(http.MethodGet, "/stats", adminToken, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			dashboard := dataObject(body)
			Expect(dashboard["assignedToMe"]).To(Equal(float64(1)))
			Expect(dashboard["inProgress"]).To(Equal(float64(1)))
		})

		It("rejects an invalid submission with field details", func() {
			resp, body := env.request(http.MethodPost, "/tickets", studentToken, map[string]any{
				"subject":  "",
				"priority": "whenever",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(errorCode(body)).To(Equal("VALIDATION_FAILED"))
			errObj := body["error"].(map[string]any)
			Expect(errObj["details"]).To(HaveKey("subject"))
			Expect(errObj["details"]).To(HaveKey("priority"))
		})

		It("hides another student's ticket", func() {
			_, body := env.request(http.MethodPost, "/tickets", studentToken, map[string]any{
				"subject":     "Wifi down",
				"description": "No signal in dorm B",
				"issueType":   "network",
				"priority":    "high",
			})
			ticketID := dataObject(body)["id"].(float64)

			resp, body := env.request(http.MethodGet, ticketPath(ticketID), student2Tok, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			Expect(errorCode(body)).To(Equal("FORBIDDEN"))

			resp, body = env.request(http.MethodGet, "/tickets", student2Tok, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(dataList(body)).To(BeEmpty())
		})

		It("refuses ticket updates from non-admins", func() {
			_, body := env.request(http.MethodPost, "/tickets", studentToken, map[string]any{
				"subject":     "Slow laptop",
				"description": "Takes minutes to boot",
				"issueType":   "hardware",
				"priority":    "medium",
			})
			ticketID := dataObject(body)["id"].(float64)

			resp, body := env.request(http.MethodPatch, ticketPath(ticketID), studentToken, map[string]any{
				"status": "resolved",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			Expect(errorCode(body)).To(Equal("FORBIDDEN"))
		})

		It("returns 404 for a missing ticket and 400 for a malformed id", func() {
			resp, body := env.request(http.MethodGet, "/tickets/9999", adminToken, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			Expect(errorCode(body)).To(Equal("NOT_FOUND"))

			resp, body = env.request(http.MethodGet, "/tickets/not-a-number", adminToken, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(errorCode(body)).To(Equal("VALIDATION_FAILED"))
		})
	})

	Describe("comments", func() {
		var ticketID float64

		BeforeEach(func() {
			_, body := env.request(http.MethodPost, "/tickets", studentToken, map[string]any{
				"subject":     "Projector flicker",
				"description": "Room 204, flickers every few seconds",
				"issueType":   "hardware",
				"priority":    "medium",
			})
			ticketID = dataObject(body)["id"].(float64)
		})

		It("keeps internal comments away from the submitter", func() {
			resp, _ := env.request(http.MethodPost, ticketPath(ticketID)+"/comments", studentToken, map[string]any{
				"comment": "Happens during lectures too",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			resp, _ = env.request(http.MethodPost, ticketPath(ticketID)+"/comments", adminToken, map[string]any{
				"comment":    "Suspect the HDMI cable, check inventory",
				"isInternal": true,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			resp, body := env.request(http.MethodGet, ticketPath(ticketID)+"/comments", studentToken, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			visible := dataList(body)
			Expect(visible).To(HaveLen(1))
			Expect(visible[0].(map[string]any)["comment"]).To(Equal("Happens during lectures too"))

			resp, body = env.request(http.MethodGet, ticketPath(ticketID)+"/comments", adminToken, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(dataList(body)).To(HaveLen(2))
		})

		It("rejects an internal comment from the submitter", func() {
			resp, body := env.request(http.MethodPost, ticketPath(ticketID)+"/comments", studentToken, map[string]any{
				"comment":    "note to self",
				"isInternal": true,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			Expect(errorCode(body)).To(Equal("FORBIDDEN"))
		})

		It("rejects comments from a student who cannot read the ticket", func() {
			resp, body := env.request(http.MethodPost, ticketPath(ticketID)+"/comments", student2Tok, map[string]any{
				"comment": "same here",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			Expect(errorCode(body)).To(Equal("FORBIDDEN"))
		})
	})

	Describe("staff endpoints", func() {
		It("limits the staff listing to admins", func() {
			resp, body := env.request(http.MethodGet, "/it-staff", adminToken, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			staff := dataList(body)
			Expect(staff).To(HaveLen(1))
			Expect(staff[0].(map[string]any)["id"]).To(Equal("adm-1"))

			resp, body = env.request(http.MethodGet, "/it-staff", studentToken, nil)
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			Expect(errorCode(body)).To(Equal("FORBIDDEN"))
		})

		It("provisions staff with the pre-shared key", func() {
			req := httptest.NewRequest(http.MethodPost, "/it-staff", bytes.NewBufferString(
				`{"id":"adm-2","email":"adm-2@campus.edu","firstName":"New","lastName":"Tech"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Provision-Key", provisionKey)

			resp, err := env.app.Test(req, -1)
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			raw, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			var body map[string]any
			Expect(json.Unmarshal(raw, &body)).To(Succeed())
			Expect(dataObject(body)["role"]).To(Equal("admin"))
		})

		It("rejects provisioning with a wrong or missing key", func() {
			req := httptest.NewRequest(http.MethodPost, "/it-staff", bytes.NewBufferString(`{"id":"adm-2"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Provision-Key", "wrong-key")

			resp, err := env.app.Test(req, -1)
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))

			bare := httptest.NewRequest(http.MethodPost, "/it-staff", bytes.NewBufferString(`{"id":"adm-2"}`))
			bare.Header.Set("Content-Type", "application/json")
			resp, err = env.app.Test(bare, -1)
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})
	})

	Describe("health", func() {
		It("reports liveness without authentication", func() {
			resp, body := env.request(http.MethodGet, "/health/live", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["status"]).To(Equal("alive"))
		})

		It("reports readiness with the memory store and redis disabled", func() {
			resp, body := env.request(http.MethodGet, "/health/ready", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(body["status"]).To(Equal("ready"))
		})

		It("exposes rejected requests in the metrics under their real status", func() {
			resp, _ := env.request(http.MethodGet, "/tickets", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))

			resp, body := env.request(http.MethodGet, "/health/metrics", "", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			snapshot := dataObject(body)
			requests, ok := snapshot["requests"].(map[string]any)
			Expect(ok).To(BeTrue(), "expected request counters, got %v", snapshot)
			Expect(requests).To(HaveKeyWithValue("/tickets|GET|401", float64(1)))
			Expect(requests).ToNot(HaveKey("/tickets|GET|200"))
		})
	})
})

func ticketPath(id float64) string {
	return "/tickets/" + strconv.FormatInt(int64(id), 10)
}
