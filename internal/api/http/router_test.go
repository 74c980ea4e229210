package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apihttp "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository/memstore"
	"github.com/spec-kit/complaint-service/internal/service"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type apiClient struct {
	app *fiber.App
}

func (a apiClient) do(method, path, token string, body any) (int, map[string]any, []any) {
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	var (
		obj  map[string]any
		list []any
	)
	if len(payload) > 0 && payload[0] == '[' {
		Expect(json.Unmarshal(payload, &list)).To(Succeed())
	} else if len(payload) > 0 {
		Expect(json.Unmarshal(payload, &obj)).To(Succeed())
	}
	return resp.StatusCode, obj, list
}

func (a apiClient) register(name, email, role string) (token, id string) {
	status, body, _ := a.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name": name, "email": email, "password": "pw", "role": role,
	})
	Expect(status).To(Equal(http.StatusCreated))
	user := body["user"].(map[string]any)
	return body["access_token"].(string), user["id"].(string)
}

var _ = Describe("Router", func() {
	var (
		store  *memstore.Store
		client apiClient
		ready  error
	)

	BeforeEach(func() {
		store = memstore.New()
		ready = nil
		logger := zap.NewNop()
		metrics := observability.NewMetrics()
		dispatcher := events.NewInMemoryDispatcher(logger)
		service.NewAuditService(dispatcher, store.History(), logger).RegisterHandlers()

		tokens := auth.NewTokenManager("router-secret", time.Hour)
		authService := service.NewAuthService(config.AuthConfig{BcryptCost: bcrypt.MinCost, RegisterAllowRole: true}, service.AuthDependencies{
			UserRepo:    store.Users(),
			RevokedRepo: store.Revocations(),
			Tokens:      tokens,
			Logger:      logger,
		})
		complaintService := service.NewComplaintService(service.ComplaintDependencies{
			ComplaintRepo: store.Complaints(),
			HistoryRepo:   store.History(),
			Dispatcher:    dispatcher,
			Logger:        logger,
		})

		app := fiber.New()
		apihttp.RegisterMiddlewares(app, logger, metrics, apihttp.MiddlewareConfig{Timeout: 5 * time.Second, CORSAllowOrigins: "*"})
		apihttp.RegisterRoutes(app, apihttp.RouteConfig{
			Health: handlers.NewHealthHandler("cfms", "test", metrics,
				handlers.Dependency{Name: "mongo", Pinger: pingFunc(func(context.Context) error { return ready })},
				handlers.Dependency{Name: "redis", Disabled: true},
			),
			Auth:       handlers.NewAuthHandler(authService),
			Complaints: handlers.NewComplaintsHandler(complaintService),
			Feedback:   handlers.NewFeedbackHandler(service.NewFeedbackService(store.Feedback(), dispatcher, logger)),
			Admin: handlers.NewAdminHandler(
				service.NewDirectoryService(store.Users(), store.Complaints(), authService, logger),
				service.NewAnalyticsService(store.Complaints(), store.Feedback()),
			),
			Authenticator: auth.NewAuthenticator(tokens, store.Users(), store.Revocations()),
		})
		client = apiClient{app: app}
	})

	It("runs the complaint lifecycle end to end", func() {
		userToken, userID := client.register("A", "a@example.com", "user")

		status, body, _ := client.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@example.com", "password": "pw"})
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["message"]).To(Equal("Login successful"))

		status, created, _ := client.do(http.MethodPost, "/api/complaints", userToken, map[string]any{
			"title": "T", "description": "D", "category": "billing",
		})
		Expect(status).To(Equal(http.StatusCreated))
		Expect(created["status"]).To(Equal("open"))
		Expect(created["progress"]).To(BeEquivalentTo(0))
		Expect(created["assigned_to"]).To(BeNil())
		Expect(created["user_id"]).To(Equal(userID))
		id := created["_id"].(string)

		status, body, _ = client.do(http.MethodPut, "/api/complaints/"+id, userToken, map[string]any{"status": "resolved"})
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(body).To(Equal(map[string]any{"error": "Admin access required"}))

		adminToken, _ := client.register("Root", "root@example.com", "admin")
		status, _, _ = client.do(http.MethodPut, "/api/complaints/"+id, adminToken, map[string]any{"status": "resolved", "progress": 100})
		Expect(status).To(Equal(http.StatusOK))

		status, fetched, _ := client.do(http.MethodGet, "/api/complaints/"+id, userToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(fetched["status"]).To(Equal("resolved"))
		Expect(fetched["progress"]).To(BeEquivalentTo(100))
		Expect(fetched["title"]).To(Equal("T"))

		status, _, history := client.do(http.MethodGet, "/api/complaints/"+id+"/history", adminToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(history).To(HaveLen(2))

		status, body, _ = client.do(http.MethodDelete, "/api/complaints/"+id, adminToken, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body["message"]).To(Equal("Complaint deleted"))

		status, body, _ = client.do(http.MethodGet, "/api/complaints/"+id, userToken, nil)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body["error"]).To(Equal("Complaint not found"))
	})

	It("treats absent keys and explicit nulls differently on update", func() {
		userToken, _ := client.register("A", "a@example.com", "")
		adminToken, _ := client.register("Root", "root@example.com", "admin")
		_, created, _ := client.do(http.MethodPost, "/api/complaints", userToken, map[string]any{"title": "T"})
		id := created["_id"].(string)

		_, updated, _ := client.do(http.MethodPut, "/api/complaints/"+id, adminToken, map[string]any{"assigned_to": "Sam", "department": "Billing"})
		Expect(updated["assigned_to"]).To(Equal("Sam"))

		status, updated, _ := client.do(http.MethodPut, "/api/complaints/"+id, adminToken, `{"assigned_to": null}`)
		Expect(status).To(Equal(http.StatusOK))
		Expect(updated["assigned_to"]).To(BeNil())
		Expect(updated["department"]).To(Equal("Billing"))
	})

	It("scopes complaint listings by role", func() {
		aliceToken, _ := client.register("Alice", "alice@example.com", "")
		bobToken, _ := client.register("Bob", "bob@example.com", "staff")
		adminToken, _ := client.register("Root", "root@example.com", "admin")
		client.do(http.MethodPost, "/api/complaints", aliceToken, map[string]any{"title": "a"})
		client.do(http.MethodPost, "/api/complaints", bobToken, map[string]any{"title": "b"})

		_, _, mine := client.do(http.MethodGet, "/api/complaints", aliceToken, nil)
		Expect(mine).To(HaveLen(1))
		_, _, all := client.do(http.MethodGet, "/api/complaints", adminToken, nil)
		Expect(all).To(HaveLen(2))
	})

	It("rejects a duplicate registration", func() {
		client.register("A", "a@example.com", "")
		status, body, _ := client.do(http.MethodPost, "/api/auth/register", "", map[string]any{"name": "B", "email": "a@example.com", "password": "x"})
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body["error"]).To(Equal("Email already registered"))
	})

	It("describes the caller and revokes tokens on logout", func() {
		token, id := client.register("A", "a@example.com", "")

		status, me, _ := client.do(http.MethodGet, "/api/auth/me", token, nil)
		Expect(status).To(Equal(http.StatusOK))
		Expect(me).To(Equal(map[string]any{"id": id, "name": "A", "email": "a@example.com", "role": "user", "department": "N/A"}))

		status, _, _ = client.do(http.MethodPost, "/api/auth/logout", token, nil)
		Expect(status).To(Equal(http.StatusOK))

		status, body, _ := client.do(http.MethodGet, "/api/auth/me", token, nil)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body["error"]).To(Equal("Token has been revoked"))
	})

	DescribeTable("returns flat JSON errors",
		func(method, path, token string, body any, status int) {
			code, payload, _ := client.do(method, path, token, body)
			Expect(code).To(Equal(status))
			Expect(payload).To(HaveKey("error"))
			Expect(payload).To(HaveLen(1))
		},
		Entry("missing token", http.MethodGet, "/api/complaints", "", nil, http.StatusUnauthorized),
		Entry("garbage token", http.MethodGet, "/api/feedback", "garbage", nil, http.StatusUnauthorized),
		Entry("unknown route", http.MethodGet, "/api/nowhere", "", nil, http.StatusNotFound),
		Entry("malformed body", http.MethodPost, "/api/auth/login", "", "{not json", http.StatusBadRequest),
		Entry("missing credentials", http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@example.com"}, http.StatusBadRequest),
	)

	It("exposes raw store failures as 500", func() {
		token, _ := client.register("A", "a@example.com", "")
		store.Err = errors.New("disk on fire")

		status, body, _ := client.do(http.MethodGet, "/api/complaints", token, nil)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(HaveLen(1))
		Expect(body["error"]).To(ContainSubstring("disk on fire"))
	})

	Describe("admin endpoints", func() {
		var adminToken, userToken string

		BeforeEach(func() {
			adminToken, _ = client.register("Root", "root@example.com", "admin")
			userToken, _ = client.register("A", "a@example.com", "")
		})

		It("are forbidden to non-admins", func() {
			for _, path := range []string{"/api/admin/users", "/api/admin/stats", "/api/admin/insights"} {
				status, _, _ := client.do(http.MethodGet, path, userToken, nil)
				Expect(status).To(Equal(http.StatusForbidden), path)
			}
		})

		It("reports zero satisfaction without feedback", func() {
			status, stats, _ := client.do(http.MethodGet, "/api/admin/stats", adminToken, nil)
			Expect(status).To(Equal(http.StatusOK))
			Expect(stats["customer_satisfaction"]).To(BeEquivalentTo(0))
			Expect(stats["avg_resolution_time"]).To(Equal("0 hours"))
			Expect(stats["total_tickets"]).To(BeEquivalentTo(0))
		})

		It("splits feedback sentiment", func() {
			for _, rating := range []int{5, 3, 2} {
				status, _, _ := client.do(http.MethodPost, "/api/feedback", userToken, map[string]any{"rating": rating, "category": "service"})
				Expect(status).To(Equal(http.StatusCreated))
			}

			status, insights, _ := client.do(http.MethodGet, "/api/admin/insights", adminToken, nil)
			Expect(status).To(Equal(http.StatusOK))
			Expect(insights["sentiment"]).To(Equal(map[string]any{"positive": 1.0, "neutral": 1.0, "negative": 1.0}))
			dist := insights["category_distribution"].(map[string]any)
			Expect(dist["feedback"]).To(Equal([]any{map[string]any{"_id": "service", "count": 3.0}}))
			Expect(dist["complaints"]).To(BeEmpty())
		})

		It("lists users without credentials", func() {
			status, _, users := client.do(http.MethodGet, "/api/admin/users", adminToken, nil)
			Expect(status).To(Equal(http.StatusOK))
			Expect(users).To(HaveLen(2))
			for _, raw := range users {
				u := raw.(map[string]any)
				Expect(u).To(HaveKey("_id"))
				Expect(u["id"]).To(Equal(u["_id"]))
				Expect(u).NotTo(HaveKey("password"))
				Expect(u).NotTo(HaveKey("tickets_resolved"))
			}
		})

		It("creates staff accounts", func() {
			status, user, _ := client.do(http.MethodPost, "/api/admin/users", adminToken, map[string]any{
				"name": "Sam", "email": "sam@example.com", "password": "x", "role": "staff",
			})
			Expect(status).To(Equal(http.StatusCreated))
			Expect(user["tickets_submitted"]).To(BeEquivalentTo(0))
			Expect(user["tickets_resolved"]).To(BeEquivalentTo(0))
		})

		It("lets admins review feedback", func() {
			_, fb, _ := client.do(http.MethodPost, "/api/feedback", userToken, map[string]any{"rating": 4})
			status, updated, _ := client.do(http.MethodPut, "/api/feedback/"+fb["_id"].(string), adminToken, map[string]any{"status": "reviewed"})
			Expect(status).To(Equal(http.StatusOK))
			Expect(updated["status"]).To(Equal("reviewed"))

			status, touched, _ := client.do(http.MethodPut, "/api/feedback/"+fb["_id"].(string), adminToken, map[string]any{})
			Expect(status).To(Equal(http.StatusOK))
			Expect(touched["status"]).To(Equal("reviewed"))
		})

		It("checks the admin role before reading update bodies", func() {
			_, complaint, _ := client.do(http.MethodPost, "/api/complaints", userToken, map[string]any{"title": "T"})
			_, fb, _ := client.do(http.MethodPost, "/api/feedback", userToken, map[string]any{"rating": 2})

			for _, path := range []string{"/api/complaints/" + complaint["_id"].(string), "/api/feedback/" + fb["_id"].(string)} {
				status, body, _ := client.do(http.MethodPut, path, userToken, "{not json")
				Expect(status).To(Equal(http.StatusForbidden), path)
				Expect(body["error"]).To(Equal("Admin access required"))

				status, _, _ = client.do(http.MethodPut, path, adminToken, "{not json")
				Expect(status).To(Equal(http.StatusBadRequest), path)
			}
		})

		It("accepts the hyphenated in-progress status", func() {
			_, complaint, _ := client.do(http.MethodPost, "/api/complaints", userToken, map[string]any{"title": "T"})
			status, updated, _ := client.do(http.MethodPut, "/api/complaints/"+complaint["_id"].(string), adminToken, map[string]any{"status": "in-progress"})
			Expect(status).To(Equal(http.StatusOK))
			Expect(updated["status"]).To(Equal("in_progress"))
		})
	})

	Describe("health", func() {
		It("reports liveness", func() {
			status, body, _ := client.do(http.MethodGet, "/health/live", "", nil)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body["status"]).To(Equal("alive"))
		})

		It("fails readiness when a required dependency is down", func() {
			status, body, _ := client.do(http.MethodGet, "/health/ready", "", nil)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body["dependencies"]).To(HaveKeyWithValue("redis", "disabled"))

			ready = errors.New("no primary")
			status, body, _ = client.do(http.MethodGet, "/health/ready", "", nil)
			Expect(status).To(Equal(http.StatusServiceUnavailable))
			Expect(body["dependencies"]).To(HaveKeyWithValue("mongo", "no primary"))
		})

		It("counts served requests per route", func() {
			client.do(http.MethodGet, "/health/live", "", nil)
			client.do(http.MethodGet, "/health/live", "", nil)

			status, body, _ := client.do(http.MethodGet, "/health/metrics", "", nil)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body["requests"]).To(HaveKeyWithValue("/health/live|GET|200", BeNumerically("==", 2)))
			Expect(body["avg_latency_ms"]).To(HaveKey("/health/live|GET|200"))
		})
	})
})
