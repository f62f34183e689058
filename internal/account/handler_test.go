package account_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/account"
	accountPostgres "github.com/frahmantamala/kudos-points/internal/account/postgres"
	"github.com/frahmantamala/kudos-points/internal/auth"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	"github.com/frahmantamala/kudos-points/internal/core/dbtest"
	"github.com/frahmantamala/kudos-points/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Account Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *account.Handler
		router  chi.Router
	)

	withUser := func(req *http.Request, u *auth.User) *http.Request {
		return req.WithContext(auth.ContextWithUser(req.Context(), u))
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		repo := accountPostgres.NewAccountRepository(db)
		service := account.NewService(repo, &mockDepartmentRegistry{}, internal.DefaultPolicy(), nil, 4, slogger)
		handler = account.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		for _, acc := range []*accountDatamodel.Account{
			{ID: "alice", FirstName: "Alice", Department: "Sales", Role: auth.RoleUser, PointBalance: 20, IsActive: true},
			{ID: "root", FirstName: "Root", Department: internal.PrivilegedDepartment, Role: auth.RoleSuperAdmin, PointBalance: 0, IsActive: true},
		} {
			Expect(repo.Create(context.Background(), acc)).To(Succeed())
		}

		router = chi.NewRouter()
		router.Get("/me", handler.GetCurrentAccount)
		router.Get("/accounts", handler.ListAccounts)
		router.Get("/accounts/{id}", handler.GetAccount)
		router.Post("/admin/set-balance", handler.SetBalanceDirect)
		router.Put("/admin/accounts/{id}/balance", handler.SetBalance)
		router.Put("/admin/accounts/{id}/role", handler.SetRole)
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	It("returns 401 without a principal", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns the caller's own account", func() {
		w := httptest.NewRecorder()
		req := withUser(httptest.NewRequest(http.MethodGet, "/me", nil), &auth.User{ID: "alice", Role: auth.RoleUser})
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var acc account.Account
		Expect(json.NewDecoder(w.Body).Decode(&acc)).To(Succeed())
		Expect(acc.ID).To(Equal("alice"))
		Expect(acc.PointBalance).To(Equal(20))
	})

	It("lists active accounts with stats", func() {
		w := httptest.NewRecorder()
		req := withUser(httptest.NewRequest(http.MethodGet, "/accounts", nil), &auth.User{ID: "alice", Role: auth.RoleUser})
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp account.AccountsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Accounts).To(HaveLen(2))
		Expect(resp.Accounts[0].DailySentCount).To(Equal(0))
	})

	It("returns 404 for an unknown account", func() {
		w := httptest.NewRecorder()
		req := withUser(httptest.NewRequest(http.MethodGet, "/accounts/ghost", nil), &auth.User{ID: "alice", Role: auth.RoleUser})
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("lets a superadmin set a negative balance", func() {
		body, _ := json.Marshal(map[string]interface{}{"user_id": "alice", "balance": -5})
		w := httptest.NewRecorder()
		req := withUser(httptest.NewRequest(http.MethodPost, "/admin/set-balance", bytes.NewReader(body)), &auth.User{ID: "root", Role: auth.RoleSuperAdmin})
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var stored accountDatamodel.Account
		Expect(db.First(&stored, "id = ?", "alice").Error).To(Succeed())
		Expect(stored.PointBalance).To(Equal(-5))
	})

	It("forbids the override for a regular user", func() {
		body, _ := json.Marshal(map[string]interface{}{"user_id": "alice", "balance": 100})
		w := httptest.NewRecorder()
		req := withUser(httptest.NewRequest(http.MethodPost, "/admin/set-balance", bytes.NewReader(body)), &auth.User{ID: "alice", Role: auth.RoleUser})
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("rejects a negative admin balance with 400", func() {
		body, _ := json.Marshal(map[string]interface{}{"balance": -1})
		w := httptest.NewRecorder()
		req := withUser(httptest.NewRequest(http.MethodPut, "/admin/accounts/alice/balance", bytes.NewReader(body)), &auth.User{ID: "root", Role: auth.RoleSuperAdmin})
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("refuses to let a superadmin demote themselves", func() {
		body, _ := json.Marshal(map[string]interface{}{"role": auth.RoleUser})
		w := httptest.NewRecorder()
		req := withUser(httptest.NewRequest(http.MethodPut, "/admin/accounts/root/role", bytes.NewReader(body)), &auth.User{ID: "root", Role: auth.RoleSuperAdmin})
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
