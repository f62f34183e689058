package transfer_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	"github.com/frahmantamala/kudos-points/internal/core/dbtest"
	"github.com/frahmantamala/kudos-points/internal/transfer"
	transferPostgres "github.com/frahmantamala/kudos-points/internal/transfer/postgres"
	"github.com/frahmantamala/kudos-points/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Transfer Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
		caller *auth.User
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req = req.WithContext(auth.ContextWithUser(context.Background(), caller))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := transfer.NewService(transferPostgres.NewTransferRepository(db), internal.DefaultPolicy(), nil, slogger)
		handler := transfer.NewHandler(&transport.BaseHandler{Logger: slogger}, service)

		router = chi.NewRouter()
		router.Post("/transfers", handler.SendPoints)
		router.Get("/transfers", handler.ListTransfers)
		router.Get("/transfers/recent", handler.RecentTransfers)
		router.Get("/accounts/{id}/transfers", handler.AccountTransfers)

		caller = &auth.User{ID: "alice", Role: auth.RoleUser}
		Expect(db.Create(&accountDatamodel.Account{ID: "alice", Department: "Sales", Role: auth.RoleUser, PointBalance: 2, IsActive: true}).Error).To(Succeed())
		Expect(db.Create(&accountDatamodel.Account{ID: "bob", Department: "Dev", Role: auth.RoleUser, PointBalance: 20, IsActive: true}).Error).To(Succeed())
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	It("creates a transfer for the caller when sender_id is omitted", func() {
		w := do(http.MethodPost, "/transfers", `{"receiver_id":"bob","points":1,"message":"thanks"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var t transfer.TransferWithAccounts
		Expect(json.NewDecoder(w.Body).Decode(&t)).To(Succeed())
		Expect(t.SenderID).To(Equal("alice"))
		Expect(*t.Message).To(Equal("thanks"))
	})

	It("rejects non-integer points with 400", func() {
		w := do(http.MethodPost, "/transfers", `{"receiver_id":"bob","points":1.5}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps insufficient balance to 422", func() {
		w := do(http.MethodPost, "/transfers", `{"receiver_id":"bob","points":3}`)
		Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
	})

	It("maps the daily cap to 429", func() {
		caller = &auth.User{ID: "bob", Role: auth.RoleUser}
		for i := 0; i < 3; i++ {
			Expect(do(http.MethodPost, "/transfers", `{"receiver_id":"alice","points":1}`).Code).To(Equal(http.StatusCreated))
		}
		Expect(do(http.MethodPost, "/transfers", `{"receiver_id":"alice","points":1}`).Code).To(Equal(http.StatusTooManyRequests))
	})

	It("refuses to send from another account", func() {
		w := do(http.MethodPost, "/transfers", `{"sender_id":"bob","receiver_id":"alice","points":1}`)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("pages the ledger", func() {
		Expect(do(http.MethodPost, "/transfers", `{"receiver_id":"bob","points":1}`).Code).To(Equal(http.StatusCreated))

		w := do(http.MethodGet, "/transfers?limit=500", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp transfer.TransfersResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Limit).To(Equal(transport.MaxPageLimit))
		Expect(resp.Transfers).To(HaveLen(1))
	})

	It("forbids reading someone else's history", func() {
		Expect(do(http.MethodGet, "/accounts/bob/transfers", "").Code).To(Equal(http.StatusForbidden))
		Expect(do(http.MethodGet, "/accounts/alice/transfers", "").Code).To(Equal(http.StatusOK))
	})
})
