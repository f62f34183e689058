package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/kudos-points/internal/account"
	accountPostgres "github.com/frahmantamala/kudos-points/internal/account/postgres"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	transferDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/transfer"
	"github.com/frahmantamala/kudos-points/internal/core/dbtest"
	dailylimitPostgres "github.com/frahmantamala/kudos-points/internal/dailylimit/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestAccountPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Account Postgres Suite")
}

var _ = Describe("Account Repository", func() {
	var (
		db   *gorm.DB
		repo *accountPostgres.AccountRepository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		repo = accountPostgres.NewAccountRepository(db)
		ctx = context.Background()

		for _, acc := range []*accountDatamodel.Account{
			{ID: "bob", Department: "Sales", Role: "user", PointBalance: 20, IsActive: true},
			{ID: "alice", Department: "Sales", Role: "user", PointBalance: 0, IsActive: true},
			{ID: "gone", Department: "Dev", Role: "user", PointBalance: 9, IsActive: false},
		} {
			Expect(repo.Create(ctx, acc)).To(Succeed())
		}
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	It("returns nil for a missing account", func() {
		acc, err := repo.GetByID(ctx, "nobody")
		Expect(err).NotTo(HaveOccurred())
		Expect(acc).To(BeNil())
	})

	It("stores an explicit zero balance", func() {
		acc, err := repo.GetByID(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(acc.PointBalance).To(Equal(0))
		Expect(acc.IsActive).To(BeTrue())
	})

	It("lists active accounts ordered by id", func() {
		accounts, err := repo.ListActive(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(accounts).To(HaveLen(2))
		Expect(accounts[0].ID).To(Equal("alice"))
		Expect(accounts[1].ID).To(Equal("bob"))
	})

	It("maps duplicate keys to ErrDuplicateID", func() {
		err := repo.Create(ctx, &accountDatamodel.Account{ID: "bob", Department: "Sales", Role: "user"})
		Expect(err).To(MatchError(account.ErrDuplicateID))
	})

	It("reports whether an update matched a row", func() {
		found, err := repo.Update(ctx, "bob", map[string]interface{}{"point_balance": -3})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeTrue())

		acc, _ := repo.GetByID(ctx, "bob")
		Expect(acc.PointBalance).To(Equal(-3))

		found, err = repo.Update(ctx, "nobody", map[string]interface{}{"point_balance": 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(found).To(BeFalse())
	})

	It("sums points received since a cutoff", func() {
		old := time.Now().AddDate(0, -2, 0)
		Expect(db.Create(&transferDatamodel.Transfer{SenderID: "bob", ReceiverID: "alice", Points: 2, CreatedAt: old}).Error).To(Succeed())
		Expect(db.Create(&transferDatamodel.Transfer{SenderID: "bob", ReceiverID: "alice", Points: 3}).Error).To(Succeed())
		Expect(db.Create(&transferDatamodel.Transfer{SenderID: "alice", ReceiverID: "bob", Points: 1}).Error).To(Succeed())

		totals, err := repo.ReceivedSince(ctx, time.Now().AddDate(0, -1, 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(totals).To(HaveKeyWithValue("alice", 3))
		Expect(totals).To(HaveKeyWithValue("bob", 1))
	})

	It("reads today's send counters", func() {
		counter := dailylimitPostgres.NewCounterRepository(db)
		Expect(counter.RecordSend(ctx, "bob", "2026-01-05")).To(Succeed())
		Expect(counter.RecordSend(ctx, "bob", "2026-01-05")).To(Succeed())

		counts, err := repo.SentCountsForDay(ctx, "2026-01-05")
		Expect(err).NotTo(HaveOccurred())
		Expect(counts).To(Equal(map[string]int{"bob": 2}))
	})
})
