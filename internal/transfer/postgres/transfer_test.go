package postgres

import (
	"context"
	"testing"

	"github.com/frahmantamala/kudos-points/internal/auth"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	"github.com/frahmantamala/kudos-points/internal/core/dbtest"
	"github.com/frahmantamala/kudos-points/internal/transfer"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestTransferPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transfer Repository Suite")
}

var _ = Describe("LockAccounts", func() {
	It("locks sender and receiver in one statement ordered by id", func() {
		dry, err := dbtest.DryRunPostgres()
		Expect(err).NotTo(HaveOccurred())

		var rows []*accountDatamodel.Account
		stmt := lockAccounts(dry, []string{"bob", "alice"}).Find(&rows).Statement

		sql := stmt.SQL.String()
		Expect(sql).To(ContainSubstring("id IN ($1,$2)"))
		Expect(sql).To(HaveSuffix("ORDER BY id ASC FOR UPDATE"))
		Expect(stmt.Vars).To(Equal([]interface{}{"bob", "alice"}))
	})

	Context("against a store", func() {
		var (
			db   *gorm.DB
			repo *TransferRepository
			ctx  context.Context
		)

		BeforeEach(func() {
			var err error
			db, err = dbtest.Open()
			Expect(err).NotTo(HaveOccurred())
			repo = NewTransferRepository(db)
			ctx = context.Background()

			for _, id := range []string{"alice", "bob"} {
				Expect(db.Create(&accountDatamodel.Account{ID: id, Department: "Sales", Role: auth.RoleUser, PointBalance: 20, IsActive: true}).Error).To(Succeed())
			}
		})

		AfterEach(func() {
			dbtest.Close(db)
		})

		It("returns both parties keyed by id", func() {
			err := repo.RunInTx(ctx, func(tx transfer.LedgerTx) error {
				locked, err := tx.LockAccounts(ctx, "bob", "alice")
				Expect(err).NotTo(HaveOccurred())
				Expect(locked).To(HaveLen(2))
				Expect(locked["alice"].PointBalance).To(Equal(20))
				Expect(locked["bob"].ID).To(Equal("bob"))
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("leaves missing ids out of the result", func() {
			err := repo.RunInTx(ctx, func(tx transfer.LedgerTx) error {
				locked, err := tx.LockAccounts(ctx, "alice", "ghost")
				Expect(err).NotTo(HaveOccurred())
				Expect(locked).To(HaveKey("alice"))
				Expect(locked).NotTo(HaveKey("ghost"))
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
