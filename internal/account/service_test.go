package account_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/account"
	"github.com/frahmantamala/kudos-points/internal/auth"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	"github.com/frahmantamala/kudos-points/internal/core/events"
)

type mockAccountRepository struct {
	accounts   map[string]*accountDatamodel.Account
	received   map[string]int
	sent       map[string]int
	shouldFail bool
}

func newMockAccountRepository() *mockAccountRepository {
	return &mockAccountRepository{
		accounts: make(map[string]*accountDatamodel.Account),
		received: make(map[string]int),
		sent:     make(map[string]int),
	}
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id string) (*accountDatamodel.Account, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	acc, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *acc
	return &copied, nil
}

func (m *mockAccountRepository) ListActive(ctx context.Context) ([]*accountDatamodel.Account, error) {
	if m.shouldFail {
		return nil, errors.New("database error")
	}
	var result []*accountDatamodel.Account
	for _, id := range []string{"alice", "bob", "carol", "root"} {
		if acc, ok := m.accounts[id]; ok && acc.IsActive {
			result = append(result, acc)
		}
	}
	return result, nil
}

func (m *mockAccountRepository) Create(ctx context.Context, acc *accountDatamodel.Account) error {
	if m.shouldFail {
		return errors.New("database error")
	}
	if _, ok := m.accounts[acc.ID]; ok {
		return account.ErrDuplicateID
	}
	acc.CreatedAt = time.Now()
	acc.UpdatedAt = acc.CreatedAt
	m.accounts[acc.ID] = acc
	return nil
}

func (m *mockAccountRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (bool, error) {
	if m.shouldFail {
		return false, errors.New("database error")
	}
	acc, ok := m.accounts[id]
	if !ok {
		return false, nil
	}
	for k, v := range fields {
		switch k {
		case "point_balance":
			acc.PointBalance = v.(int)
		case "role":
			acc.Role = v.(string)
		case "first_name":
			acc.FirstName = v.(string)
		case "last_name":
			acc.LastName = v.(string)
		case "department":
			acc.Department = v.(string)
		case "is_active":
			acc.IsActive = v.(bool)
		case "email":
			email := v.(string)
			acc.Email = &email
		}
	}
	return true, nil
}

func (m *mockAccountRepository) ReceivedSince(ctx context.Context, since time.Time) (map[string]int, error) {
	return m.received, nil
}

func (m *mockAccountRepository) SentCountsForDay(ctx context.Context, day string) (map[string]int, error) {
	return m.sent, nil
}

type mockDepartmentRegistry struct {
	ensured []string
}

func (m *mockDepartmentRegistry) EnsureDepartment(ctx context.Context, name string) error {
	m.ensured = append(m.ensured, name)
	return nil
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

var _ = Describe("Account Service", func() {
	var (
		repo        *mockAccountRepository
		departments *mockDepartmentRegistry
		publisher   *recordingPublisher
		service     *account.Service
		ctx         context.Context

		user       = &auth.User{ID: "alice", Role: auth.RoleUser}
		admin      = &auth.User{ID: "bob", Role: auth.RoleAdmin}
		superadmin = &auth.User{ID: "root", Role: auth.RoleSuperAdmin}
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockAccountRepository()
		departments = &mockDepartmentRegistry{}
		publisher = &recordingPublisher{}
		service = account.NewService(repo, departments, internal.DefaultPolicy(), publisher, 4, logger)
		ctx = context.Background()

		repo.accounts["alice"] = &accountDatamodel.Account{ID: "alice", FirstName: "Alice", Department: "Sales", Role: auth.RoleUser, PointBalance: 20, IsActive: true}
		repo.accounts["bob"] = &accountDatamodel.Account{ID: "bob", FirstName: "Bob", Department: "Sales", Role: auth.RoleAdmin, PointBalance: 20, IsActive: true}
		repo.accounts["carol"] = &accountDatamodel.Account{ID: "carol", FirstName: "Carol", Department: "Dev", Role: auth.RoleUser, PointBalance: 5, IsActive: false}
	})

	Describe("GetAccount", func() {
		It("returns the account", func() {
			acc, err := service.GetAccount(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.PointBalance).To(Equal(20))
		})

		It("returns NotFound for an unknown id", func() {
			_, err := service.GetAccount(ctx, "nobody")
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})

		It("wraps repository failures as internal errors", func() {
			repo.shouldFail = true
			_, err := service.GetAccount(ctx, "alice")
			Expect(internal.IsType(err, internal.ErrorTypeInternal)).To(BeTrue())
		})
	})

	Describe("ListActiveWithStats", func() {
		It("skips inactive accounts and attaches today's counters", func() {
			repo.sent["alice"] = 2
			repo.received["bob"] = 7

			accounts, err := service.ListActiveWithStats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts).To(HaveLen(2))
			Expect(accounts[0].ID).To(Equal("alice"))
			Expect(accounts[0].DailySentCount).To(Equal(2))
			Expect(accounts[1].MonthlyReceived).To(Equal(7))
		})
	})

	Describe("CreateAccount", func() {
		It("creates an account at the baseline balance", func() {
			acc, err := service.CreateAccount(ctx, admin, account.CreateAccountDTO{ID: "dave", FirstName: "Dave"})
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.PointBalance).To(Equal(internal.DefaultBaselineBalance))
			Expect(acc.Role).To(Equal(auth.RoleUser))
			Expect(acc.Department).To(Equal(internal.UnassignedDepartment))
			Expect(acc.IsActive).To(BeTrue())
			Expect(departments.ensured).To(ContainElement(internal.UnassignedDepartment))
		})

		It("keeps an explicit zero balance", func() {
			zero := 0
			acc, err := service.CreateAccount(ctx, admin, account.CreateAccountDTO{ID: "erin", PointBalance: &zero})
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.PointBalance).To(Equal(0))
		})

		It("hashes the password when one is given", func() {
			_, err := service.CreateAccount(ctx, admin, account.CreateAccountDTO{ID: "frank", Password: "s3cret"})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.accounts["frank"].PasswordHash).NotTo(BeNil())
			Expect(auth.VerifyPassword(*repo.accounts["frank"].PasswordHash, "s3cret")).To(Succeed())
		})

		It("rejects duplicate ids with Conflict", func() {
			_, err := service.CreateAccount(ctx, admin, account.CreateAccountDTO{ID: "alice"})
			Expect(internal.IsType(err, internal.ErrorTypeConflict)).To(BeTrue())
		})

		It("rejects non-admin actors", func() {
			_, err := service.CreateAccount(ctx, user, account.CreateAccountDTO{ID: "dave"})
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		})

		It("rejects an unknown role", func() {
			_, err := service.CreateAccount(ctx, admin, account.CreateAccountDTO{ID: "dave", Role: "owner"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("SetBalance", func() {
		It("lets an admin set a non-negative balance", func() {
			acc, err := service.SetBalance(ctx, admin, "alice", 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.PointBalance).To(Equal(42))
		})

		It("refuses negative balances", func() {
			_, err := service.SetBalance(ctx, admin, "alice", -1)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(repo.accounts["alice"].PointBalance).To(Equal(20))
		})

		It("returns NotFound for a missing account", func() {
			_, err := service.SetBalance(ctx, admin, "nobody", 1)
			Expect(internal.IsType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("SetBalanceDirect", func() {
		It("accepts negative balances and publishes an event", func() {
			acc, err := service.SetBalanceDirect(ctx, superadmin, "alice", -15)
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.PointBalance).To(Equal(-15))
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeBalanceOverridden))
		})

		It("is reserved for superadmins", func() {
			_, err := service.SetBalanceDirect(ctx, admin, "alice", 10)
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
			Expect(publisher.events).To(BeEmpty())
		})
	})

	Describe("RenameAccount and SetRole", func() {
		It("renames an account", func() {
			acc, err := service.RenameAccount(ctx, superadmin, "alice", account.RenameAccountDTO{FirstName: "Alicia", LastName: "Tanaka"})
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.FirstName).To(Equal("Alicia"))
			Expect(acc.DisplayName()).To(Equal("Tanaka Alicia"))
		})

		It("changes a role", func() {
			acc, err := service.SetRole(ctx, superadmin, "alice", account.SetRoleDTO{Role: auth.RoleAdmin})
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.Role).To(Equal(auth.RoleAdmin))
		})

		It("rejects admins", func() {
			_, err := service.SetRole(ctx, admin, "alice", account.SetRoleDTO{Role: auth.RoleAdmin})
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		})
	})

	Describe("UpdateAccount", func() {
		It("deactivates an account and registers a new department", func() {
			inactive := false
			dept := "Marketing"
			acc, err := service.UpdateAccount(ctx, admin, "alice", account.UpdateAccountDTO{IsActive: &inactive, Department: &dept})
			Expect(err).NotTo(HaveOccurred())
			Expect(acc.IsActive).To(BeFalse())
			Expect(acc.Department).To(Equal("Marketing"))
			Expect(departments.ensured).To(ContainElement("Marketing"))
		})
	})
})
