package department_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/auth"
	accountDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/account"
	departmentDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/department"
	transferDatamodel "github.com/frahmantamala/kudos-points/internal/core/datamodel/transfer"
	"github.com/frahmantamala/kudos-points/internal/core/dbtest"
	"github.com/frahmantamala/kudos-points/internal/department"
	departmentPostgres "github.com/frahmantamala/kudos-points/internal/department/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Department Service", func() {
	var (
		db      *gorm.DB
		service *department.Service
		ctx     context.Context

		user       = &auth.User{ID: "u0", Role: auth.RoleUser}
		admin      = &auth.User{ID: "boss", Role: auth.RoleAdmin}
		superadmin = &auth.User{ID: "root", Role: auth.RoleSuperAdmin}
	)

	balances := func() map[string]int {
		var rows []accountDatamodel.Account
		Expect(db.Find(&rows).Error).To(Succeed())
		m := make(map[string]int, len(rows))
		for _, r := range rows {
			m[r.ID] = r.PointBalance
		}
		return m
	}

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = department.NewService(departmentPostgres.NewDepartmentRepository(db), nil, logger)
		ctx = context.Background()

		for i := 0; i < 7; i++ {
			Expect(db.Create(&accountDatamodel.Account{ID: fmt.Sprintf("u%d", i), Department: "deptA", Role: auth.RoleUser, PointBalance: 20, IsActive: true}).Error).To(Succeed())
		}
		Expect(db.Create(&accountDatamodel.Account{ID: "idle", Department: "deptA", Role: auth.RoleUser, PointBalance: 20, IsActive: false}).Error).To(Succeed())
		Expect(db.Create(&accountDatamodel.Account{ID: "root", Department: "deptA", Role: auth.RoleSuperAdmin, PointBalance: 0, IsActive: true}).Error).To(Succeed())
		Expect(db.Create(&accountDatamodel.Account{ID: "boss", Department: "deptB", Role: auth.RoleAdmin, PointBalance: 50, IsActive: true}).Error).To(Succeed())
	})

	AfterEach(func() {
		dbtest.Close(db)
	})

	Describe("Distribute", func() {
		It("splits 100 over 7 members exactly", func() {
			result, err := service.Distribute(ctx, admin, "deptA", 100, "bonus")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Recipients).To(Equal(7))

			b := balances()
			Expect(b["u0"]).To(Equal(35))
			Expect(b["u1"]).To(Equal(35))
			for i := 2; i < 7; i++ {
				Expect(b[fmt.Sprintf("u%d", i)]).To(Equal(34))
			}
			Expect(b["idle"]).To(Equal(20))
			Expect(b["root"]).To(Equal(0))
			Expect(b["boss"]).To(Equal(50))

			var transfers []transferDatamodel.Transfer
			Expect(db.Find(&transfers).Error).To(Succeed())
			Expect(transfers).To(HaveLen(7))
			total := 0
			for _, t := range transfers {
				Expect(t.SenderID).To(Equal("boss"))
				Expect(*t.Message).To(Equal("bonus"))
				total += t.Points
			}
			Expect(total).To(Equal(100))
		})

		It("deducts with a negative total and uses the default reason", func() {
			result, err := service.Distribute(ctx, admin, "deptA", -7, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reason).To(Equal(internal.DefaultDistributionReason))
			Expect(balances()["u6"]).To(Equal(19))
		})

		It("returns NotFound when nobody is eligible and writes nothing", func() {
			_, err := service.Distribute(ctx, admin, "nowhere", 10, "")
			Expect(err).To(MatchError(internal.ErrNoEligibleMembers))

			var n int64
			Expect(db.Model(&transferDatamodel.Transfer{}).Count(&n).Error).To(Succeed())
			Expect(n).To(BeZero())
		})

		It("rejects a zero total", func() {
			_, err := service.Distribute(ctx, admin, "deptA", 0, "")
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("is admin only", func() {
			_, err := service.Distribute(ctx, user, "deptA", 10, "")
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		})
	})

	Describe("Rankings", func() {
		It("orders departments by summed balance", func() {
			Expect(db.Create(&accountDatamodel.Account{ID: "x", Department: internal.PrivilegedDepartment, Role: auth.RoleUser, PointBalance: 500, IsActive: true}).Error).To(Succeed())

			rankings, err := service.Rankings(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rankings).To(HaveLen(2))
			Expect(rankings[0]).To(Equal(department.Ranking{Department: "deptA", TotalPoints: 140, MemberCount: 7}))
			Expect(rankings[1].Department).To(Equal("deptB"))
		})
	})

	Describe("departments", func() {
		It("registers names once and lists them sorted", func() {
			Expect(service.EnsureDepartment(ctx, "Sales")).To(Succeed())
			Expect(service.EnsureDepartment(ctx, "Dev")).To(Succeed())
			Expect(service.EnsureDepartment(ctx, "Sales")).To(Succeed())
			Expect(service.EnsureDepartment(ctx, "  ")).To(Succeed())

			names, err := service.ListDepartments(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"Dev", "Sales"}))
		})
	})

	Describe("adjustments", func() {
		It("records an adjustment without touching balances", func() {
			before := balances()
			adj, err := service.AdjustDepartmentRecord(ctx, superadmin, "deptA", 30, "audit")
			Expect(err).NotTo(HaveOccurred())
			Expect(adj.AdjustedBy).To(Equal("root"))
			Expect(balances()).To(Equal(before))

			var n int64
			Expect(db.Model(&departmentDatamodel.Adjustment{}).Count(&n).Error).To(Succeed())
			Expect(n).To(Equal(int64(1)))
		})

		It("rejects the privileged department", func() {
			_, err := service.AdjustDepartmentRecord(ctx, superadmin, internal.PrivilegedDepartment, 1, "")
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("is superadmin only", func() {
			_, err := service.AdjustDepartmentRecord(ctx, admin, "deptA", 1, "")
			Expect(internal.IsType(err, internal.ErrorTypeForbidden)).To(BeTrue())
		})

		It("filters the history by department", func() {
			_, err := service.AdjustDepartmentRecord(ctx, superadmin, "deptA", 1, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AdjustDepartmentRecord(ctx, superadmin, "deptB", 2, "")
			Expect(err).NotTo(HaveOccurred())

			all, err := service.ListAdjustments(ctx, superadmin, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].Department).To(Equal("deptB"))

			only, err := service.ListAdjustments(ctx, superadmin, "deptA")
			Expect(err).NotTo(HaveOccurred())
			Expect(only).To(HaveLen(1))
		})
	})
})
