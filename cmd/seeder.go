package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/frahmantamala/kudos-points/internal"
	"github.com/frahmantamala/kudos-points/internal/account"
	"github.com/frahmantamala/kudos-points/internal/auth"
	"github.com/spf13/cobra"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample accounts and departments for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		ctx := context.Background()

		if clearData {
			// children first so the transfer foreign keys never dangle
			for _, table := range []string{"transfers", "daily_limits", "department_adjustments", "system_config", "accounts", "departments"} {
				if err := deps.DB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing ledger data")
		}

		for _, name := range []string{"Engineering", "Sales", "Marketing", internal.PrivilegedDepartment} {
			if err := deps.Services.Department.EnsureDepartment(ctx, name); err != nil {
				log.Fatalf("failed to seed department %s: %v", name, err)
			}
		}
		fmt.Println("Departments seeded successfully")

		seeder := &auth.User{ID: "seed", Role: auth.RoleSuperAdmin}
		accounts := []account.CreateAccountDTO{
			{ID: "root", FirstName: "Root", LastName: "Admin", Department: internal.PrivilegedDepartment, Role: auth.RoleSuperAdmin, PointBalance: intPtr(0)},
			{ID: "padil", FirstName: "Padil", LastName: "Admin", Department: "Engineering", Role: auth.RoleAdmin},
			{ID: "fadhil", FirstName: "Fadhil", LastName: "Rahman", Department: "Engineering"},
			{ID: "sari", FirstName: "Sari", LastName: "Putri", Department: "Sales"},
			{ID: "budi", FirstName: "Budi", LastName: "Santoso", Department: "Sales"},
			{ID: "dewi", FirstName: "Dewi", LastName: "Lestari", Department: "Marketing"},
		}

		for _, dto := range accounts {
			dto.Password = seedPassword
			_, err := deps.Services.Account.CreateAccount(ctx, seeder, dto)
			if errors.Is(err, internal.ErrAccountExists) {
				fmt.Println("account already exists; skipping:", dto.ID)
				continue
			}
			if err != nil {
				log.Fatalf("failed to seed account %s: %v", dto.ID, err)
			}
			fmt.Printf("Seeded %s account: %s\n", roleOrUser(dto.Role), dto.ID)
		}

		fmt.Println("Accounts seeded successfully")
	},
}

func intPtr(v int) *int { return &v }

func roleOrUser(role string) string {
	if role == "" {
		return auth.RoleUser
	}
	return role
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "password", "Password given to every seeded account")
}
