package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"crm-service/cmd/api/infrastructure"
	"crm-service/internal/adapter/db/postgres"
	"crm-service/internal/config"
	companydomain "crm-service/internal/domain/company"
	"crm-service/internal/domain/user"
	"crm-service/internal/usecase/auth"
	"crm-service/internal/usecase/company"
	"crm-service/pkg/logger"
)

// env opens the database and builds the use cases a command needs.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func (e *env) close() {
	_ = infrastructure.CloseDatabase(e.db)
	_ = e.log.Sync()
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		configPath = envOr("CONFIG_PATH", ".")
		e          env
	)

	root := &cobra.Command{
		Use:           "crm-seed",
		Short:         "Bootstrap the CRM database: schema, users and companies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			l, err := logger.NewWithConfig(logger.Config{
				Level:       "warn",
				Format:      cfg.Logger.Format,
				OutputPath:  "stderr",
				ServiceName: cfg.Logger.ServiceName + "-seed",
				Environment: cfg.App.Env,
			})
			if err != nil {
				return err
			}
			cfg.DB.AutoMigrate = true
			db, err := infrastructure.NewDatabase(cfg, l)
			if err != nil {
				return err
			}
			e = env{cfg: cfg, log: l, db: db}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.close()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Directory holding app.env (env CONFIG_PATH)")
	root.SetOut(out)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// PersistentPreRunE already migrated.
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}

	var userName, userPassword, userRole string
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Create a user who can sign in (ADMIN|MANAGER)",
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := user.ParseRole(userRole)
			if err != nil {
				return err
			}
			uc := auth.New(postgres.NewUserRepoPG(e.db, e.log), e.cfg.Auth.JWTSecret, e.cfg.Auth.TokenTTL, e.log)
			created, err := uc.CreateUser(cmd.Context(), userName, userPassword, role)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s created id=%s role=%s\n", created.Name, created.ID, created.Role)
			return nil
		},
	}
	userCmd.Flags().StringVar(&userName, "name", "", "Login name")
	userCmd.Flags().StringVar(&userPassword, "password", "", "Password (8-72 characters)")
	userCmd.Flags().StringVar(&userRole, "role", string(user.RoleManager), "ADMIN or MANAGER")
	_ = userCmd.MarkFlagRequired("name")
	_ = userCmd.MarkFlagRequired("password")

	var companyName, companyAddress, companyPhone, companyWebsite, actingUser string
	companyCmd := &cobra.Command{
		Use:   "company",
		Short: "Create a company on behalf of an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := actAs(cmd.Context(), postgres.NewUserRepoPG(e.db, e.log), actingUser)
			if err != nil {
				return err
			}
			uc := company.New(postgres.NewCompanyRepoPG(e.db, e.log), auth.ContextUser{}, e.log)
			created, err := uc.SaveCompany(ctx, &companydomain.Company{
				Name:    companyName,
				Address: companyAddress,
				Phone:   companyPhone,
				Website: companyWebsite,
			})
			if err != nil {
				return fmt.Errorf("create company: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "company %s created id=%s\n", created.Name, created.ID)
			return nil
		},
	}
	companyCmd.Flags().StringVar(&companyName, "name", "", "Company name")
	companyCmd.Flags().StringVar(&companyAddress, "address", "", "Postal address")
	companyCmd.Flags().StringVar(&companyPhone, "phone", "", "Phone number")
	companyCmd.Flags().StringVar(&companyWebsite, "website", "", "Website URL")
	companyCmd.Flags().StringVar(&actingUser, "as", "", "Name of the user recorded as creator")
	_ = companyCmd.MarkFlagRequired("name")
	_ = companyCmd.MarkFlagRequired("as")

	root.AddCommand(migrateCmd, userCmd, companyCmd)
	return root
}

// actAs returns ctx carrying the principal of the named user.
func actAs(ctx context.Context, users auth.Repository, name string) (context.Context, error) {
	u, err := users.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %q does not exist", name)
	}
	return user.WithPrincipal(ctx, user.Principal{UserID: u.ID, Name: u.Name, Role: u.Role}), nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
