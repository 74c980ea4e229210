package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "complaint-service",
	Short: "Complaint & feedback management API",
	Long:  `Serves the complaint and feedback HTTP API backed by MongoDB, with an optional Postgres audit trail and Redis token denylist.`,
	RunE:  runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name of the admin")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "email of the admin (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password of the admin (required)")
	createAdminCmd.Flags().StringVar(&adminDepartment, "department", "", "department of the admin")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(createAdminCmd)
}

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.Config, *zap.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	return cfg, logger.With(zap.String("service", cfg.App.Name))
}
