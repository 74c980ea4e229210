package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
)

var (
	adminName       string
	adminEmail      string
	adminPassword   string
	adminDepartment string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long:  `Creates an admin account in MongoDB. Does nothing when the email is already registered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup()
		defer logger.Sync() //nolint:errcheck

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout()*2)
		defer cancel()

		mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		defer mongo.Close(context.Background())

		db := mongo.Database()
		if err := repository.EnsureUserIndexes(ctx, db); err != nil {
			return fmt.Errorf("ensure user indexes: %w", err)
		}

		authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
			UserRepo: repository.NewUserRepository(db),
			Logger:   logger,
		})
		user, created, err := authService.EnsureAdmin(ctx, service.AccountInput{
			Name:       adminName,
			Email:      adminEmail,
			Password:   adminPassword,
			Department: adminDepartment,
		})
		if err != nil {
			return err
		}
		if !created {
			logger.Info("email already registered; nothing to do", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
		return nil
	},
}
