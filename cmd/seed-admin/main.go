package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hostelgrievance/grievance-backend/internal/users"
	"github.com/hostelgrievance/grievance-backend/pkg/config"
	"github.com/hostelgrievance/grievance-backend/pkg/db"
	"github.com/hostelgrievance/grievance-backend/pkg/logger"
	"github.com/hostelgrievance/grievance-backend/pkg/security"
)

const tempPasswordLen = 16

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed-admin"})

	_ = godotenv.Load()

	name := flag.String("name", "Administrator", "admin display name")
	email := flag.String("email", "", "admin email (required)")
	phone := flag.String("phone", "", "admin phone number")
	password := flag.String("password", "", "admin password; a temporary one is generated and printed when empty")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed-admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":   cfg.App.Env,
		"email": *email,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(logg, "database", err)
	defer dbClient.Close()

	generated := false
	if *password == "" {
		*password, err = security.GenerateTempPassword(tempPasswordLen)
		requireResource(logg, "temp password", err)
		generated = true
	}

	created, err := seedAdmin(ctx, users.NewRepository(dbClient.DB()), cfg.Password, adminInput{
		Name:     *name,
		Email:    *email,
		Phone:    *phone,
		Password: *password,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed admin failed: %v\n", err)
		os.Exit(1)
	}
	if !created {
		logg.Info(ctx, "admin already exists, nothing to do")
		return
	}
	logg.Info(ctx, "admin created")
	if generated {
		fmt.Printf("temporary admin password: %s\n", *password)
	}
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
