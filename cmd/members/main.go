package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/khsgarden/members/internal/api"
	"github.com/khsgarden/members/internal/cli"
	"github.com/khsgarden/members/internal/db"
)

func main() {
	_ = godotenv.Load()

	dbPath := getEnv("DB_PATH", filepath.Join("data", "members.db"))

	if len(os.Args) > 1 {
		if err := runCommand(dbPath, os.Args[1:]); err != nil {
			log.Fatalf("%s failed: %v", os.Args[1], err)
		}
		return
	}

	secretKey := getEnv("SECRET_KEY", "change_me_in_production")
	port := getEnv("PORT", "8080")
	uploadDir := getEnv("UPLOAD_DIR", filepath.Join("data", "uploads"))
	cookieSecure := getEnv("COOKIE_SECURE", "false") == "true"

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	handler := api.NewHandler(database, secretKey, uploadDir, cookieSecure)

	app := fiber.New(fiber.Config{
		AppName:               "Members",
		DisableStartupMessage: true,
		BodyLimit:             10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	app.Static("/uploads", uploadDir)
	api.RegisterRoutes(app, handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
	}()

	log.Printf("Members listening on http://0.0.0.0:%s (db: %s)", port, dbPath)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func runCommand(dbPath string, args []string) error {
	switch args[0] {
	case "import":
		if len(args) != 2 {
			return fmt.Errorf("usage: members import <csv-path>")
		}
		return cli.RunImportCommand(dbPath, args[1])
	case "create-admin":
		if len(args) != 3 {
			return fmt.Errorf("usage: members create-admin <username> <email>")
		}
		return cli.RunCreateAdminCommand(dbPath, args[1], args[2])
	default:
		return fmt.Errorf("unknown command %q (expected import or create-admin)", args[0])
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
