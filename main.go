package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/violie/server/cliparse"
	"github.com/violie/server/db"
	"github.com/violie/server/mailer"
	"github.com/violie/server/middleware"
	"github.com/violie/server/router"
	"github.com/violie/server/seed"
	"github.com/violie/server/store"
)

func main() {
	var err error

	// Local .env is optional
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	if cfg.SeedFile != "" {
		f, err := seed.Load(cfg.SeedFile)
		if err != nil {
			slog.Error("seed load failed", "error", err, "file", cfg.SeedFile)
			os.Exit(1)
		}
		if err := seed.Apply(context.Background(), store.New(dbConn), f, time.Now()); err != nil {
			slog.Error("seed apply failed", "error", err, "file", cfg.SeedFile)
			os.Exit(1)
		}
		slog.Info("Seed applied", "file", cfg.SeedFile)
	}

	var m mailer.Mailer
	if cfg.SMTPHost != "" {
		m = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
		slog.Info("SMTP mailer ready", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
	} else {
		// Development: codes only show up in the debug log
		slog.SetLogLoggerLevel(slog.LevelDebug)
		m = mailer.LogMailer{}
		slog.Warn("SMTP_HOST not set, verification emails are logged instead of sent")
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, m)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(cfg.CORSOrigin)(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal, then let in-flight votes finish
		<-ctrlc
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
