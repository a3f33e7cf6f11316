package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"todolist/internal/api"
	"todolist/internal/config"
	"todolist/internal/mail"
	"todolist/internal/repository"
	"todolist/internal/service"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Error("db", slog.Any("err", err))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	fileRepo := repository.NewFileRepository(db)
	emailLogRepo := repository.NewEmailLogRepository(db)

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)

	categorySvc := service.NewCategoryService(categoryRepo, taskRepo)
	taskSvc := service.NewTaskService(taskRepo, categoryRepo)
	fileSvc := service.NewFileService(taskRepo, fileRepo, cfg.UploadDir)
	authSvc := service.NewAuthService(userRepo, tokenRepo, categorySvc, mailer, log, cfg.JWTSecret, cfg.JWTTTL)
	reminderSvc := service.NewReminderService(taskRepo, emailLogRepo, mailer, log)

	reminderTick := func() {
		tickCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := reminderSvc.ProcessDue(tickCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("reminder tick", slog.Any("err", err))
		}
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleInterval(cfg.ReminderInterval, reminderTick); err != nil {
		log.Error("schedule reminders", slog.Any("err", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// One immediate pass so reminders that came due while the process was
	// down go out right away.
	go reminderTick()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Static("/uploads", cfg.UploadDir)

	server := api.NewServer(log, authSvc, taskSvc, categorySvc, fileSvc, userRepo)
	server.Register(e)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(cfg.HTTPAddr)
	}()
	log.Info("todolist server started", slog.String("addr", cfg.HTTPAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", slog.Any("err", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", slog.Any("err", err))
	}
	log.Info("shutdown complete")
}
