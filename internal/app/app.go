package app

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/reveille-app/reveille/internal/audio"
	"github.com/reveille-app/reveille/internal/bridge"
	"github.com/reveille-app/reveille/internal/config"
	"github.com/reveille-app/reveille/internal/db"
	"github.com/reveille-app/reveille/internal/engine"
	"github.com/reveille-app/reveille/internal/migration"
	"github.com/reveille-app/reveille/internal/model"
	"github.com/reveille-app/reveille/internal/prefs"
	"github.com/reveille-app/reveille/internal/repository"
	"github.com/reveille-app/reveille/internal/retry"
	"github.com/reveille-app/reveille/internal/scheduler"
)

type App struct {
	Cfg       *config.Config
	DB        *sqlx.DB
	Prefs     *prefs.Store
	Scheduler *scheduler.TimerBridge
	Engine    *engine.Engine
	Bridge    *bridge.ActionBridge
	Runner    *bridge.Runner
	Migration *migration.Service
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	prefsStore, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefs store: %v", err)
	}

	// Repositories
	policy := retry.Default()
	recordingRepository := repository.NewRecordingRepository(database, policy)
	alarmRepository := repository.NewAlarmRepository(database, policy)

	// Audio
	pipeline := audio.NewPipeline(cfg.DataDir, log)
	player := audio.NewExecPlayer(cfg.PlayerCmd, cfg.PlayerArgs, log)

	// Scheduler
	sched := scheduler.NewTimerBridge(model.PermissionStatus{
		ExactAlarm:           cfg.ExactAlarmsAllowed,
		BatteryUnrestricted:  cfg.BatteryUnrestricted,
		NotificationsEnabled: cfg.NotificationsEnabled,
	}, log)

	// Engine
	eng := engine.New(alarmRepository, recordingRepository, prefsStore, pipeline, player, sched, log, engine.Options{
		Quota:                audio.Quota{MaxRecordings: cfg.MaxRecordings, MaxBytes: cfg.MaxStorageBytes},
		MinRecordingDuration: cfg.MinRecordingDuration,
		MaxRecordingDuration: cfg.MaxRecordingDuration,
	})
	sched.Fire = eng.HandleFire
	sched.Stop = func() { eng.StopActive() }

	// Action handling
	runner := bridge.NewRunner(log)
	actionBridge := bridge.New(eng, runner, log)

	migrationService := migration.New(prefsStore, recordingRepository, alarmRepository, log)

	return &App{
		Cfg:       cfg,
		DB:        database,
		Prefs:     prefsStore,
		Scheduler: sched,
		Engine:    eng,
		Bridge:    actionBridge,
		Runner:    runner,
		Migration: migrationService,
	}, nil
}

func (a *App) Close() error {
	if a.Engine != nil {
		a.Engine.Shutdown()
	}
	if a.Prefs != nil {
		if err := a.Prefs.Close(); err != nil {
			return err
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
