package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-admin/internal/api"
	"github.com/p-n-ai/pai-admin/internal/catalog"
	"github.com/p-n-ai/pai-admin/internal/console"
	"github.com/p-n-ai/pai-admin/internal/curriculum"
	"github.com/p-n-ai/pai-admin/internal/notify"
	"github.com/p-n-ai/pai-admin/internal/platform/cache"
	"github.com/p-n-ai/pai-admin/internal/platform/config"
	"github.com/p-n-ai/pai-admin/internal/platform/database"
	"github.com/p-n-ai/pai-admin/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	client := api.NewClient(cfg.API.BaseURL,
		api.WithToken(cfg.API.Token),
		api.WithTimeout(cfg.API.Timeout()),
		api.WithLogger(logger),
	)
	checks := []readinessCheck{{name: "api", check: client.HealthCheck}}

	// Notifications always reach the log. With a database they are also
	// persisted; otherwise the console reads them from memory.
	notifiers := notify.Multi{notify.NewLog(logger)}
	var feed notify.Feed
	if cfg.Database.Enabled {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(ctx, notify.Schema...); err != nil {
			slog.Error("failed to migrate notification log", "error", err)
			os.Exit(1)
		}
		pg := notify.NewPostgres(db.Pool)
		notifiers = append(notifiers, pg)
		feed = pg
		checks = append(checks, readinessCheck{name: "database", check: db.HealthCheck})
	} else {
		mem := notify.NewMemory()
		notifiers = append(notifiers, mem)
		feed = mem
	}

	if cfg.Alerts.Enabled() {
		tg, err := notify.NewTelegram(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID)
		if err != nil {
			slog.Error("failed to configure Telegram alerts", "error", err)
			os.Exit(1)
		}
		notifiers = append(notifiers, tg)
	}

	var stateCache catalog.StateCache
	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		stateCache = c
		checks = append(checks, readinessCheck{name: "cache", check: c.HealthCheck})
	}

	instructors := catalog.NewInstructorRepository(client)
	courseRepo := catalog.NewCourseRepository(client,
		catalog.WithInstructorDirectory(instructors),
		catalog.WithLogger(logger),
	)
	fanout := []catalog.Option{catalog.WithFanoutLimit(cfg.API.FanoutLimit), catalog.WithLogger(logger)}
	modules := catalog.NewModuleRepository(client)
	lessons := catalog.NewLessonRepository(client)
	sessions := catalog.NewSessionRepository(client, courseRepo, fanout...)
	quizzes := catalog.NewQuizRepository(client, courseRepo, fanout...)
	enrollments := catalog.NewEnrollmentRepository(client)
	states := catalog.NewStateResolver(catalog.NewStateRepository(client), stateCache, cfg.Cache.StatesTTL(), logger)

	courses := store.New[catalog.Course, catalog.CourseFilters, catalog.CourseInput, catalog.CourseUpdate](courseRepo, store.Config[catalog.Course]{
		Name:     "course",
		ID:       func(c catalog.Course) int { return c.ID },
		Notifier: notifiers,
		Enrich:   states.JoinCourses,
		Logger:   logger,
	})
	sessionStore := store.New[catalog.Session, catalog.SessionFilters, catalog.SessionInput, catalog.SessionUpdate](sessions, store.Config[catalog.Session]{
		Name:     "session",
		ID:       func(s catalog.Session) int { return s.ID },
		Notifier: notifiers,
		Logger:   logger,
	})
	enrollmentStore := store.New[catalog.Enrollment, catalog.EnrollmentFilters, catalog.EnrollmentInput, catalog.EnrollmentUpdate](enrollments, store.Config[catalog.Enrollment]{
		Name:     "enrollment",
		ID:       func(e catalog.Enrollment) int { return e.ID },
		Notifier: notifiers,
		Logger:   logger,
	})

	deps := console.Deps{
		Courses:     courses,
		Sessions:    sessionStore,
		Enrollments: enrollmentStore,
		Content: curriculum.NewAssembler(curriculum.Sources{
			Courses:  courseRepo,
			Modules:  modules,
			Lessons:  lessons,
			Sessions: sessions,
			Quizzes:  quizzes,
		}, logger),
		Notifications: feed,
		PageSize:      cfg.Table.PageSize,
		Logger:        logger,
	}

	if cfg.BlueprintPath != "" {
		loader, err := curriculum.NewLoader(cfg.BlueprintPath)
		if err != nil {
			slog.Error("failed to load blueprints", "path", cfg.BlueprintPath, "error", err)
			os.Exit(1)
		}
		deps.Blueprints = loader
		deps.Importer = curriculum.NewImporter(curriculum.Writers{
			Courses:  courses,
			Modules:  modules,
			Lessons:  lessons,
			Sessions: sessionStore,
			Quizzes:  quizzes,
		}, logger)
	}

	mux := newMux(checks...)
	console.NewServer(deps).Register(mux)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * cfg.API.Timeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "api", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

// newMux creates the HTTP router with health check endpoints. readyz
// reports unavailable while any check fails.
func newMux(checks ...readinessCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz(checks))
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(checks []readinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		failing := []string{}
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				slog.Warn("readiness check failed", "check", c.name, "error", err)
				failing = append(failing, c.name)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(failing) == 0 {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ready"}`))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{"status": "unavailable", "failing": failing})
	}
}
