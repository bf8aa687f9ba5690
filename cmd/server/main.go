package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Praveen5612/skill-survey-bot/internal/api"
	"github.com/Praveen5612/skill-survey-bot/internal/catalog"
	"github.com/Praveen5612/skill-survey-bot/internal/config"
	"github.com/Praveen5612/skill-survey-bot/internal/directory"
	"github.com/Praveen5612/skill-survey-bot/internal/logging"
	"github.com/Praveen5612/skill-survey-bot/internal/middleware"
	"github.com/Praveen5612/skill-survey-bot/internal/resumes"
	"github.com/Praveen5612/skill-survey-bot/internal/services"
	"github.com/Praveen5612/skill-survey-bot/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	cat, err := catalog.Load(cfg.ProcessFile)
	if err != nil {
		return fmt.Errorf("load process catalog: %w", err)
	}
	users, err := directory.Load(cfg.UserFile)
	if err != nil {
		return fmt.Errorf("load user directory: %w", err)
	}
	logger.Info("sources loaded",
		"processes", len(cat.List()),
		"users", len(users.List()),
		"process_file", cfg.ProcessFile,
		"user_file", cfg.UserFile,
	)

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	auth := middleware.NewAuth(cfg.JWTSecret)
	authSvc := services.NewAuthService(users, auth.SignToken)
	surveySvc := services.NewSurveyService(st, cat, users)
	gapSvc := services.NewGapService(st)
	matchSvc := services.NewMatchService(gapSvc, resumes.NewDirSource(cfg.ResumeDir))
	exportSvc := services.NewExportService(st, users)

	mux := http.NewServeMux()
	api.NewRouter(authSvc, surveySvc, gapSvc, matchSvc, exportSvc, cat, users).Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":    true,
			"name":  "skill-survey-bot",
			"store": cfg.StoreBackend,
		})
	})

	handler := middleware.CORS(auth.WithAuth(mux))

	logger.Info("listening", "addr", cfg.Addr, "store", cfg.StoreBackend)
	return http.ListenAndServe(cfg.Addr, handler)
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "", "json":
		return store.OpenFile(cfg.DataFile)
	case "sqlite":
		// _foreign_keys applies the pragma on every pooled connection.
		db, err := sql.Open("sqlite3", cfg.SQLitePath+"?_foreign_keys=on")
		if err != nil {
			return nil, err
		}
		return store.NewSQLiteStore(db)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
