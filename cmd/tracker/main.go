package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"rescue-dog-tracker/internal/adapters/storage/sqlite"
	"rescue-dog-tracker/internal/config"
	"rescue-dog-tracker/internal/dal"
	"rescue-dog-tracker/internal/ingest"
	"rescue-dog-tracker/internal/platform/logger"
	"rescue-dog-tracker/internal/router"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dbPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tracker",
		Short: "Rescue dog tracker: ingest scrapes, keep timelines, score fits",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(initDBCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func openDB(cfg config.Config) (*sql.DB, error) {
	if cfg.DBPath == "" {
		return nil, nil // in-memory adapters
	}
	return sqlite.Open(cfg.DBPath)
}

func buildDAL(cfg config.Config, db *sql.DB, log logger.Logger) *dal.DAL {
	if db == nil {
		return dal.NewInMemory(log)
	}
	return dal.New(
		sqlite.NewDogsRepo(db),
		sqlite.NewEventsRepo(db),
		sqlite.NewUserStateRepo(db),
		sqlite.NewUserPrefsRepo(db),
		log,
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log := logger.NewFromEnv()

			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if db != nil {
				defer db.Close()
			}

			h := router.NewRouter(router.Options{
				DB:            db,
				DefaultUserID: cfg.DefaultUserID,
				Log:           log,
			})

			log.Info("listening", map[string]any{"addr": cfg.Addr, "db": cfg.DBPath})
			return http.ListenAndServe(cfg.Addr, h)
		},
	}
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [scrape-file.json]",
		Short: "Reconcile a scrape file against the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			log := logger.NewFromEnv()

			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if db != nil {
				defer db.Close()
			}

			svc := buildDAL(cfg, db, log)
			runner := ingest.NewRunner(svc, cfg, log)

			sum, err := runner.RunFile(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Processed %d dogs: %d new, %d changed, %d removed, %d errors\n",
				sum.Total, sum.New, sum.Changed, sum.Removed, sum.Errors)
			if sum.Errors > 0 {
				return fmt.Errorf("ingest finished with %d errors", sum.Errors)
			}
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var includeInactive bool
	var userID string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the fit-score ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if userID == "" {
				userID = cfg.DefaultUserID
			}

			log := logger.NewFromEnv()

			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if db != nil {
				defer db.Close()
			}

			svc := buildDAL(cfg, db, log)
			ctx := context.Background()

			list, err := svc.ListDogs(ctx, includeInactive)
			if err != nil {
				return err
			}
			scored, err := svc.ApplyUserOverrides(ctx, list, userID)
			if err != nil {
				return err
			}

			fmt.Printf("%-5s %-20s %-22s %-12s %s\n", "FIT", "NAME", "RESCUE", "STATUS", "FLAGS")
			for _, sd := range scored {
				if sd.Hidden {
					continue
				}
				flags := ""
				if sd.Favorite {
					flags = "favorite"
				}
				if cfg.OnWatchList(sd.DogName) {
					if flags != "" {
						flags += ", "
					}
					flags += "watch"
				}
				fmt.Printf("%-5d %-20s %-22s %-12s %s\n",
					sd.FitScore, sd.DogName, sd.RescueName, string(sd.Status), flags)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeInactive, "all", false, "include inactive dogs")
	cmd.Flags().StringVar(&userID, "user", "", "user whose overrides apply")
	return cmd
}

func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the SQLite database and schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("init-db requires a db path (--db or config db_path)")
			}

			db, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			fmt.Printf("Database ready at %s\n", cfg.DBPath)
			return nil
		},
	}
}
