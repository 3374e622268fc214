package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	"github.com/SpectralDragon/percy/core/filter"
	"github.com/SpectralDragon/percy/core/persistence"
	"github.com/SpectralDragon/percy/core/predicate"
	"github.com/SpectralDragon/percy/sqlite"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// User is the demo entity filtered below.
type User struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Age    int    `json:"age"`
	Active bool   `json:"active"`
}

func init() {
	pflag.String("db-path", "./percy.db", "Path to the SQLite database file")
	pflag.String("log-level", "info", "Minimum log level (debug, info, warn, error)")
	pflag.String("config", "", "Path to the configuration file")

	f := pflag.CommandLine
	normalizeFunc := f.GetNormalizeFunc()
	f.SetNormalizeFunc(func(fs *pflag.FlagSet, name string) pflag.NormalizedName {
		result := normalizeFunc(fs, name)
		return pflag.NormalizedName(strings.ReplaceAll(string(result), "-", "_"))
	})
}

func loadConfig() error {
	viper.SetDefault("db_path", "./percy.db")
	viper.SetDefault("log_level", "info")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return err
	}
	viper.AutomaticEnv()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return viper.ReadInConfig()
	}
	return nil
}

func buildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"
	return config.Build()
}

func main() {
	if err := loadConfig(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	dbPath := viper.GetString("db_path")
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		logger.Fatal("Failed to remove existing database file", zap.Error(err))
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	store := sqlite.NewStore(db, logger, nil)

	users, err := persistence.NewCollection[User](ctx, "users", store, logger)
	if err != nil {
		logger.Fatal("Failed to create 'users' collection", zap.Error(err))
	}

	// Audit every successful fetch, including the filter it ran with.
	subscriptionID := users.RegisterSubscription(persistence.RegisterSubscriptionOptions{
		Event: persistence.EntityFetchSuccess,
		Callback: func(_ context.Context, event persistence.Event) error {
			if event.Filter != nil {
				logger.Info("Fetch completed", zap.String("filter", *event.Filter))
			}
			return nil
		},
	})
	defer users.UnregisterSubscription(subscriptionID)

	_, err = users.Insert(ctx,
		User{Name: "Alice", Email: "alice@example.com", Age: 30, Active: true},
		User{Name: "Bob", Email: "bob@example.com", Age: 17, Active: true},
		User{Name: "Carol", Email: "carol@archive.org", Age: 45, Active: false},
	)
	if err != nil {
		logger.Fatal("Failed to insert users", zap.Error(err))
	}

	// Record predicates match against the stored document; entity functions
	// match against the decoded User. Both compose freely.
	activeAdults := filter.And[User](
		filter.NewPredicateFilter[User](predicate.Gte("age", 18)),
		filter.NewFunctionFilter(func(u User) bool { return u.Active }),
	)
	logger.Info("Fetching with filter", zap.String("describe", activeAdults.Describe()))

	matched, err := users.Fetch(ctx, activeAdults)
	if err != nil {
		logger.Fatal("Failed to fetch active adults", zap.Error(err))
	}
	for _, u := range matched {
		logger.Info("Active adult", zap.String("name", u.Name), zap.Int("age", u.Age))
	}

	examplePeople := filter.Or[User](
		filter.NewPredicateFilter[User](predicate.EndsWith("email", "@example.com")),
		filter.Not[User](filter.NewPredicateFilter[User](predicate.Exists("email"))),
	)
	logger.Info("Fetching with filter", zap.String("describe", examplePeople.Describe()))

	matched, err = users.Fetch(ctx, examplePeople)
	if err != nil {
		logger.Fatal("Failed to fetch example.com users", zap.Error(err))
	}
	logger.Info("Matched example.com users", zap.Int("count", len(matched)))

	deleted, err := users.Delete(ctx, filter.NewPredicateFilter[User](predicate.Lt("age", 18)))
	if err != nil {
		logger.Fatal("Failed to delete minors", zap.Error(err))
	}
	logger.Info("Deleted minors", zap.Int64("count", deleted))

	remaining, err := users.Count(ctx, nil)
	if err != nil {
		logger.Fatal("Failed to count users", zap.Error(err))
	}
	logger.Info("Remaining users", zap.Int("count", remaining))
}
