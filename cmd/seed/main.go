package main

import (
	"context"
	"flag"

	"github.com/evyataryagoni/iplocator/internal/config"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/store"
)

const defaultSeedFile = "./data/ip_records.csv"

// This tool loads ip,location rows from CSV into the configured datastore
// Usage: go run ./cmd/seed [-file path]
// The file is -file, else SEED_PATH, else ./data/ip_records.csv
func main() {
	appConfig, err := config.Load()
	if err != nil {
		logger.NewDefault().Fatal().Err(err).Msg("Failed to load configuration")
	}

	defaultPath := appConfig.SeedPath
	if defaultPath == "" {
		defaultPath = defaultSeedFile
	}
	path := flag.String("file", defaultPath, "CSV file with an ip,location header")
	flag.Parse()

	log := logger.New(logger.Config{
		Level:      appConfig.LogLevel,
		Pretty:     appConfig.LogPretty,
		OutputFile: appConfig.LogFile,
	}).WithComponent("seed")

	// The seed writes straight to the backend; a read cache would only be discarded
	dataStore, err := store.New(store.Config{
		Type: appConfig.DatastoreType,
		SQL: store.SQLConfig{
			Driver:   appConfig.DBDriver,
			User:     appConfig.DBUser,
			Password: appConfig.DBPassword,
			Host:     appConfig.DBHost,
			Port:     appConfig.DBPort,
			Database: appConfig.DBName,
			SSLMode:  appConfig.DBSSLMode,
		},
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Str("type", appConfig.DatastoreType).Msg("Failed to connect to datastore")
	}
	defer dataStore.Close()

	log.Info().Str("path", *path).Str("type", appConfig.DatastoreType).Msg("Loading records")

	result, err := store.LoadCSV(context.Background(), *path, dataStore)
	if err != nil {
		dataStore.Close()
		log.Fatal().Err(err).Msg("Failed to load CSV data")
	}

	log.Info().
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("invalid", result.Invalid).
		Msg("Records loaded")
}
