package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"rhystmorgan/phonebook/internal/api"
	"rhystmorgan/phonebook/internal/api/apitest"
)

const (
	defaultPort      = "8090"
	defaultAPIKey    = "contacts-api-secret-key"
	defaultLatencyMs = "150"
)

// Seeded so a fresh TUI has something to group and search.
var demoUsers = []api.UserDTO{
	{FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "+44 20 7946 0001"},
	{FirstName: "Alan", LastName: "Turing", PhoneNumber: "+44 20 7946 0002"},
	{FirstName: "Barbara", LastName: "Liskov", PhoneNumber: "+1 617 555 0103"},
	{FirstName: "Claude", LastName: "Shannon", PhoneNumber: "+1 617 555 0104"},
	{FirstName: "Grace", LastName: "Hopper", PhoneNumber: "+1 202 555 0105"},
	{PhoneNumber: "555 0106"},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	port := getEnv("PORT", defaultPort)
	key := getEnv("API_KEY", defaultAPIKey)
	latency := getEnvInt("LATENCY_MS", defaultLatencyMs)

	srv := apitest.New(key, logger)
	srv.SetLatency(time.Duration(latency) * time.Millisecond)
	if getEnv("SEED", "true") != "false" {
		srv.Seed(demoUsers...)
	}

	logger.Info("mock contacts API starting", "port", port, "latency_ms", latency)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	value, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil {
		value, _ = strconv.Atoi(defaultValue)
	}
	return value
}
