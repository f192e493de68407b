package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"setuptrack/frontend/login"
	"setuptrack/infrastructure/jsonstore"
	"setuptrack/userstore"
)

// Seeds or updates an account in users.json without going through the web UI.
// Useful for bootstrapping a fresh install or recovering a lost password.
func main() {
	dataDir := flag.String("data", "./data", "data directory holding users.json")
	username := flag.String("username", userstore.AdminUsername, "account to create or update")
	password := flag.String("password", "", "account password (required)")
	profile := flag.String("profile", "auditor", "profile: auditor or supplier")
	flag.Parse()

	if *password == "" {
		log.Fatal("password is required")
	}
	if err := login.ValidatePasswordPolicy(*password); err != nil {
		log.Fatalf("password rejected: %v", err)
	}

	if err := jsonstore.EnsureDir(*dataDir); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	users := userstore.NewStore(filepath.Join(*dataDir, "users.json"))
	if err := users.Upsert(*username, *password, *profile); err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	fmt.Printf("seeded user %s (profile=%s)\n", *username, users.Profile(*username))
}
