package main

import (
	"log"
	"os"

	"dental-inventory/internal/model"
	"dental-inventory/internal/repository"
	"dental-inventory/pkg/config"
	"dental-inventory/pkg/database"

	"github.com/google/uuid"
)

// reset-password sets a staff member's password directly in the database,
// for when nobody can sign in any more. RESET_EMAIL and RESET_PASSWORD pick
// the account; they default to ADMIN_EMAIL and ADMIN_PASSWORD.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	email := os.Getenv("RESET_EMAIL")
	if email == "" {
		email = cfg.AdminEmail
	}
	password := os.Getenv("RESET_PASSWORD")
	if password == "" {
		password = cfg.AdminPassword
	}
	if len(password) < 6 {
		log.Fatal("❌ Password must be at least 6 characters")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	staffRepo := repository.NewStaffRepo(db)
	staff, err := staffRepo.FindByEmail(email)
	if err != nil {
		log.Fatalf("❌ Staff %s not found in database: %v", email, err)
	}

	var hashed model.Staff
	if err := hashed.SetPassword(password); err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	if err := staffRepo.UpdatePassword(staff.ID, hashed.Password); err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}
	if err := staffRepo.UpdateTokenVersion(staff.ID, uuid.New().String()); err != nil {
		log.Fatalf("❌ Failed to end existing sessions: %v", err)
	}

	log.Printf("✅ Password for %s has been reset", email)
}
