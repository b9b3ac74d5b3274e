package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/vaultbank/vault-backend/config"
	"github.com/vaultbank/vault-backend/pkg/helpers"
)

// Seeds the admin account used to operate the admin surface.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@vaultbank.dev"
	password := "admin123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	number, err := helpers.GenerateAccountNumber()
	if err != nil {
		log.Fatalf("failed to generate account number: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO accounts (first_name, last_name, phone, email, role, password_hash, account_number)
		VALUES ($1, $2, $3, $4, 'admin', $5, $6)
		ON CONFLICT (email) DO UPDATE SET role='admin', updated_at=now()
		RETURNING id
	`, "Vault", "Admin", "+10000000000", email, hash, number).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", id, email, password)
}
