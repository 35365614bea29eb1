package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/satriawb/postboard/config"
	"github.com/satriawb/postboard/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "demo@postboard.local"
	password := "password123"
	name := "Demo User"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash, avatar_url)
		VALUES ($1, $2, $3, '')
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, name, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	titles := []string{"Hello Postboard", "Second post", "Notes on pagination"}
	for i, title := range titles {
		var postID string
		err = db.QueryRow(`
			INSERT INTO posts (title, content, author_id)
			VALUES ($1, $2, $3)
			RETURNING id
		`, title, fmt.Sprintf("Seeded content %d", i+1), id).Scan(&postID)
		if err != nil {
			log.Fatalf("failed to seed post: %v", err)
		}
		fmt.Printf("seeded post: id=%s title=%q\n", postID, title)
	}
}
