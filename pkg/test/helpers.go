package test

import (
	"database/sql"
	"log"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"todoapi/internal/adapter/database/sqlite"
	"todoapi/pkg/auth"
)

const (
	TestJWTSecret    = "test-jwt-secret"
	TestCursorSecret = "test-cursor-secret"
	TestPassword     = "password1"
)

// InitTestDB returns a migrated in-memory database. The pool is pinned to a
// single connection since every new connection to ":memory:" would see an
// empty database of its own.
func InitTestDB() *sqlite.DB {
	db, err := sql.Open("sqlite3", ":memory:")

	if err != nil {
		log.Fatal(err)
	}

	db.SetMaxOpenConns(1)

	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		log.Fatal(err)
	}

	if err := sqlite.RunMigrations(db); err != nil {
		log.Fatal(err)
	}

	return sqlite.NewDB(db)
}

func CleanDB(t *testing.T, db *sqlite.DB) {
	for _, table := range []string{"tasks", "users"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

func NewTestHasher() *auth.BcryptHasher {
	return auth.NewBcryptHasher(bcrypt.MinCost)
}

func NewTestJWT(opts ...auth.JWTOption) *auth.JWT {
	return auth.NewJWT([]byte(TestJWTSecret), 15*time.Minute, opts...)
}
