package sqlite

import (
	"bytes"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
)

func TestWithSQLLog_ReplacesTracedPool(t *testing.T) {
	RegisterTestingT(t)

	dsn := DSN(filepath.Join(t.TempDir(), "todo.db"))

	traced, err := otelsql.Open("sqlite3", dsn)
	Expect(err).ToNot(HaveOccurred())

	var out bytes.Buffer
	logged := withSQLLog(dsn, traced, &out)
	defer logged.Close()

	var one int
	Expect(logged.QueryRow("SELECT 1").Scan(&one)).To(Succeed())
	Expect(one).To(Equal(1))
	Expect(out.String()).To(ContainSubstring("SELECT 1"))

	Expect(traced.Ping()).To(MatchError(ContainSubstring("database is closed")))
}

func TestOpen_WithSQLLog(t *testing.T) {
	RegisterTestingT(t)

	db, err := Open(Options{Path: filepath.Join(t.TempDir(), "todo.db"), SQLLog: true})
	Expect(err).ToNot(HaveOccurred())
	defer db.Close()

	var count int
	Expect(db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)).To(Succeed())
	Expect(count).To(BeZero())
}
