package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hitoshi/newsletter/internal/database"
)

// openTestDB はマイグレーション済みの一時SQLiteデータベースを開く。
// TEST_DATABASE_URLが設定されている場合はそちらを使用する。
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dir, err := os.MkdirTemp("", "newsletter-repo-")
		if err != nil {
			t.Fatalf("failed to create temp dir: %v", err)
		}
		t.Cleanup(func() { os.RemoveAll(dir) })
		dbURL = "sqlite://" + filepath.Join(dir, "test.db")
	}

	db, err := database.Open(dbURL)
	if err != nil {
		t.Fatalf("データベースへの接続に失敗: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Ping(); err != nil {
		t.Skipf("テスト用データベースに接続できません（スキップ）: %v", err)
	}

	if err := database.RunMigrations(dbURL); err != nil {
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}

	if db.Dialect == database.DialectPostgres {
		if _, err := db.Exec(`TRUNCATE newsletters, subscribers RESTART IDENTITY CASCADE`); err != nil {
			t.Fatalf("クリーンアップに失敗: %v", err)
		}
	}

	return db
}
