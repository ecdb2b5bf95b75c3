// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// migrationsDir は方言ごとのマイグレーションディレクトリを返す。
func migrationsDir(d Dialect) string {
	return "migrations/" + string(d)
}

// MigrationFiles は方言に対応する埋め込みマイグレーションのファイル名一覧を返す。
func MigrationFiles(d Dialect) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir(d))
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// PostgreSQLはURLをそのままmigrateに渡し、SQLiteはPRAGMA付きの専用接続を開いて渡す。
// 返されたインスタンスのCloseで内部の接続も閉じられる。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	dialect, err := DialectFromURL(databaseURL)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationsFS, migrationsDir(dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		dsn, err := sqliteDSN(databaseURL)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open(dialect.DriverName(), dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		driver, err := sqlite.WithInstance(db, &sqlite.Config{})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
		if err != nil {
			driver.Close()
			return nil, fmt.Errorf("failed to create migrator: %w", err)
		}
		return m, nil
	default:
		m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create migrator: %w", err)
		}
		return m, nil
	}
}

// RunMigrations はすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
// マイグレーションはCREATE TABLE IF NOT EXISTSのみで構成され、既存テーブルは変更しない。
func RunMigrations(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
