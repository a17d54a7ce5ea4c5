package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(dbPath string) (*sql.DB, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}
	// _busy_timeout: 同時の書き込みでSQLITE_BUSYにならないよう待機する
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// インメモリDBは接続ごとに別物になるので1本に固定
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := CreateTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func CreateTables(db *sql.DB) error {
	schema := `
	-- 募集テーブル
	CREATE TABLE IF NOT EXISTS recruitments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		start_time TEXT NOT NULL,
		note TEXT NOT NULL,
		leader_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		thread_id TEXT NOT NULL,
		message_id TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP
	);

	-- 応募者テーブル (seqが応募順)
	CREATE TABLE IF NOT EXISTS participants (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		recruitment_id INTEGER NOT NULL,
		participant_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (recruitment_id, participant_id),
		FOREIGN KEY (recruitment_id) REFERENCES recruitments(id) ON DELETE CASCADE
	);

	-- インデックス
	CREATE INDEX IF NOT EXISTS idx_recruitments_message ON recruitments(thread_id, message_id);
	CREATE INDEX IF NOT EXISTS idx_participants_recruitment_id ON participants(recruitment_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}
