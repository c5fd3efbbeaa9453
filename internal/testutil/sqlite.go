// Package testutil 提供基于内存 SQLite 的测试数据库
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// 与 PostgreSQL 迁移保持同样的约束（唯一索引、CHECK），类型按 SQLite 习惯书写
var schema = []string{
	`CREATE TABLE seasons (
		season_id  TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		start_date DATE,
		end_date   DATE,
		is_active  BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_by TEXT,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_by TEXT,
		deleted_at DATETIME,
		deleted_by TEXT
	)`,
	`CREATE TABLE teams (
		team_id    TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		age_group  TEXT,
		gender     TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_by TEXT,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_by TEXT,
		deleted_at DATETIME,
		deleted_by TEXT
	)`,
	`CREATE TABLE recurring_slots (
		slot_id    TEXT PRIMARY KEY,
		season_id  TEXT NOT NULL REFERENCES seasons (season_id) ON DELETE CASCADE,
		team_id    TEXT REFERENCES teams (team_id) ON DELETE SET NULL,
		weekday    SMALLINT NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		start_time TEXT NOT NULL,
		end_time   TEXT NOT NULL,
		venue      TEXT,
		title      TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_by TEXT,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_by TEXT
	)`,
	`CREATE TABLE training_sessions (
		session_id   TEXT PRIMARY KEY,
		team_id      TEXT REFERENCES teams (team_id) ON DELETE SET NULL,
		session_date DATE NOT NULL,
		start_time   TEXT NOT NULL DEFAULT '',
		end_time     TEXT NOT NULL DEFAULT '',
		notes        TEXT NOT NULL DEFAULT '',
		version      INTEGER NOT NULL DEFAULT 1,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_by   TEXT,
		updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_by   TEXT
	)`,
	`CREATE UNIQUE INDEX uniq_training_sessions_key ON training_sessions (team_id, session_date, start_time)`,
	`CREATE TABLE players (
		player_id    TEXT PRIMARY KEY,
		full_name    TEXT NOT NULL,
		team_id      TEXT REFERENCES teams (team_id) ON DELETE SET NULL,
		parent_phone TEXT,
		email        TEXT,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_by   TEXT,
		updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_by   TEXT
	)`,
	`CREATE TABLE attendances (
		attendance_id TEXT PRIMARY KEY,
		session_id    TEXT NOT NULL REFERENCES training_sessions (session_id) ON DELETE CASCADE,
		player_id     TEXT NOT NULL REFERENCES players (player_id) ON DELETE CASCADE,
		status        TEXT NOT NULL DEFAULT 'absent',
		noted_at      DATETIME
	)`,
	`CREATE UNIQUE INDEX uniq_attendances_session_player ON attendances (session_id, player_id)`,
	`CREATE INDEX idx_attendances_player ON attendances (player_id)`,
	`CREATE TABLE payments (
		payment_id   TEXT PRIMARY KEY,
		player_id    TEXT NOT NULL REFERENCES players (player_id) ON DELETE CASCADE,
		year         INTEGER NOT NULL,
		month        INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		amount_cents INTEGER NOT NULL DEFAULT 0 CHECK (amount_cents >= 0),
		status       TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'paid')),
		paid_at      DATETIME,
		note         TEXT,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_by   TEXT,
		updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_by   TEXT
	)`,
	`CREATE UNIQUE INDEX uniq_payments_player_month ON payments (player_id, year, month)`,
	`CREATE TABLE chat_bindings (
		phone    TEXT PRIMARY KEY,
		chat_id  INTEGER NOT NULL,
		bound_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// NewSQLiteDB 为每个测试创建独立的内存数据库并建表
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取 sql.DB 失败: %v", err)
	}
	// 内存库在最后一个连接关闭时销毁
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("建表失败: %v\n%s", err, stmt)
		}
	}
	return db
}
