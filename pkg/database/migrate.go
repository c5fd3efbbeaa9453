package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtyMigration 上次迁移中途失败，需人工修复后 force 版本
var ErrDirtyMigration = errors.New("数据库迁移处于 dirty 状态")

var migrationName = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.(up|down)\.sql$`)

// RunMigrations 执行数据库迁移
// dirty 状态下拒绝继续；迁移文件须成对且版本连续
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	versions, err := checkMigrationFiles(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}
	m.Log = &migrateLogger{s: logger.Sugar()}

	before, err := currentVersion(m)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	after, err := currentVersion(m)
	if err != nil {
		return err
	}
	logger.Info("数据库迁移完成",
		zap.Uint("from", before),
		zap.Uint("to", after),
		zap.Uint("latest", versions[len(versions)-1]),
	)
	return nil
}

// currentVersion 读取当前版本；空库返回 0，dirty 返回 ErrDirtyMigration
func currentVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("读取迁移版本失败: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("%w: version=%d", ErrDirtyMigration, version)
	}
	return version, nil
}

// checkMigrationFiles 校验迁移文件：每个版本 up/down 成对，版本从 1 起连续
func checkMigrationFiles(fsys fs.FS, dir string) ([]uint, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("读取迁移目录失败: %w", err)
	}

	pairs := make(map[uint]map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		parts := migrationName.FindStringSubmatch(e.Name())
		if parts == nil {
			return nil, fmt.Errorf("迁移文件命名不规范: %s", e.Name())
		}
		v, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("迁移版本无效: %s", e.Name())
		}
		if pairs[uint(v)] == nil {
			pairs[uint(v)] = make(map[string]bool, 2)
		}
		pairs[uint(v)][parts[2]] = true
	}
	if len(pairs) == 0 {
		return nil, errors.New("没有迁移文件")
	}

	versions := make([]uint, 0, len(pairs))
	for v, dirs := range pairs {
		if !dirs["up"] || !dirs["down"] {
			return nil, fmt.Errorf("迁移 %06d 缺少 up 或 down 文件", v)
		}
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	for i, v := range versions {
		if v != uint(i+1) {
			return nil, fmt.Errorf("迁移版本不连续: 期望 %06d，实际 %06d", i+1, v)
		}
	}
	return versions, nil
}

// migrateLogger 把 golang-migrate 的日志转到 zap
type migrateLogger struct {
	s *zap.SugaredLogger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.s.Infof(strings.TrimRight(format, "\n"), v...)
}

func (l *migrateLogger) Verbose() bool { return false }
