package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
)

// AttendanceCount 单个队员的考勤计数
type AttendanceCount struct {
	PlayerID string
	Total    int64
	Present  int64
}

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]model.Attendance, error)
	// Upsert 按 (session_id, player_id) 写入或覆盖考勤状态
	Upsert(ctx context.Context, records []model.Attendance) error
	// CountByPlayers 按队员汇总已标记的考勤；没有记录的队员不出现在结果中
	CountByPlayers(ctx context.Context, playerIDs []string) ([]AttendanceCount, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) Upsert(ctx context.Context, records []model.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "player_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "noted_at"}),
		}).
		Create(&records).Error
}

func (r *attendanceRepo) CountByPlayers(ctx context.Context, playerIDs []string) ([]AttendanceCount, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	var rows []AttendanceCount
	err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Select("player_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS present", model.AttendancePresent).
		Where("player_id IN ?", playerIDs).
		Group("player_id").
		Scan(&rows).Error
	return rows, err
}
