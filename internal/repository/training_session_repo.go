package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
	pkgerrors "github.com/anatoli9010/volleyball-club-management/pkg/errors"
)

const sessionBatchSize = 200

// SessionFilter 训练课查询条件（日期闭区间）
type SessionFilter struct {
	Start  time.Time
	End    time.Time
	TeamID string
}

// TrainingSessionRepository 训练课数据访问接口
type TrainingSessionRepository interface {
	Create(ctx context.Context, session *model.TrainingSession) error
	GetByID(ctx context.Context, id string) (*model.TrainingSession, error)
	GetByKey(ctx context.Context, teamID string, date time.Time, startTime string) (*model.TrainingSession, error)
	List(ctx context.Context, filter SessionFilter) ([]model.TrainingSession, error)
	// ListKeysInRange 只取幂等键相关列，供物化去重
	ListKeysInRange(ctx context.Context, start, end time.Time) ([]model.TrainingSession, error)
	// BatchCreateIgnoreConflicts 批量插入，幂等键冲突的行静默跳过，返回实际插入行数
	BatchCreateIgnoreConflicts(ctx context.Context, sessions []model.TrainingSession) (int64, error)
	Update(ctx context.Context, session *model.TrainingSession) error
	Delete(ctx context.Context, id string) error
}

type trainingSessionRepo struct {
	db *gorm.DB
}

// NewTrainingSessionRepo 创建 TrainingSessionRepository 实例
func NewTrainingSessionRepo(db *gorm.DB) TrainingSessionRepository {
	return &trainingSessionRepo{db: db}
}

func (r *trainingSessionRepo) Create(ctx context.Context, session *model.TrainingSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *trainingSessionRepo) GetByID(ctx context.Context, id string) (*model.TrainingSession, error) {
	var session model.TrainingSession
	err := r.db.WithContext(ctx).
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *trainingSessionRepo) GetByKey(ctx context.Context, teamID string, date time.Time, startTime string) (*model.TrainingSession, error) {
	var session model.TrainingSession
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND session_date = ? AND start_time = ?", teamID, model.DateOnly(date), startTime).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *trainingSessionRepo) List(ctx context.Context, filter SessionFilter) ([]model.TrainingSession, error) {
	var sessions []model.TrainingSession
	db := r.db.WithContext(ctx).
		Where("session_date >= ? AND session_date <= ?", model.DateOnly(filter.Start), model.DateOnly(filter.End))
	if filter.TeamID != "" {
		db = db.Where("team_id = ?", filter.TeamID)
	}
	err := db.Order("session_date ASC, start_time ASC").Find(&sessions).Error
	return sessions, err
}

func (r *trainingSessionRepo) ListKeysInRange(ctx context.Context, start, end time.Time) ([]model.TrainingSession, error) {
	var sessions []model.TrainingSession
	err := r.db.WithContext(ctx).
		Select("team_id", "session_date", "start_time").
		Where("team_id IS NOT NULL").
		Where("session_date >= ? AND session_date <= ?", model.DateOnly(start), model.DateOnly(end)).
		Find(&sessions).Error
	return sessions, err
}

// BatchCreateIgnoreConflicts 主键在插入前生成，插入后按主键回查计数；
// 冲突跳过的行不会出现在库中，因此计数只包含真正写入的行
func (r *trainingSessionRepo) BatchCreateIgnoreConflicts(ctx context.Context, sessions []model.TrainingSession) (int64, error) {
	if len(sessions) == 0 {
		return 0, nil
	}
	ids := make([]string, len(sessions))
	for i := range sessions {
		if sessions[i].SessionID == "" {
			sessions[i].SessionID = uuid.NewString()
		}
		ids[i] = sessions[i].SessionID
	}

	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "session_date"}, {Name: "start_time"}},
		DoNothing: true,
	}).CreateInBatches(&sessions, sessionBatchSize).Error
	if err != nil {
		return 0, err
	}

	var inserted int64
	for from := 0; from < len(ids); from += sessionBatchSize {
		to := min(from+sessionBatchSize, len(ids))
		var n int64
		if err := db.Model(&model.TrainingSession{}).Where("session_id IN ?", ids[from:to]).Count(&n).Error; err != nil {
			return 0, err
		}
		inserted += n
	}
	return inserted, nil
}

// Update 带乐观锁的更新
func (r *trainingSessionRepo) Update(ctx context.Context, session *model.TrainingSession) error {
	oldVersion := session.Version
	result := r.db.WithContext(ctx).
		Model(session).
		Where("session_id = ? AND version = ?", session.SessionID, oldVersion).
		Updates(map[string]interface{}{
			"team_id":      session.TeamID,
			"session_date": model.DateOnly(session.SessionDate),
			"start_time":   session.StartTime,
			"end_time":     session.EndTime,
			"notes":        session.Notes,
			"updated_by":   session.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version = oldVersion + 1
	return nil
}

func (r *trainingSessionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", id).
		Delete(&model.TrainingSession{}).Error
}
