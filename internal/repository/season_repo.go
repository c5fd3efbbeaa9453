package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
)

// SeasonRepository 赛季数据访问接口
type SeasonRepository interface {
	Create(ctx context.Context, season *model.Season) error
	GetByID(ctx context.Context, id string) (*model.Season, error)
	GetActive(ctx context.Context) (*model.Season, error)
	List(ctx context.Context) ([]model.Season, error)
	Update(ctx context.Context, season *model.Season) error
	Delete(ctx context.Context, id string, deletedBy string) error
	ClearActive(ctx context.Context) error
	SetActive(ctx context.Context, id string, updatedBy string) error
}

type seasonRepo struct {
	db *gorm.DB
}

// NewSeasonRepo 创建 SeasonRepository 实例
func NewSeasonRepo(db *gorm.DB) SeasonRepository {
	return &seasonRepo{db: db}
}

func (r *seasonRepo) Create(ctx context.Context, season *model.Season) error {
	return r.db.WithContext(ctx).Create(season).Error
}

func (r *seasonRepo) GetByID(ctx context.Context, id string) (*model.Season, error) {
	var season model.Season
	err := r.db.WithContext(ctx).
		Where("season_id = ?", id).
		First(&season).Error
	if err != nil {
		return nil, err
	}
	return &season, nil
}

// GetActive 返回当前激活赛季；历史数据中若出现多个，取最近更新的一个
func (r *seasonRepo) GetActive(ctx context.Context) (*model.Season, error) {
	var season model.Season
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("updated_at DESC").
		First(&season).Error
	if err != nil {
		return nil, err
	}
	return &season, nil
}

func (r *seasonRepo) List(ctx context.Context) ([]model.Season, error) {
	var seasons []model.Season
	err := r.db.WithContext(ctx).
		Order("is_active DESC, start_date DESC, created_at DESC").
		Find(&seasons).Error
	return seasons, err
}

// Update 只写基础字段，激活状态只经 ClearActive / SetActive 变更
func (r *seasonRepo) Update(ctx context.Context, season *model.Season) error {
	return r.db.WithContext(ctx).
		Model(season).
		Where("season_id = ?", season.SeasonID).
		Updates(map[string]interface{}{
			"name":       season.Name,
			"start_date": season.StartDate,
			"end_date":   season.EndDate,
			"updated_by": season.UpdatedBy,
		}).Error
}

func (r *seasonRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Season{}).
		Where("season_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_by": deletedBy,
			"deleted_at": time.Now(),
		}).Error
}

// ClearActive 将所有赛季的 is_active 设为 false
func (r *seasonRepo) ClearActive(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&model.Season{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

// SetActive 激活指定赛季，需与 ClearActive 在同一事务内调用
func (r *seasonRepo) SetActive(ctx context.Context, id string, updatedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Season{}).
		Where("season_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  true,
			"updated_by": updatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
