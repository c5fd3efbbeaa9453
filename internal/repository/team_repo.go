package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
)

// TeamRepository 球队数据访问接口
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	GetByName(ctx context.Context, name string) (*model.Team, error)
	List(ctx context.Context) ([]model.Team, error)
	Rename(ctx context.Context, id string, name string) error
}

type teamRepo struct {
	db *gorm.DB
}

// NewTeamRepo 创建 TeamRepository 实例
func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// GetByName 按名称精确查找；重名时取最早创建的一条
func (r *teamRepo) GetByName(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Order("created_at ASC").
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

func (r *teamRepo) Rename(ctx context.Context, id string, name string) error {
	return r.db.WithContext(ctx).
		Model(&model.Team{}).
		Where("team_id = ?", id).
		Update("name", name).Error
}
