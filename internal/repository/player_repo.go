package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
)

// PlayerRepository 队员数据访问接口
type PlayerRepository interface {
	Create(ctx context.Context, player *model.Player) error
	GetByID(ctx context.Context, id string) (*model.Player, error)
	List(ctx context.Context, teamID string) ([]model.Player, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Player, error)
	ListWithPhone(ctx context.Context) ([]model.Player, error)
}

type playerRepo struct {
	db *gorm.DB
}

// NewPlayerRepo 创建 PlayerRepository 实例
func NewPlayerRepo(db *gorm.DB) PlayerRepository {
	return &playerRepo{db: db}
}

func (r *playerRepo) Create(ctx context.Context, player *model.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *playerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	var player model.Player
	err := r.db.WithContext(ctx).
		Where("player_id = ?", id).
		First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// List teamID 为空时返回全部队员
func (r *playerRepo) List(ctx context.Context, teamID string) ([]model.Player, error) {
	var players []model.Player
	db := r.db.WithContext(ctx)
	if teamID != "" {
		db = db.Where("team_id = ?", teamID)
	}
	err := db.Order("full_name ASC").Find(&players).Error
	return players, err
}

func (r *playerRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Player, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var players []model.Player
	err := r.db.WithContext(ctx).
		Where("player_id IN ?", ids).
		Find(&players).Error
	return players, err
}

func (r *playerRepo) ListWithPhone(ctx context.Context) ([]model.Player, error) {
	var players []model.Player
	err := r.db.WithContext(ctx).
		Where("parent_phone IS NOT NULL AND parent_phone <> ''").
		Find(&players).Error
	return players, err
}
