package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
)

// ChatBindingRepository 手机号绑定数据访问接口
type ChatBindingRepository interface {
	Upsert(ctx context.Context, binding *model.ChatBinding) error
	GetByPhone(ctx context.Context, phone string) (*model.ChatBinding, error)
	ListByPhones(ctx context.Context, phones []string) ([]model.ChatBinding, error)
}

type chatBindingRepo struct {
	db *gorm.DB
}

// NewChatBindingRepo 创建 ChatBindingRepository 实例
func NewChatBindingRepo(db *gorm.DB) ChatBindingRepository {
	return &chatBindingRepo{db: db}
}

func (r *chatBindingRepo) Upsert(ctx context.Context, binding *model.ChatBinding) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.AssignmentColumns([]string{"chat_id", "bound_at"}),
		}).
		Create(binding).Error
}

func (r *chatBindingRepo) GetByPhone(ctx context.Context, phone string) (*model.ChatBinding, error) {
	var binding model.ChatBinding
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&binding).Error
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

func (r *chatBindingRepo) ListByPhones(ctx context.Context, phones []string) ([]model.ChatBinding, error) {
	if len(phones) == 0 {
		return nil, nil
	}
	var bindings []model.ChatBinding
	err := r.db.WithContext(ctx).
		Where("phone IN ?", phones).
		Find(&bindings).Error
	return bindings, err
}
