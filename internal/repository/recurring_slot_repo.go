package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
)

// RecurringSlotRepository 周期训练模板数据访问接口
type RecurringSlotRepository interface {
	Create(ctx context.Context, slot *model.RecurringSlot) error
	GetByID(ctx context.Context, id string) (*model.RecurringSlot, error)
	ListBySeason(ctx context.Context, seasonID string) ([]model.RecurringSlot, error)
	Update(ctx context.Context, slot *model.RecurringSlot) error
	Delete(ctx context.Context, id string) error
	// ReplaceAll 在一个事务内删除赛季全部模板并写入新模板
	ReplaceAll(ctx context.Context, seasonID string, slots []model.RecurringSlot) error
}

type recurringSlotRepo struct {
	db *gorm.DB
}

// NewRecurringSlotRepo 创建 RecurringSlotRepository 实例
func NewRecurringSlotRepo(db *gorm.DB) RecurringSlotRepository {
	return &recurringSlotRepo{db: db}
}

func (r *recurringSlotRepo) Create(ctx context.Context, slot *model.RecurringSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *recurringSlotRepo) GetByID(ctx context.Context, id string) (*model.RecurringSlot, error) {
	var slot model.RecurringSlot
	err := r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *recurringSlotRepo) ListBySeason(ctx context.Context, seasonID string) ([]model.RecurringSlot, error) {
	var slots []model.RecurringSlot
	err := r.db.WithContext(ctx).
		Where("season_id = ?", seasonID).
		Order("weekday ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}

func (r *recurringSlotRepo) Update(ctx context.Context, slot *model.RecurringSlot) error {
	return r.db.WithContext(ctx).
		Model(slot).
		Where("slot_id = ?", slot.SlotID).
		Updates(map[string]interface{}{
			"team_id":    slot.TeamID,
			"weekday":    slot.Weekday,
			"start_time": slot.StartTime,
			"end_time":   slot.EndTime,
			"venue":      slot.Venue,
			"title":      slot.Title,
			"updated_by": slot.UpdatedBy,
		}).Error
}

func (r *recurringSlotRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		Delete(&model.RecurringSlot{}).Error
}

func (r *recurringSlotRepo) ReplaceAll(ctx context.Context, seasonID string, slots []model.RecurringSlot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("season_id = ?", seasonID).Delete(&model.RecurringSlot{}).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		for i := range slots {
			slots[i].SeasonID = seasonID
		}
		return tx.Create(&slots).Error
	})
}
