package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anatoli9010/volleyball-club-management/internal/model"
)

// PaymentFilter 缴费查询条件；零值字段不参与过滤
type PaymentFilter struct {
	Year      int
	Month     int
	Status    string
	PlayerIDs []string
}

// PaymentMonthSummary 单月缴费汇总
type PaymentMonthSummary struct {
	Year       int
	Month      int
	Total      int64
	Paid       int64
	PaidAmount int64
}

// PaymentRepository 会费数据访问接口
type PaymentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetByPeriod(ctx context.Context, playerID string, year, month int) (*model.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]model.Payment, error)
	// EnsureMonth 为给定队员补齐当月待缴记录，已有记录不变
	EnsureMonth(ctx context.Context, playerIDs []string, year, month int) error
	// Upsert 按 (player_id, year, month) 写入金额与备注，不改变缴费状态
	Upsert(ctx context.Context, payment *model.Payment) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time, updatedBy string) error
	MonthlySummary(ctx context.Context) ([]PaymentMonthSummary, error)
}

type paymentRepo struct {
	db *gorm.DB
}

// NewPaymentRepo 创建 PaymentRepository 实例
func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db: db}
}

var paymentPeriodColumns = []clause.Column{{Name: "player_id"}, {Name: "year"}, {Name: "month"}}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) GetByPeriod(ctx context.Context, playerID string, year, month int) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND year = ? AND month = ?", playerID, year, month).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepo) List(ctx context.Context, filter PaymentFilter) ([]model.Payment, error) {
	var payments []model.Payment
	db := r.db.WithContext(ctx)
	if filter.Year != 0 {
		db = db.Where("year = ?", filter.Year)
	}
	if filter.Month != 0 {
		db = db.Where("month = ?", filter.Month)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.PlayerIDs != nil {
		if len(filter.PlayerIDs) == 0 {
			return nil, nil
		}
		db = db.Where("player_id IN ?", filter.PlayerIDs)
	}
	err := db.Order("year DESC, month DESC").Find(&payments).Error
	return payments, err
}

func (r *paymentRepo) EnsureMonth(ctx context.Context, playerIDs []string, year, month int) error {
	if len(playerIDs) == 0 {
		return nil
	}
	rows := make([]model.Payment, 0, len(playerIDs))
	for _, id := range playerIDs {
		rows = append(rows, model.Payment{PlayerID: id, Year: year, Month: month, Status: model.PaymentPending})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: paymentPeriodColumns, DoNothing: true}).
		CreateInBatches(&rows, 200).Error
}

func (r *paymentRepo) Upsert(ctx context.Context, payment *model.Payment) error {
	if payment.Status == "" {
		payment.Status = model.PaymentPending
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: paymentPeriodColumns,
			DoUpdates: clause.Assignments(map[string]interface{}{
				"amount_cents": payment.AmountCents,
				"note":         payment.Note,
				"updated_by":   payment.UpdatedBy,
				"updated_at":   time.Now(),
			}),
		}).
		Create(payment).Error
}

func (r *paymentRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time, updatedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("payment_id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.PaymentPaid,
			"paid_at":    paidAt,
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

func (r *paymentRepo) MonthlySummary(ctx context.Context) ([]PaymentMonthSummary, error) {
	var rows []PaymentMonthSummary
	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Select(`year, month, COUNT(*) AS total,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS paid,
			SUM(CASE WHEN status = ? THEN amount_cents ELSE 0 END) AS paid_amount`,
			model.PaymentPaid, model.PaymentPaid).
		Group("year, month").
		Order("year ASC, month ASC").
		Scan(&rows).Error
	return rows, err
}
