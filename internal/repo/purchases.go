package repo

import (
	"context"

	"github.com/sefailyasoz95/test-mate/internal/domain/billing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Purchases is the GORM-backed store for confirmed payments.
type Purchases struct {
	db *gorm.DB
}

func NewPurchases(db *gorm.DB) *Purchases {
	return &Purchases{db: db}
}

// CreateIfAbsent inserts the purchase unless a row with the same Stripe
// session id already exists. The dedup runs inside Postgres
// (ON CONFLICT DO NOTHING on the unique index), so concurrent webhook
// deliveries cannot both credit. Returns whether a row was inserted.
func (r *Purchases) CreateIfAbsent(ctx context.Context, p *billing.Purchase) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_session_id"}},
		DoNothing: true,
	}).Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Purchases) ForAppUser(ctx context.Context, appID string, userID uint) ([]billing.Purchase, error) {
	var list []billing.Purchase
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND user_id = ?", appID, userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// CompletedTotal sums amounts over completed purchases for one (app, user)
// pair. The entitlement math divides this by the single-tester unit price.
func (r *Purchases) CompletedTotal(ctx context.Context, appID string, userID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&billing.Purchase{}).
		Where("app_id = ? AND user_id = ? AND status = ?", appID, userID, billing.PurchaseCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
