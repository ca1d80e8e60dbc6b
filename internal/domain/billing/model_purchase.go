package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const PurchaseCompleted = "completed"

// Validity window of a tester package after payment.
const PurchaseValidity = 30 * 24 * time.Hour

// Purchase records one confirmed Stripe payment. StripeSessionID carries a
// unique index so a redelivered checkout.session.completed event can never
// insert a second row, even across concurrent handler instances.
type Purchase struct {
	ID              string  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uint    `gorm:"not null;index:idx_purchases_user_id" json:"user_id"`
	AppID           string  `gorm:"type:uuid;not null;index:idx_purchases_app_id" json:"app_id"`
	PackageType     string  `gorm:"type:varchar(20);not null" json:"package_type"`
	Amount          float64 `gorm:"not null" json:"amount"`
	Status          string  `gorm:"not null" json:"status"`
	StripeSessionID string  `gorm:"not null;uniqueIndex:idx_purchases_stripe_session_id" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
