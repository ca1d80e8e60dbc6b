package apps

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// App is a registered mobile application owned by one user. Its Status walks
// the testing workflow; admins fill in TesterAccounts, AppReview and
// AppScreenshots along the way.
type App struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index:idx_apps_user_id" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	PackageName string `gorm:"not null" json:"package_name"`

	AppLink        *string        `json:"app_link,omitempty"`
	AppReview      *string        `json:"app_review,omitempty"`
	AppScreenshots pq.StringArray `gorm:"type:text[]" json:"app_screenshots,omitempty"`
	TesterAccounts *string        `json:"tester_accounts,omitempty"`

	Status string `gorm:"type:varchar(40);not null;default:'waiting_for_purchase'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *App) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = string(StatusWaitingForPurchase)
	}
	return nil
}

var packageNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`)

// IsValidPackageName reports whether s is a reverse-DNS package identifier
// like com.example.app.
func IsValidPackageName(s string) bool {
	return packageNameRe.MatchString(s)
}
