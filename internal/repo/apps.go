package repo

import (
	"context"

	"github.com/sefailyasoz95/test-mate/internal/domain/apps"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Apps is the GORM-backed store for registered applications.
type Apps struct {
	db *gorm.DB
}

func NewApps(db *gorm.DB) *Apps {
	return &Apps{db: db}
}

func (r *Apps) Create(ctx context.Context, app *apps.App) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *Apps) ByID(ctx context.Context, id string) (apps.App, error) {
	var app apps.App
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error
	return app, err
}

func (r *Apps) ByUser(ctx context.Context, userID uint) ([]apps.App, error) {
	var list []apps.App
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *Apps) SetStatus(ctx context.Context, id string, status apps.Status) error {
	return r.db.WithContext(ctx).Model(&apps.App{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *Apps) SetLink(ctx context.Context, id string, link string) error {
	return r.db.WithContext(ctx).Model(&apps.App{}).
		Where("id = ?", id).
		Update("app_link", link).Error
}

func (r *Apps) SetTesterAccounts(ctx context.Context, id string, accounts string, status apps.Status) error {
	return r.db.WithContext(ctx).Model(&apps.App{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tester_accounts": accounts,
			"status":          string(status),
		}).Error
}

func (r *Apps) SetTestDetails(ctx context.Context, id string, review string, screenshots []string, status apps.Status) error {
	return r.db.WithContext(ctx).Model(&apps.App{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"app_review":      review,
			"app_screenshots": pq.StringArray(screenshots),
			"status":          string(status),
		}).Error
}
