package mock

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "themeswitch/internal/log"
	"themeswitch/models"
)

// New returns an in-memory sqlite database with the sessions table in place.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock session database")

	db, err := gorm.Open(sqlite.Open("file:themeswitch-mock?mode=memory&cache=shared"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).AutoMigrate(&models.Session{}); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock session database ready")
	return db, nil
}
