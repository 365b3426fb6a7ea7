// Package sessionstore persists scs session data through gorm.
package sessionstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	applog "themeswitch/internal/log"
	"themeswitch/models"
)

// Store implements scs.Store on the sessions table.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ scs.Store = (*Store)(nil)

// New returns a Store backed by db. The sessions table must already exist.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("sessionstore: database handle is nil")
	}
	return &Store{db: db, now: time.Now}, nil
}

func digest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Find returns the data for an unexpired session token.
func (s *Store) Find(token string) ([]byte, bool, error) {
	var row models.Session
	err := s.db.Where("token = ? AND expiry > ?", digest(token), s.now().UTC()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find session: %w", err)
	}
	return row.Data, true, nil
}

// Commit inserts or replaces the session data for token.
func (s *Store) Commit(token string, b []byte, expiry time.Time) error {
	row := models.Session{Token: digest(token), Data: b, Expiry: expiry.UTC()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expiry"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Delete removes the session for token. Missing sessions are not an error.
func (s *Store) Delete(token string) error {
	if err := s.db.Where("token = ?", digest(token)).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every expired session and reports how many were removed.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expiry <= ?", s.now().UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// StartCleanup evicts expired sessions every interval until ctx is done.
// The returned channel is closed once the cleanup goroutine exits.
func (s *Store) StartCleanup(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.DeleteExpired(ctx)
				if err != nil {
					if ctx.Err() == nil {
						applog.Error(ctx, "session cleanup failed", "error", err)
					}
					continue
				}
				if removed > 0 {
					applog.Debug(ctx, "expired sessions removed", "count", removed)
				}
			}
		}
	}()
	return done
}
