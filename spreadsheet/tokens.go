package spreadsheet

import (
	"context"
	stderrors "errors"
	"time"

	"trendscope-backend/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotConnected = errors.New("no Google account connected for this admin")
	ErrTokenExpired = errors.New("Google access has expired, please reconnect your Google account")
)

// TokenStore hands out the OAuth token an admin granted for reading sheets.
// Obtaining and refreshing tokens happens elsewhere.
type TokenStore interface {
	Token(ctx context.Context, adminID uuid.UUID) (*models.GoogleToken, error)
}

type GormTokenStore struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{DB: db, Now: time.Now}
}

func (s *GormTokenStore) Token(ctx context.Context, adminID uuid.UUID) (*models.GoogleToken, error) {
	var tok models.GoogleToken
	err := s.DB.WithContext(ctx).Where("user_id = ?", adminID).Take(&tok).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load Google token")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if tok.Expired(now()) {
		return nil, ErrTokenExpired
	}
	return &tok, nil
}

// Save stores or replaces the admin's token.
func (s *GormTokenStore) Save(ctx context.Context, tok *models.GoogleToken) error {
	var existing models.GoogleToken
	err := s.DB.WithContext(ctx).Where("user_id = ?", tok.UserID).Take(&existing).Error
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(s.DB.WithContext(ctx).Create(tok).Error, "failed to save Google token")
	case err != nil:
		return errors.Wrap(err, "failed to load Google token")
	}
	tok.ID = existing.ID
	err = s.DB.WithContext(ctx).Model(&existing).
		Select("access_token", "refresh_token", "token_type", "expires_at").
		Updates(tok).Error
	return errors.Wrap(err, "failed to update Google token")
}
