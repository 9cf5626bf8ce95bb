package store

import (
	"context"
	"errors"
	"fmt"

	"cinema-ticket/internal/status"
	"cinema-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func (s *Store) GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	r, err := s.findBy(ctx, NotificationPrefs, dbx.HashExp{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return preferencesFromRecord(r)
}

// SavePreferences inserts or replaces the single preferences record of a user.
func (s *Store) SavePreferences(ctx context.Context, p *models.NotificationPreferences) error {
	r, err := s.findBy(ctx, NotificationPrefs, dbx.HashExp{"user_id": p.UserID})
	if errors.Is(err, status.ErrNotFound) {
		r, err = s.newRecord(NotificationPrefs)
	}
	if err != nil {
		return err
	}

	r.Set("user_id", p.UserID)
	r.Set("email", p.Email)
	r.Set("push", p.Push)
	r.Set("sms", p.SMS)
	r.Set("categories", p.Categories)
	if err := s.save(ctx, r); err != nil {
		return err
	}
	p.ID = r.Id
	return nil
}

func preferencesFromRecord(r *core.Record) (*models.NotificationPreferences, error) {
	p := &models.NotificationPreferences{
		ID:     r.Id,
		UserID: r.GetString("user_id"),
		Email:  r.GetBool("email"),
		Push:   r.GetBool("push"),
		SMS:    r.GetBool("sms"),
	}
	if err := unmarshalJSON(r, "categories", &p.Categories); err != nil {
		return nil, fmt.Errorf("preferences %s categories: %w", r.Id, err)
	}
	return p, nil
}
