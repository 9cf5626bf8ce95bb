// Package store persists the domain models as PocketBase records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cinema-ticket/internal/status"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

// Store implements the service store interfaces on top of a PocketBase app.
type Store struct {
	app core.App
}

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) find(ctx context.Context, collection, id string) (*core.Record, error) {
	r := &core.Record{}
	err := s.app.RecordQuery(collection).
		WithContext(ctx).
		AndWhere(dbx.HashExp{"id": id}).
		Limit(1).
		One(r)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *Store) findBy(ctx context.Context, collection string, where dbx.Expression) (*core.Record, error) {
	r := &core.Record{}
	err := s.app.RecordQuery(collection).
		WithContext(ctx).
		AndWhere(where).
		Limit(1).
		One(r)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *Store) all(ctx context.Context, collection string, orderBy string, where ...dbx.Expression) ([]*core.Record, error) {
	q := s.app.RecordQuery(collection).WithContext(ctx)
	for _, w := range where {
		if w != nil {
			q = q.AndWhere(w)
		}
	}
	if orderBy != "" {
		q = q.OrderBy(orderBy)
	}

	var records []*core.Record
	if err := q.All(&records); err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return records, nil
}

func (s *Store) newRecord(collection string) (*core.Record, error) {
	c, err := s.app.FindCachedCollectionByNameOrId(collection)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", collection, err)
	}
	return core.NewRecord(c), nil
}

func (s *Store) save(ctx context.Context, r *core.Record) error {
	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save %s: %w", r.Collection().Name, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, collection, id string) error {
	r, err := s.find(ctx, collection, id)
	if err != nil {
		return err
	}
	return s.app.DeleteWithContext(ctx, r)
}

// unmarshalJSON decodes a json field, leaving dst untouched when the field is empty.
func unmarshalJSON(r *core.Record, key string, dst any) error {
	if raw := r.GetString(key); raw == "" || raw == "null" {
		return nil
	}
	return r.UnmarshalJSONField(key, dst)
}

func expandErr(errs map[string]error) error {
	for path, err := range errs {
		return fmt.Errorf("expand %s: %w", path, err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return status.ErrNotFound
	}
	return err
}

func getDecimal(r *core.Record, key string) decimal.Decimal {
	return decimal.NewFromFloat(r.GetFloat(key)).Round(2)
}

// getOptionalDecimal treats zero as unset.
func getOptionalDecimal(r *core.Record, key string) *decimal.Decimal {
	d := getDecimal(r, key)
	if d.IsZero() {
		return nil
	}
	return &d
}

func setDecimal(r *core.Record, key string, d decimal.Decimal) {
	r.Set(key, d.InexactFloat64())
}

func setOptionalDecimal(r *core.Record, key string, d *decimal.Decimal) {
	if d == nil {
		r.Set(key, 0)
		return
	}
	setDecimal(r, key, *d)
}

func getTime(r *core.Record, key string) time.Time {
	dt := r.GetDateTime(key)
	if dt.IsZero() {
		return time.Time{}
	}
	return dt.Time().UTC()
}

func getTimePtr(r *core.Record, key string) *time.Time {
	t := getTime(r, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func setTime(r *core.Record, key string, t time.Time) {
	if t.IsZero() {
		r.Set(key, "")
		return
	}
	r.Set(key, t.UTC())
}

func setTimePtr(r *core.Record, key string, t *time.Time) {
	if t == nil {
		r.Set(key, "")
		return
	}
	setTime(r, key, *t)
}

// dbTime formats t the way date fields are stored so that range filters compare correctly.
func dbTime(t time.Time) string {
	return t.UTC().Format(types.DefaultDateLayout)
}
