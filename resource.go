package main

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// entity is any model with an integer primary key.
type entity interface {
	Key() uint
}

// resource is the CRUD contract shared by every content type. Callers pass the
// *gorm.DB to run against, so the same operations serve HTTP handlers (inside a
// request transaction) and the seed command (inside one file transaction).
type resource[T entity] struct {
	srv *server

	name    string // route group, cache key and revalidation tag
	label   string // used in "<label> not found"
	order   []string
	scope   func(*gorm.DB) *gorm.DB // extra query options such as preloads
	schemas schemaPair
	related []string // other cache keys a write makes stale

	defaults func(*T)
	// check runs before a write. prev is nil on create.
	check func(tx *gorm.DB, prev, next *T, fields []string) error
	// cascade removes dependents before the record itself is deleted.
	cascade func(tx *gorm.DB, rec *T) error
}

// update is a validated partial update: the raw body and the fields it sets.
type update struct {
	body   []byte
	fields []string
}

func (res *resource[T]) query(tx *gorm.DB) *gorm.DB {
	if res.scope != nil {
		return res.scope(tx)
	}
	return tx
}

func (res *resource[T]) list(tx *gorm.DB) ([]T, error) {
	q := res.query(tx)
	for _, o := range res.order {
		q = q.Order(o)
	}
	var recs []T
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing %s: %w", res.name, err)
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

func (res *resource[T]) get(tx *gorm.DB, id uint) (T, error) {
	var rec T
	err := res.query(tx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return rec, &NotFoundError{Resource: res.label}
	}
	if err != nil {
		return rec, fmt.Errorf("loading %s %d: %w", res.name, id, err)
	}
	return rec, nil
}

// parseCreate validates a create body and returns the record to insert.
func (res *resource[T]) parseCreate(body []byte) (T, []string, error) {
	var rec T
	fields, err := validateBody(res.schemas.create, body)
	if err != nil {
		return rec, nil, err
	}
	if err := decodeBody(body, &rec); err != nil {
		return rec, nil, err
	}
	if res.defaults != nil {
		res.defaults(&rec)
	}
	return rec, fields, nil
}

func (res *resource[T]) insert(tx *gorm.DB, rec T, fields []string) (T, error) {
	if res.check != nil {
		if err := res.check(tx, nil, &rec, fields); err != nil {
			return rec, err
		}
	}
	if err := tx.Create(&rec).Error; err != nil {
		return rec, fmt.Errorf("creating %s: %w", res.name, err)
	}
	return res.get(tx, rec.Key())
}

// parseUpdate validates a partial update body. Every field is optional.
func (res *resource[T]) parseUpdate(body []byte) (update, error) {
	fields, err := validateBody(res.schemas.update, body)
	if err != nil {
		return update{}, err
	}
	var typed T
	if err := decodeBody(body, &typed); err != nil {
		return update{}, err
	}
	return update{body: body, fields: fields}, nil
}

// patch writes only the fields named in upd; everything else keeps its value.
func (res *resource[T]) patch(tx *gorm.DB, id uint, upd update) (T, error) {
	prev, err := res.get(tx, id)
	if err != nil {
		return prev, err
	}
	if len(upd.fields) == 0 {
		return prev, nil
	}

	var next T
	if err := tx.First(&next, id).Error; err != nil {
		return prev, fmt.Errorf("loading %s %d: %w", res.name, id, err)
	}
	if err := decodeBody(upd.body, &next); err != nil {
		return prev, err
	}
	if res.check != nil {
		if err := res.check(tx, &prev, &next, upd.fields); err != nil {
			return prev, err
		}
	}

	if err := tx.Model(&next).Select(upd.fields).Updates(&next).Error; err != nil {
		return prev, fmt.Errorf("updating %s %d: %w", res.name, id, err)
	}
	return res.get(tx, id)
}

func (res *resource[T]) remove(tx *gorm.DB, id uint) error {
	rec, err := res.get(tx, id)
	if err != nil {
		return err
	}
	if res.cascade != nil {
		if err := res.cascade(tx, &rec); err != nil {
			return err
		}
	}
	if err := tx.Delete(new(T), id).Error; err != nil {
		return fmt.Errorf("deleting %s %d: %w", res.name, id, err)
	}
	return nil
}
