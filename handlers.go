package main

// handlers.go this is our HTTP side of the CRUD operations

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"gorm.io/gorm"
)

const maxBodyBytes = 1 << 20

// mount registers the five CRUD routes of res under base. List and create are
// also served with a trailing slash. Other methods on these paths get a JSON
// 405; the literal collection path must win over a sibling's "{id}" route.
func (res *resource[T]) mount(mux *http.ServeMux, base string) {
	h := res.srv.handle
	for _, path := range []string{base, base + "/{$}"} {
		mux.Handle("GET "+path, h(res.handleList))
		mux.Handle("POST "+path, h(res.handleCreate))
		for _, m := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
			mux.Handle(m+" "+path, methodNotAllowed("GET, POST"))
		}
	}

	item := base + "/{id}"
	mux.Handle("GET "+item, h(res.handleGet))
	mux.Handle("PUT "+item, h(res.handleUpdate))
	mux.Handle("PATCH "+item, h(res.handleUpdate))
	mux.Handle("DELETE "+item, h(res.handleDelete))
	mux.Handle("POST "+item, methodNotAllowed("GET, PUT, PATCH, DELETE"))
}

func (res *resource[T]) handleList(w http.ResponseWriter, r *http.Request) error {
	data, err := res.srv.lists.get(res.name, func() (any, error) {
		return res.list(res.srv.db.WithContext(r.Context()))
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, data)
}

func (res *resource[T]) handleGet(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	rec, err := res.get(res.srv.db.WithContext(r.Context()), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

func (res *resource[T]) handleCreate(w http.ResponseWriter, r *http.Request) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	rec, fields, err := res.parseCreate(body)
	if err != nil {
		return err
	}

	err = res.srv.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		rec, err = res.insert(tx, rec, fields)
		return err
	})
	if err != nil {
		return err
	}

	res.srv.changed(res)
	return writeJSON(w, http.StatusCreated, rec)
}

func (res *resource[T]) handleUpdate(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	upd, err := res.parseUpdate(body)
	if err != nil {
		return err
	}

	var rec T
	err = res.srv.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		rec, err = res.patch(tx, id, upd)
		return err
	})
	if err != nil {
		return err
	}

	if len(upd.fields) > 0 {
		res.srv.changed(res)
	}
	return writeJSON(w, http.StatusOK, rec)
}

func (res *resource[T]) handleDelete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	err = res.srv.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		return res.remove(tx, id)
	})
	if err != nil {
		return err
	}

	res.srv.changed(res)
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (res *resource[T]) cacheKeys() []string {
	return append([]string{res.name}, res.related...)
}

func (res *resource[T]) tag() string {
	return res.name
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 0)
	if err != nil {
		return 0, invalidField("Input should be a valid integer", "int_parsing", "path", "id")
	}
	return uint(id), nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, invalidField("Request body too large", "too_long", "body")
		}
		return nil, err
	}
	return body, nil
}
