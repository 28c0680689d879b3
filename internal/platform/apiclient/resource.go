package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// UpdatePayload lets an input type shape its own PUT body, typically to
// repeat the identifier the backend checks against the URL.
type UpdatePayload interface {
	UpdatePayload(id int64) interface{}
}

// Resource maps the five CRUD operations of one backend collection onto
// REST calls: GET/POST on the collection and GET/PUT/DELETE on {id}.
type Resource[T any, P any] struct {
	client *Client
	path   string
}

// NewResource returns the collection rooted at path, e.g. "/api/fees".
func NewResource[T any, P any](c *Client, path string) *Resource[T, P] {
	return &Resource[T, P]{client: c, path: path}
}

// Path returns the collection path.
func (r *Resource[T, P]) Path() string {
	return r.path
}

func (r *Resource[T, P]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

func (r *Resource[T, P]) List(ctx context.Context) ([]T, error) {
	var out []T
	err := r.client.Do(ctx, http.MethodGet, r.path, nil, &out)
	if err != nil && !errors.Is(err, ErrNoContent) {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r *Resource[T, P]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	if err := r.client.Do(ctx, http.MethodGet, r.itemPath(id), nil, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (r *Resource[T, P]) Create(ctx context.Context, in P) (T, error) {
	var out T
	err := r.client.Do(ctx, http.MethodPost, r.path, in, &out)
	if errors.Is(err, ErrNoContent) {
		return out, fmt.Errorf("POST %s: server returned no representation of the created item: %w", r.path, err)
	}
	return out, err
}

// Update replaces item id. A backend that answers with an empty body gets
// the item re-read so callers always see the stored representation.
func (r *Resource[T, P]) Update(ctx context.Context, id int64, in P) (T, error) {
	var body interface{} = in
	if u, ok := any(in).(UpdatePayload); ok {
		body = u.UpdatePayload(id)
	}

	var out T
	err := r.client.Do(ctx, http.MethodPut, r.itemPath(id), body, &out)
	if errors.Is(err, ErrNoContent) {
		return r.Get(ctx, id)
	}
	return out, err
}

func (r *Resource[T, P]) Delete(ctx context.Context, id int64) error {
	return r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
}
