package product

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.RWMutex
	order   []string
	storage map[string]Product
}

// NewMemoryRepository constructs an in-memory repository for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Product)}
}

func (r *memoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	p.Fields = copyFields(p.Fields)
	r.storage[p.ID] = p
	r.order = append(r.order, p.ID)
	return clone(p), nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string) ([]Product, error) {
	return r.filter(ownerID, func(Product) bool { return true }), nil
}

func (r *memoryRepository) Get(_ context.Context, ownerID, id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.storage[id]
	if !ok || p.OwnerID != ownerID {
		return Product{}, ErrNotFound
	}
	return clone(p), nil
}

func (r *memoryRepository) Update(_ context.Context, ownerID, id string, patch map[string]any) (UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.storage[id]
	if !ok || p.OwnerID != ownerID {
		return UpdateResult{}, nil
	}
	res := UpdateResult{Matched: 1}
	for k, v := range patch {
		if current, exists := p.Fields[k]; exists && reflect.DeepEqual(current, v) {
			continue
		}
		p.Fields[k] = v
		res.Modified = 1
	}
	r.storage[id] = p
	return res, nil
}

func (r *memoryRepository) Delete(_ context.Context, ownerID, id string) (DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.storage[id]
	if !ok || p.OwnerID != ownerID {
		return DeleteResult{}, nil
	}
	delete(r.storage, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return DeleteResult{Deleted: 1}, nil
}

func (r *memoryRepository) Search(_ context.Context, ownerID, key string) ([]Product, error) {
	needle := strings.ToLower(key)
	return r.filter(ownerID, func(p Product) bool {
		for _, f := range searchFields {
			if s, ok := p.Fields[f].(string); ok && strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
		return false
	}), nil
}

func (r *memoryRepository) filter(ownerID string, keep func(Product) bool) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Product{}
	for _, id := range r.order {
		p := r.storage[id]
		if p.OwnerID == ownerID && keep(p) {
			out = append(out, clone(p))
		}
	}
	return out
}

func clone(p Product) Product {
	p.Fields = copyFields(p.Fields)
	return p
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
