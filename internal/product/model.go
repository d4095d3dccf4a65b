package product

import (
	"encoding/json"
	"errors"
)

// Reserved keys of the product wire format. Client-submitted values for them are dropped.
const (
	IDField    = "_id"
	OwnerField = "userId"
)

// ErrNotFound indicates the product does not exist or is owned by someone else.
var ErrNotFound = errors.New("product not found")

// Product is a free-form document owned by a single user.
type Product struct {
	ID      string
	OwnerID string
	Fields  map[string]any
}

// MarshalJSON flattens Fields and adds the id and owner keys.
func (p Product) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+2)
	for k, v := range p.Fields {
		out[k] = v
	}
	out[IDField] = p.ID
	out[OwnerField] = p.OwnerID
	return json.Marshal(out)
}

// UpdateResult reports how many products matched the owner-scoped filter and how
// many of them actually changed.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// DeleteResult reports how many products were removed.
type DeleteResult struct {
	Deleted int64
}

// searchFields are matched by Search.
var searchFields = []string{"name", "company", "category"}

func sanitize(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == IDField || k == OwnerField {
			continue
		}
		out[k] = v
	}
	return out
}
