package document

import (
	"encoding/json"
	"fmt"

	"github.com/Rrens/sitepublish/internal/domain"
)

func decode[T any](doc *domain.Document) (*T, error) {
	if doc == nil {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(doc.Data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", doc.ID, err)
	}
	return &v, nil
}

func decodeAll[T any](docs []domain.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for i := range docs {
		v, err := decode[T](&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}
