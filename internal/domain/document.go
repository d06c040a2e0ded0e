package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned by writes that require an existing document
var ErrDocumentNotFound = errors.New("document not found")

// Document collections
const (
	CollectionWorkspaces   = "workspaces"
	CollectionMembers      = "workspaceMembers"
	CollectionSites        = "sites"
	CollectionPages        = "pages"
	CollectionPageVersions = "pageVersions"
	CollectionAssets       = "assets"
	CollectionAlerts       = "alerts"
	CollectionAuditLogs    = "auditLogs"
)

// Document is a stored JSON payload addressed by collection and id
type Document struct {
	ID   string
	Data []byte
}

// Filter is an equality match on a top-level string field of a document
type Filter struct {
	Field string
	Value string
}

// Eq builds an equality filter
func Eq(field, value string) Filter {
	return Filter{Field: field, Value: value}
}

// DocumentStore is the storage engine consumed by every repository. Payloads are JSON objects.
//
// Get returns (nil, nil) when the document does not exist. Set with merge replaces only the
// top-level fields present in payload and creates the document when it is missing. Update merges
// like Set but never creates; it reports false when the document does not exist. List returns
// documents in insertion order.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Set(ctx context.Context, collection, id string, payload []byte, merge bool) error
	Update(ctx context.Context, collection, id string, patch []byte) (bool, error)
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Ping(ctx context.Context) error
	Close() error
}

// Matches reports whether a decoded top-level field map satisfies every filter
func Matches(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field].(string)
		if !ok || v != f.Value {
			return false
		}
	}
	return true
}

// ValidatePayload checks that payload is a JSON object
func ValidatePayload(payload []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return fmt.Errorf("payload must be a JSON object: %w", err)
	}
	return nil
}

// MergePayload replaces the top-level fields of current with those of patch
func MergePayload(current, patch []byte) ([]byte, error) {
	var base map[string]json.RawMessage
	if err := json.Unmarshal(current, &base); err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return nil, fmt.Errorf("payload must be a JSON object: %w", err)
	}
	if base == nil {
		base = make(map[string]json.RawMessage, len(fields))
	}
	for k, v := range fields {
		base[k] = v
	}
	return json.Marshal(base)
}
