package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"tripdata/internal/schema"
)

// RegistryStore persists the schema registry as one pretty-printed JSON
// object in the object store.
//
// The two sides of the boundary are asymmetric: a failed load degrades to an
// empty registry (a fresh deployment has no document yet, and rebuilding
// mappings costs only duplicate work), while a failed save is always
// surfaced, since losing accumulated mappings would break the registry's
// append-only contract for every future run.
type RegistryStore struct {
	Objects ObjectStore
	Key     string
}

// Load reads the registry document. Any failure (missing object, transport
// error, corrupt JSON) yields an empty registry and the error that caused
// the degrade, so the caller can log it; err is nil on a clean load.
func (rs RegistryStore) Load(ctx context.Context) (*schema.Registry, error) {
	rc, err := rs.Objects.Get(ctx, rs.Key)
	if err != nil {
		return schema.NewRegistry(), fmt.Errorf("registry load %s: %w", rs.Key, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return schema.NewRegistry(), fmt.Errorf("registry read %s: %w", rs.Key, err)
	}
	reg := schema.NewRegistry()
	if err := json.Unmarshal(b, reg); err != nil {
		return schema.NewRegistry(), fmt.Errorf("registry decode %s: %w", rs.Key, err)
	}
	return reg, nil
}

// Save writes the registry document, pretty-printed for human diffing.
func (rs RegistryStore) Save(ctx context.Context, reg *schema.Registry) error {
	b, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("registry encode: %w", err)
	}
	if err := rs.Objects.Put(ctx, rs.Key, bytes.NewReader(b), "application/json"); err != nil {
		return fmt.Errorf("registry save %s: %w", rs.Key, err)
	}
	return nil
}
