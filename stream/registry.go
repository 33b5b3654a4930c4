package stream

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jacentio/simpledb/internal/shard"
)

// Mapping ties a DynamoDB table to the SimpleDB domain it is mirrored into.
type Mapping struct {
	// TableName is the DynamoDB table emitting the stream (e.g., "users").
	TableName string `yaml:"table"`

	// Domain is the SimpleDB domain receiving the changes.
	Domain string `yaml:"domain"`

	// KeyAttribute is the table's partition key; its value becomes the item name.
	// Default: "id"
	KeyAttribute string `yaml:"key"`

	// TTLAttribute is the table's TTL attribute (epoch seconds). Items whose
	// TTL has passed are deleted from the domain. Empty disables the check.
	TTLAttribute string `yaml:"ttl"`

	// Shards splits Domain into Domain-00, Domain-01, ... by item name hash.
	// Default: 1 (no sharding)
	Shards int `yaml:"shards"`
}

// Domains lists the physical domains items of this mapping are written to.
func (m Mapping) Domains() []string {
	return shard.Domains(m.Domain, m.Shards)
}

// Registry holds the table to domain mappings of a mirror.
type Registry struct {
	mappings []Mapping
	byTable  map[string]Mapping
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		mappings: []Mapping{},
		byTable:  make(map[string]Mapping),
	}
}

// Register adds a mapping. A later mapping for the same table replaces the earlier one.
func (r *Registry) Register(m Mapping) {
	if m.KeyAttribute == "" {
		m.KeyAttribute = "id"
	}
	if m.Domain == "" {
		m.Domain = m.TableName
	}
	if m.Shards < 1 {
		m.Shards = 1
	}
	if m.Shards > shard.MaxShards {
		m.Shards = shard.MaxShards
	}
	if _, exists := r.byTable[m.TableName]; exists {
		for i := range r.mappings {
			if r.mappings[i].TableName == m.TableName {
				r.mappings[i] = m
			}
		}
	} else {
		r.mappings = append(r.mappings, m)
	}
	r.byTable[m.TableName] = m
}

// Lookup returns the mapping for a table.
func (r *Registry) Lookup(table string) (Mapping, bool) {
	m, ok := r.byTable[table]
	return m, ok
}

// Mappings returns all registered mappings in registration order.
func (r *Registry) Mappings() []Mapping {
	return r.mappings
}

// LoadRegistry builds a Registry from a YAML list of mappings:
//
//	- table: users
//	  domain: users
//	  key: id
//	  ttl: expires_at
//	  shards: 4
func LoadRegistry(data []byte) (*Registry, error) {
	var mappings []Mapping
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("stream: parse mappings: %w", err)
	}
	r := NewRegistry()
	for i, m := range mappings {
		if m.TableName == "" {
			return nil, fmt.Errorf("stream: mapping %d: table is required", i)
		}
		r.Register(m)
	}
	return r, nil
}
