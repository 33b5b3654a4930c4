package sdb

import (
	"sort"
	"time"
)

// Value is a single attribute value. The zero Value is null; the wire format
// has no null, so null values travel as Config.NilString.
type Value struct {
	s     string
	valid bool
}

// String returns a non-null Value holding s.
func String(s string) Value { return Value{s: s, valid: true} }

// Null returns the null Value.
func Null() Value { return Value{} }

// Strings returns one non-null Value per argument.
func Strings(values ...string) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = String(v)
	}
	return out
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return !v.valid }

// String returns the value, or "" when null.
func (v Value) String() string { return v.s }

// Ptr returns nil for a null Value and a pointer to the string otherwise.
func (v Value) Ptr() *string {
	if !v.valid {
		return nil
	}
	s := v.s
	return &s
}

// Attributes maps attribute names to their values. A multi-valued attribute
// holds several entries.
type Attributes map[string][]Value

// Add appends values to attribute name.
func (a Attributes) Add(name string, values ...string) Attributes {
	a[name] = append(a[name], Strings(values...)...)
	return a
}

// First returns the first value of attribute name.
func (a Attributes) First(name string) (Value, bool) {
	vs := a[name]
	if len(vs) == 0 {
		return Value{}, false
	}
	return vs[0], true
}

// Names returns the attribute names in sorted order.
func (a Attributes) Names() []string {
	return sortedKeys(a)
}

// Items maps item names to their attributes.
type Items map[string]Attributes

// Replace lists, per item name, the attributes whose existing values are
// replaced instead of appended to.
type Replace map[string][]string

// ResponseMetadata is carried by every successful result.
type ResponseMetadata struct {
	// RequestID identifies the request on the service side.
	RequestID string

	// BoxUsage is the machine-hour cost the service charged for the request.
	BoxUsage float64
}

// Response is the result of operations that return only metadata.
type Response struct {
	ResponseMetadata
}

// ListDomainsResult is the result of ListDomains.
type ListDomainsResult struct {
	ResponseMetadata

	// Domains lists domain names in service order.
	Domains []string

	// NextToken resumes the listing; empty when there are no more domains.
	NextToken string
}

// DomainMetadataResult is the result of DomainMetadata.
type DomainMetadataResult struct {
	ResponseMetadata

	// Timestamp is when the metadata was last computed.
	Timestamp time.Time

	ItemCount                int64
	ItemNamesSizeBytes       int64
	AttributeNameCount       int64
	AttributeNamesSizeBytes  int64
	AttributeValueCount      int64
	AttributeValuesSizeBytes int64
}

// GetAttributesResult is the result of GetAttributes.
type GetAttributesResult struct {
	ResponseMetadata

	// Attributes is empty when the item does not exist.
	Attributes Attributes
}

// Item is a named item with its attributes, as returned by Select.
type Item struct {
	Name       string
	Attributes Attributes
}

// SelectResult is the result of Select.
type SelectResult struct {
	ResponseMetadata

	// Items preserves the order returned by the service.
	Items []Item

	// NextToken resumes the query; empty when the result is complete.
	NextToken string
}

// ListDomainsInput holds the optional ListDomains parameters.
type ListDomainsInput struct {
	// MaxNumberOfDomains is between 1 and 100; the service default is 100.
	MaxNumberOfDomains *int32

	// NextToken continues a previous listing.
	NextToken *string
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
