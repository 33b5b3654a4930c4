package mock

import (
	"encoding/base64"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"
)

type domain struct {
	items map[string]attributes
}

func newDomain() *domain {
	return &domain{items: make(map[string]attributes)}
}

// attributes holds the values of one item. A name/value pair is stored once.
type attributes map[string][]string

func (a attributes) add(name, value string) {
	if slices.Contains(a[name], value) {
		return
	}
	a[name] = append(a[name], value)
}

func (a attributes) remove(name, value string) {
	values := slices.DeleteFunc(a[name], func(v string) bool { return v == value })
	if len(values) == 0 {
		delete(a, name)
		return
	}
	a[name] = values
}

func (a attributes) clone() map[string][]string {
	out := make(map[string][]string, len(a))
	for name, values := range a {
		out[name] = slices.Clone(values)
	}
	return out
}

func (d *domain) sortedItemNames() []string {
	names := make([]string, 0, len(d.items))
	for name := range d.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *domain) prune(itemName string) {
	if item, ok := d.items[itemName]; ok && len(item) == 0 {
		delete(d.items, itemName)
	}
}

// Put stores values on an item, creating the domain and item as needed.
func (s *Server) Put(domainName, itemName string, attrs map[string][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.domains[domainName]
	if !ok {
		d = newDomain()
		s.domains[domainName] = d
	}
	item, ok := d.items[itemName]
	if !ok {
		item = make(attributes)
		d.items[itemName] = item
	}
	for name, values := range attrs {
		for _, v := range values {
			item.add(name, v)
		}
	}
	d.prune(itemName)
}

// Attributes returns a copy of the stored attributes of an item.
func (s *Server) Attributes(domainName, itemName string) (map[string][]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.domains[domainName]
	if !ok {
		return nil, false
	}
	item, ok := d.items[itemName]
	if !ok {
		return nil, false
	}
	return item.clone(), true
}

// Domains returns the names of all domains in sorted order.
func (s *Server) Domains() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedDomainNames()
}

func (s *Server) sortedDomainNames() []string {
	names := make([]string, 0, len(s.domains))
	for name := range s.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// --- Indexed parameters ---

type group struct {
	index  int
	fields map[string]string
}

// indexed collects parameters named <prefix><n>[.<field>] into groups ordered by n.
func indexed(params map[string]string, prefix string) ([]group, *apiError) {
	byIndex := make(map[int]map[string]string)
	for key, value := range params {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		num, field, _ := strings.Cut(rest, ".")
		n, err := strconv.Atoi(num)
		if err != nil || n < 0 {
			return nil, errInvalidParameter("invalid parameter name " + key)
		}
		if byIndex[n] == nil {
			byIndex[n] = make(map[string]string)
		}
		byIndex[n][field] = value
	}

	groups := make([]group, 0, len(byIndex))
	for n, fields := range byIndex {
		groups = append(groups, group{index: n, fields: fields})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].index < groups[j].index })
	return groups, nil
}

type attributeParam struct {
	name     string
	value    string
	hasValue bool
	replace  bool
}

func parseAttributeParams(fields map[string]string, requireValue bool) ([]attributeParam, *apiError) {
	groups, apiErr := indexed(fields, "Attribute.")
	if apiErr != nil {
		return nil, apiErr
	}
	out := make([]attributeParam, 0, len(groups))
	for _, g := range groups {
		prefix := "Attribute." + strconv.Itoa(g.index) + "."
		name, ok := g.fields["Name"]
		if !ok {
			return nil, errMissing(prefix + "Name")
		}
		value, hasValue := g.fields["Value"]
		if requireValue && !hasValue {
			return nil, errMissing(prefix + "Value")
		}
		out = append(out, attributeParam{
			name:     name,
			value:    value,
			hasValue: hasValue,
			replace:  g.fields["Replace"] == "true",
		})
	}
	return out, nil
}

// --- Paging tokens ---

func encodeToken(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte("offset:" + strconv.Itoa(offset)))
}

func decodeToken(token string) (int, *apiError) {
	if token == "" {
		return 0, nil
	}
	invalid := &apiError{Status: http.StatusBadRequest, Code: "InvalidNextToken",
		Message: "The specified next token is not valid."}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, invalid
	}
	num, ok := strings.CutPrefix(string(raw), "offset:")
	if !ok {
		return 0, invalid
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return 0, invalid
	}
	return n, nil
}
