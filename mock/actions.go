package mock

import (
	"encoding/xml"
	"net/url"
	"slices"
	"strconv"
)

type xmlAttribute struct {
	Name  string `xml:"Name"`
	Value string `xml:"Value"`
}

type listDomainsResult struct {
	XMLName   xml.Name `xml:"ListDomainsResult"`
	Domains   []string `xml:"DomainName"`
	NextToken string   `xml:"NextToken,omitempty"`
}

type domainMetadataResult struct {
	XMLName                  xml.Name `xml:"DomainMetadataResult"`
	ItemCount                int64    `xml:"ItemCount"`
	ItemNamesSizeBytes       int64    `xml:"ItemNamesSizeBytes"`
	AttributeNameCount       int64    `xml:"AttributeNameCount"`
	AttributeNamesSizeBytes  int64    `xml:"AttributeNamesSizeBytes"`
	AttributeValueCount      int64    `xml:"AttributeValueCount"`
	AttributeValuesSizeBytes int64    `xml:"AttributeValuesSizeBytes"`
	Timestamp                int64    `xml:"Timestamp"`
}

type getAttributesResult struct {
	XMLName    xml.Name       `xml:"GetAttributesResult"`
	Attributes []xmlAttribute `xml:"Attribute"`
}

type selectItem struct {
	Name       string         `xml:"Name"`
	Attributes []xmlAttribute `xml:"Attribute"`
}

type selectResult struct {
	XMLName   xml.Name     `xml:"SelectResult"`
	Items     []selectItem `xml:"Item"`
	NextToken string       `xml:"NextToken,omitempty"`
}

// flat keeps the first value of every parameter.
func flat(params url.Values) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func required(params url.Values, name string) (string, *apiError) {
	v := params.Get(name)
	if v == "" {
		return "", errMissing(name)
	}
	return v, nil
}

func (s *Server) lookup(params url.Values) (*domain, *apiError) {
	name, apiErr := required(params, "DomainName")
	if apiErr != nil {
		return nil, apiErr
	}
	d, ok := s.domains[name]
	if !ok {
		return nil, errNoSuchDomain()
	}
	return d, nil
}

func (s *Server) createDomain(params url.Values) (any, *apiError) {
	name, apiErr := required(params, "DomainName")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, ok := s.domains[name]; !ok {
		s.domains[name] = newDomain()
	}
	return nil, nil
}

func (s *Server) deleteDomain(params url.Values) (any, *apiError) {
	name, apiErr := required(params, "DomainName")
	if apiErr != nil {
		return nil, apiErr
	}
	delete(s.domains, name)
	return nil, nil
}

func (s *Server) listDomains(params url.Values) (any, *apiError) {
	limit := s.pageSize
	if v := params.Get("MaxNumberOfDomains"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return nil, errInvalidParameter("Value (" + v + ") for parameter MaxNumberOfDomains is invalid.")
		}
		limit = n
	}
	offset, apiErr := decodeToken(params.Get("NextToken"))
	if apiErr != nil {
		return nil, apiErr
	}

	names := s.sortedDomainNames()
	result := &listDomainsResult{Domains: []string{}}
	if offset < len(names) {
		end := min(offset+limit, len(names))
		result.Domains = names[offset:end]
		if end < len(names) {
			result.NextToken = encodeToken(end)
		}
	}
	return result, nil
}

func (s *Server) domainMetadata(params url.Values) (any, *apiError) {
	d, apiErr := s.lookup(params)
	if apiErr != nil {
		return nil, apiErr
	}

	result := &domainMetadataResult{Timestamp: s.now().Unix()}
	names := make(map[string]bool)
	for itemName, item := range d.items {
		result.ItemCount++
		result.ItemNamesSizeBytes += int64(len(itemName))
		for name, values := range item {
			if !names[name] {
				names[name] = true
				result.AttributeNameCount++
				result.AttributeNamesSizeBytes += int64(len(name))
			}
			for _, v := range values {
				result.AttributeValueCount++
				result.AttributeValuesSizeBytes += int64(len(v))
			}
		}
	}
	return result, nil
}

func (s *Server) putAttributes(params url.Values) (any, *apiError) {
	d, apiErr := s.lookup(params)
	if apiErr != nil {
		return nil, apiErr
	}
	itemName, apiErr := required(params, "ItemName")
	if apiErr != nil {
		return nil, apiErr
	}
	attrs, apiErr := parseAttributeParams(flat(params), true)
	if apiErr != nil {
		return nil, apiErr
	}
	d.put(itemName, attrs)
	return nil, nil
}

func (s *Server) batchPutAttributes(params url.Values) (any, *apiError) {
	d, apiErr := s.lookup(params)
	if apiErr != nil {
		return nil, apiErr
	}
	groups, apiErr := indexed(flat(params), "Item.")
	if apiErr != nil {
		return nil, apiErr
	}
	if len(groups) == 0 {
		return nil, errMissing("Item.0.ItemName")
	}

	// Validate the whole batch before applying any of it.
	type itemPut struct {
		name  string
		attrs []attributeParam
	}
	puts := make([]itemPut, 0, len(groups))
	for _, g := range groups {
		itemName, ok := g.fields["ItemName"]
		if !ok || itemName == "" {
			return nil, errMissing("Item." + strconv.Itoa(g.index) + ".ItemName")
		}
		attrs, apiErr := parseAttributeParams(g.fields, true)
		if apiErr != nil {
			return nil, apiErr
		}
		puts = append(puts, itemPut{name: itemName, attrs: attrs})
	}
	for _, p := range puts {
		d.put(p.name, p.attrs)
	}
	return nil, nil
}

func (d *domain) put(itemName string, attrs []attributeParam) {
	item, ok := d.items[itemName]
	if !ok {
		item = make(attributes)
		d.items[itemName] = item
	}
	cleared := make(map[string]bool)
	for _, a := range attrs {
		if a.replace && !cleared[a.name] {
			delete(item, a.name)
			cleared[a.name] = true
		}
	}
	for _, a := range attrs {
		item.add(a.name, a.value)
	}
	d.prune(itemName)
}

func (s *Server) deleteAttributes(params url.Values) (any, *apiError) {
	d, apiErr := s.lookup(params)
	if apiErr != nil {
		return nil, apiErr
	}
	itemName, apiErr := required(params, "ItemName")
	if apiErr != nil {
		return nil, apiErr
	}
	attrs, apiErr := parseAttributeParams(flat(params), false)
	if apiErr != nil {
		return nil, apiErr
	}

	item, ok := d.items[itemName]
	if !ok {
		return nil, nil
	}
	if len(attrs) == 0 {
		delete(d.items, itemName)
		return nil, nil
	}
	for _, a := range attrs {
		if a.hasValue {
			item.remove(a.name, a.value)
		} else {
			delete(item, a.name)
		}
	}
	d.prune(itemName)
	return nil, nil
}

func (s *Server) getAttributes(params url.Values) (any, *apiError) {
	d, apiErr := s.lookup(params)
	if apiErr != nil {
		return nil, apiErr
	}
	itemName, apiErr := required(params, "ItemName")
	if apiErr != nil {
		return nil, apiErr
	}
	groups, apiErr := indexed(flat(params), "AttributeName.")
	if apiErr != nil {
		return nil, apiErr
	}
	var wanted []string
	for _, g := range groups {
		wanted = append(wanted, g.fields[""])
	}

	result := &getAttributesResult{}
	if item, ok := d.items[itemName]; ok {
		result.Attributes = project(item, wanted)
	}
	return result, nil
}

// project flattens item into name/value pairs sorted by name. A non-empty
// names list keeps only those attributes.
func project(item attributes, names []string) []xmlAttribute {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	var out []xmlAttribute
	for _, name := range sortedNames(item) {
		if len(names) > 0 && !keep[name] {
			continue
		}
		for _, v := range item[name] {
			out = append(out, xmlAttribute{Name: name, Value: v})
		}
	}
	return out
}

func sortedNames(item attributes) []string {
	names := make([]string, 0, len(item))
	for name := range item {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
