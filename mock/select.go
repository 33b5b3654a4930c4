package mock

import (
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	selectPattern = regexp.MustCompile("(?is)^\\s*select\\s+(.+?)\\s+from\\s+(`[^`]+`|[A-Za-z0-9_.-]+)" +
		"(?:\\s+where\\s+(.+?))?(?:\\s+limit\\s+(\\d+))?\\s*$")
	conditionPattern = regexp.MustCompile("(?is)^\\s*(itemName\\(\\)|`[^`]+`|[A-Za-z0-9_.-]+)\\s*=\\s*'((?:[^']|'')*)'\\s*$")
	andPattern       = regexp.MustCompile(`(?i)\s+and\s+`)
)

const itemNameExpr = "itemName()"

type condition struct {
	name  string
	value string
}

type query struct {
	output     []string
	count      bool
	itemsOnly  bool
	domain     string
	conditions []condition
	limit      int
}

func parseSelect(expr string) (*query, *apiError) {
	m := selectPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, errInvalidQuery(expr)
	}

	q := &query{domain: unquote(m[2])}
	switch output := strings.TrimSpace(m[1]); {
	case output == "*":
	case strings.EqualFold(output, "count(*)"):
		q.count = true
	case strings.EqualFold(output, itemNameExpr):
		q.itemsOnly = true
	default:
		for _, name := range strings.Split(output, ",") {
			name = unquote(strings.TrimSpace(name))
			if name == "" {
				return nil, errInvalidQuery(expr)
			}
			q.output = append(q.output, name)
		}
	}

	if where := m[3]; where != "" {
		for _, part := range andPattern.Split(where, -1) {
			c := conditionPattern.FindStringSubmatch(part)
			if c == nil {
				return nil, errInvalidQuery(expr)
			}
			q.conditions = append(q.conditions, condition{
				name:  unquote(c[1]),
				value: strings.ReplaceAll(c[2], "''", "'"),
			})
		}
	}

	if m[4] != "" {
		n, err := strconv.Atoi(m[4])
		if err != nil || n < 1 || n > 2500 {
			return nil, errInvalidQuery(expr)
		}
		q.limit = n
	}
	return q, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' {
		return strings.ReplaceAll(s[1:len(s)-1], "``", "`")
	}
	return s
}

func (q *query) matches(itemName string, item attributes) bool {
	for _, c := range q.conditions {
		if strings.EqualFold(c.name, itemNameExpr) {
			if itemName != c.value {
				return false
			}
			continue
		}
		if !slices.Contains(item[c.name], c.value) {
			return false
		}
	}
	return true
}

func (s *Server) selectItems(params url.Values) (any, *apiError) {
	expr, apiErr := required(params, "SelectExpression")
	if apiErr != nil {
		return nil, apiErr
	}
	q, apiErr := parseSelect(expr)
	if apiErr != nil {
		return nil, apiErr
	}
	d, ok := s.domains[q.domain]
	if !ok {
		return nil, errNoSuchDomain()
	}
	offset, apiErr := decodeToken(params.Get("NextToken"))
	if apiErr != nil {
		return nil, apiErr
	}

	var matched []string
	for _, name := range d.sortedItemNames() {
		if q.matches(name, d.items[name]) {
			matched = append(matched, name)
		}
	}

	result := &selectResult{}
	if q.count {
		n := len(matched)
		if q.limit > 0 {
			n = min(n, q.limit)
		}
		result.Items = []selectItem{{
			Name:       "Domain",
			Attributes: []xmlAttribute{{Name: "Count", Value: strconv.Itoa(n)}},
		}}
		return result, nil
	}

	pageSize := s.pageSize
	if q.limit > 0 {
		pageSize = min(pageSize, q.limit)
	}
	if offset >= len(matched) {
		return result, nil
	}
	end := min(offset+pageSize, len(matched))
	for _, name := range matched[offset:end] {
		item := selectItem{Name: name}
		if !q.itemsOnly {
			item.Attributes = project(d.items[name], q.output)
		}
		result.Items = append(result.Items, item)
	}
	if end < len(matched) {
		result.NextToken = encodeToken(end)
	}
	return result, nil
}

func errInvalidQuery(expr string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "InvalidQueryExpression",
		Message: "The specified query expression syntax is not valid: " + expr}
}
