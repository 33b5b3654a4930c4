package sdb

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Action names of the query API.
const (
	ActionCreateDomain       = "CreateDomain"
	ActionDeleteDomain       = "DeleteDomain"
	ActionListDomains        = "ListDomains"
	ActionDomainMetadata     = "DomainMetadata"
	ActionBatchPutAttributes = "BatchPutAttributes"
	ActionDeleteAttributes   = "DeleteAttributes"
	ActionGetAttributes      = "GetAttributes"
	ActionSelect             = "Select"
)

// CreateDomain creates a domain. Creating an existing domain is not an error.
func (c *Client) CreateDomain(ctx context.Context, domainName string) (*Response, error) {
	if err := c.checkDomain(domainName); err != nil {
		return nil, err
	}
	return Do(ctx, c, ActionCreateDomain, domainParams(domainName), ParserFunc[*Response](ParseBasic))
}

// DeleteDomain deletes a domain and every item in it.
func (c *Client) DeleteDomain(ctx context.Context, domainName string) (*Response, error) {
	if err := c.checkDomain(domainName); err != nil {
		return nil, err
	}
	return Do(ctx, c, ActionDeleteDomain, domainParams(domainName), ParserFunc[*Response](ParseBasic))
}

// ListDomains lists domain names. input may be nil.
func (c *Client) ListDomains(ctx context.Context, input *ListDomainsInput) (*ListDomainsResult, error) {
	if input != nil && input.MaxNumberOfDomains != nil {
		if n := *input.MaxNumberOfDomains; n < 1 || n > 100 {
			return nil, &EncodingError{
				Field:  "MaxNumberOfDomains",
				Value:  strconv.Itoa(int(n)),
				Reason: "must be between 1 and 100",
			}
		}
	}
	return Do(ctx, c, ActionListDomains, listDomainsParams(input), ParserFunc[*ListDomainsResult](ParseListDomains))
}

// DomainMetadata returns the item and attribute counters of a domain.
func (c *Client) DomainMetadata(ctx context.Context, domainName string) (*DomainMetadataResult, error) {
	if err := c.checkDomain(domainName); err != nil {
		return nil, err
	}
	return Do(ctx, c, ActionDomainMetadata, domainParams(domainName), ParserFunc[*DomainMetadataResult](ParseDomainMetadata))
}

// BatchPutAttributes adds attributes to several items in one request.
// Attributes listed in replace overwrite the stored values instead of adding
// to them. Null values are sent as the client's NilString.
func (c *Client) BatchPutAttributes(ctx context.Context, domainName string, items Items, replace Replace) (*Response, error) {
	if err := c.checkDomain(domainName); err != nil {
		return nil, err
	}
	if !c.config.SkipValidation {
		if err := checkItems(items); err != nil {
			return nil, err
		}
	}
	params := batchPutParams(domainName, items, replace, c.config.NilString)
	return Do(ctx, c, ActionBatchPutAttributes, params, ParserFunc[*Response](ParseBasic))
}

// PutAttributes adds attributes to a single item. It is sent as a
// BatchPutAttributes request holding one item.
func (c *Client) PutAttributes(ctx context.Context, domainName, itemName string, attrs Attributes, replace []string) (*Response, error) {
	return c.BatchPutAttributes(ctx, domainName, Items{itemName: attrs}, Replace{itemName: replace})
}

// DeleteAttributes removes attributes from an item. A nil or empty attrs
// deletes the whole item; an attribute with no values loses all of its
// values; otherwise only the listed values are removed.
func (c *Client) DeleteAttributes(ctx context.Context, domainName, itemName string, attrs Attributes) (*Response, error) {
	if err := c.checkDomain(domainName); err != nil {
		return nil, err
	}
	if !c.config.SkipValidation {
		if err := checkText("item name", itemName); err != nil {
			return nil, err
		}
		if err := checkAttributes(attrs); err != nil {
			return nil, err
		}
	}
	params := deleteAttributesParams(domainName, itemName, attrs, c.config.NilString)
	return Do(ctx, c, ActionDeleteAttributes, params, ParserFunc[*Response](ParseBasic))
}

// GetAttributes returns the attributes of an item, limited to names when any
// are given. A missing item yields an empty Attributes map.
func (c *Client) GetAttributes(ctx context.Context, domainName, itemName string, names ...string) (*GetAttributesResult, error) {
	if err := c.checkDomain(domainName); err != nil {
		return nil, err
	}
	if !c.config.SkipValidation {
		if err := checkText("item name", itemName); err != nil {
			return nil, err
		}
		for _, name := range names {
			if err := checkText("attribute name", name); err != nil {
				return nil, err
			}
		}
	}
	params := getAttributesParams(domainName, itemName, names)
	return Do(ctx, c, ActionGetAttributes, params, ParserFunc[*GetAttributesResult](ParseGetAttributes))
}

// Select runs a select expression. nextToken continues a previous page and
// may be nil.
func (c *Client) Select(ctx context.Context, expression string, nextToken *string) (*SelectResult, error) {
	if expression == "" {
		return nil, &EncodingError{Field: "SelectExpression", Reason: "is required"}
	}
	return Do(ctx, c, ActionSelect, selectParams(expression, nextToken), ParserFunc[*SelectResult](ParseSelect))
}

// SelectAll runs a select expression and follows NextToken until the result
// is complete. BoxUsage is summed over the pages; RequestID is the last one.
func (c *Client) SelectAll(ctx context.Context, expression string) (*SelectResult, error) {
	out := &SelectResult{}
	var token *string
	for {
		page, err := c.Select(ctx, expression, token)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, page.Items...)
		out.RequestID = page.RequestID
		out.BoxUsage += page.BoxUsage
		if page.NextToken == "" {
			return out, nil
		}
		token = aws.String(page.NextToken)
	}
}

func (c *Client) checkDomain(name string) error {
	if c.config.SkipValidation {
		return nil
	}
	return checkDomain(name)
}

// --- Parameter builders ---

func domainParams(domainName string) map[string]*string {
	return map[string]*string{"DomainName": aws.String(domainName)}
}

func listDomainsParams(input *ListDomainsInput) map[string]*string {
	params := map[string]*string{}
	if input == nil {
		return params
	}
	if input.MaxNumberOfDomains != nil {
		params["MaxNumberOfDomains"] = aws.String(strconv.Itoa(int(*input.MaxNumberOfDomains)))
	}
	params["NextToken"] = input.NextToken
	return params
}

func batchPutParams(domainName string, items Items, replace Replace, nilString string) map[string]*string {
	params := domainParams(domainName)
	merge(params, encodeItems(items, replace, nilString))
	return params
}

func deleteAttributesParams(domainName, itemName string, attrs Attributes, nilString string) map[string]*string {
	params := domainParams(domainName)
	params["ItemName"] = aws.String(itemName)
	merge(params, encodeAttributes(attrs, nil, nilString, true))
	return params
}

func getAttributesParams(domainName, itemName string, names []string) map[string]*string {
	params := domainParams(domainName)
	params["ItemName"] = aws.String(itemName)
	merge(params, encodeAttributeNames(names))
	return params
}

func selectParams(expression string, nextToken *string) map[string]*string {
	return map[string]*string{
		"SelectExpression": aws.String(expression),
		"NextToken":        nextToken,
	}
}

func merge(dst map[string]*string, encoded map[string]string) {
	for k, v := range encoded {
		dst[k] = aws.String(v)
	}
}
