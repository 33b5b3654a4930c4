package sdb

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parser decodes a raw response body into a typed result. nilString is the
// client's null sentinel; attribute values equal to it decode as null.
// A body that does not match the expected shape must return an error.
type Parser[T any] interface {
	Parse(body []byte, nilString string) (T, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc[T any] func(body []byte, nilString string) (T, error)

// Parse calls f.
func (f ParserFunc[T]) Parse(body []byte, nilString string) (T, error) {
	return f(body, nilString)
}

var errEmptyBody = errors.New("empty response body")

type xmlMetadata struct {
	RequestID string `xml:"ResponseMetadata>RequestId"`
	BoxUsage  string `xml:"ResponseMetadata>BoxUsage"`
}

func (m xmlMetadata) decode() (ResponseMetadata, error) {
	if strings.TrimSpace(m.RequestID) == "" {
		return ResponseMetadata{}, errors.New("missing ResponseMetadata/RequestId")
	}
	md := ResponseMetadata{RequestID: strings.TrimSpace(m.RequestID)}
	if usage := strings.TrimSpace(m.BoxUsage); usage != "" {
		f, err := strconv.ParseFloat(usage, 64)
		if err != nil {
			return ResponseMetadata{}, fmt.Errorf("BoxUsage: %w", err)
		}
		md.BoxUsage = f
	}
	return md, nil
}

// xmlText is a name or value that the service may send base64 encoded.
type xmlText struct {
	Encoding string `xml:"encoding,attr"`
	Text     string `xml:",chardata"`
}

func (t xmlText) decode() (string, error) {
	if !strings.EqualFold(t.Encoding, "base64") {
		return t.Text, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(t.Text))
	if err != nil {
		return "", fmt.Errorf("base64 text: %w", err)
	}
	return string(raw), nil
}

type xmlAttribute struct {
	Name  xmlText `xml:"Name"`
	Value xmlText `xml:"Value"`
}

func decodeAttributes(in []xmlAttribute, nilString string) (Attributes, error) {
	attrs := make(Attributes, len(in))
	for _, a := range in {
		name, err := a.Name.decode()
		if err != nil {
			return nil, err
		}
		value, err := a.Value.decode()
		if err != nil {
			return nil, err
		}
		if value == nilString {
			attrs[name] = append(attrs[name], Null())
		} else {
			attrs[name] = append(attrs[name], String(value))
		}
	}
	return attrs, nil
}

// unmarshal decodes body into v. An empty body is an error.
func unmarshal(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}
	return xml.Unmarshal(body, v)
}

func checkRoot(name xml.Name, want string) error {
	if name.Local != want {
		return fmt.Errorf("unexpected root element <%s>, want <%s>", name.Local, want)
	}
	return nil
}

// ParseBasic decodes responses that carry only ResponseMetadata
// (CreateDomain, DeleteDomain, BatchPutAttributes, DeleteAttributes...).
func ParseBasic(body []byte, _ string) (*Response, error) {
	var doc struct {
		XMLName xml.Name
		xmlMetadata
	}
	if err := unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if doc.XMLName.Local == "Response" || !strings.HasSuffix(doc.XMLName.Local, "Response") {
		return nil, fmt.Errorf("unexpected root element <%s>", doc.XMLName.Local)
	}
	md, err := doc.decode()
	if err != nil {
		return nil, err
	}
	return &Response{ResponseMetadata: md}, nil
}

// ParseListDomains decodes a ListDomainsResponse.
func ParseListDomains(body []byte, _ string) (*ListDomainsResult, error) {
	var doc struct {
		XMLName     xml.Name
		DomainNames []string `xml:"ListDomainsResult>DomainName"`
		NextToken   string   `xml:"ListDomainsResult>NextToken"`
		xmlMetadata
	}
	if err := unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if err := checkRoot(doc.XMLName, "ListDomainsResponse"); err != nil {
		return nil, err
	}
	md, err := doc.decode()
	if err != nil {
		return nil, err
	}
	domains := make([]string, 0, len(doc.DomainNames))
	for _, d := range doc.DomainNames {
		domains = append(domains, strings.TrimSpace(d))
	}
	return &ListDomainsResult{
		ResponseMetadata: md,
		Domains:          domains,
		NextToken:        strings.TrimSpace(doc.NextToken),
	}, nil
}

// ParseDomainMetadata decodes a DomainMetadataResponse.
func ParseDomainMetadata(body []byte, _ string) (*DomainMetadataResult, error) {
	var doc struct {
		XMLName xml.Name
		Result  *struct {
			ItemCount                string `xml:"ItemCount"`
			ItemNamesSizeBytes       string `xml:"ItemNamesSizeBytes"`
			AttributeNameCount       string `xml:"AttributeNameCount"`
			AttributeNamesSizeBytes  string `xml:"AttributeNamesSizeBytes"`
			AttributeValueCount      string `xml:"AttributeValueCount"`
			AttributeValuesSizeBytes string `xml:"AttributeValuesSizeBytes"`
			Timestamp                string `xml:"Timestamp"`
		} `xml:"DomainMetadataResult"`
		xmlMetadata
	}
	if err := unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if err := checkRoot(doc.XMLName, "DomainMetadataResponse"); err != nil {
		return nil, err
	}
	if doc.Result == nil {
		return nil, errors.New("missing DomainMetadataResult")
	}
	md, err := doc.decode()
	if err != nil {
		return nil, err
	}

	out := &DomainMetadataResult{ResponseMetadata: md}
	fields := []struct {
		name string
		raw  string
		dst  *int64
	}{
		{"ItemCount", doc.Result.ItemCount, &out.ItemCount},
		{"ItemNamesSizeBytes", doc.Result.ItemNamesSizeBytes, &out.ItemNamesSizeBytes},
		{"AttributeNameCount", doc.Result.AttributeNameCount, &out.AttributeNameCount},
		{"AttributeNamesSizeBytes", doc.Result.AttributeNamesSizeBytes, &out.AttributeNamesSizeBytes},
		{"AttributeValueCount", doc.Result.AttributeValueCount, &out.AttributeValueCount},
		{"AttributeValuesSizeBytes", doc.Result.AttributeValuesSizeBytes, &out.AttributeValuesSizeBytes},
	}
	for _, f := range fields {
		n, err := strconv.ParseInt(strings.TrimSpace(f.raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = n
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(doc.Result.Timestamp), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("Timestamp: %w", err)
	}
	out.Timestamp = time.Unix(ts, 0).UTC()
	return out, nil
}

// ParseGetAttributes decodes a GetAttributesResponse.
func ParseGetAttributes(body []byte, nilString string) (*GetAttributesResult, error) {
	var doc struct {
		XMLName    xml.Name
		Attributes []xmlAttribute `xml:"GetAttributesResult>Attribute"`
		xmlMetadata
	}
	if err := unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if err := checkRoot(doc.XMLName, "GetAttributesResponse"); err != nil {
		return nil, err
	}
	md, err := doc.decode()
	if err != nil {
		return nil, err
	}
	attrs, err := decodeAttributes(doc.Attributes, nilString)
	if err != nil {
		return nil, err
	}
	return &GetAttributesResult{ResponseMetadata: md, Attributes: attrs}, nil
}

// ParseSelect decodes a SelectResponse.
func ParseSelect(body []byte, nilString string) (*SelectResult, error) {
	var doc struct {
		XMLName xml.Name
		Items   []struct {
			Name       xmlText        `xml:"Name"`
			Attributes []xmlAttribute `xml:"Attribute"`
		} `xml:"SelectResult>Item"`
		NextToken string `xml:"SelectResult>NextToken"`
		xmlMetadata
	}
	if err := unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if err := checkRoot(doc.XMLName, "SelectResponse"); err != nil {
		return nil, err
	}
	md, err := doc.decode()
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(doc.Items))
	for _, it := range doc.Items {
		name, err := it.Name.decode()
		if err != nil {
			return nil, err
		}
		attrs, err := decodeAttributes(it.Attributes, nilString)
		if err != nil {
			return nil, err
		}
		items = append(items, Item{Name: name, Attributes: attrs})
	}
	return &SelectResult{
		ResponseMetadata: md,
		Items:            items,
		NextToken:        strings.TrimSpace(doc.NextToken),
	}, nil
}
