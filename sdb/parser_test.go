package sdb

import (
	"errors"
	"testing"
	"time"
)

const listDomainsBody = `<?xml version="1.0"?>
<ListDomainsResponse xmlns="http://sdb.amazonaws.com/doc/2007-11-07/">
  <ListDomainsResult>
    <DomainName>Domain1-200706011651</DomainName>
    <DomainName>Domain2-200706011652</DomainName>
    <NextToken>TWV0ZXJzQWN0aXZl</NextToken>
  </ListDomainsResult>
  <ResponseMetadata>
    <RequestId>eb13162f-1b95-4511-8b12-489b86acfd28</RequestId>
    <BoxUsage>0.0000219907</BoxUsage>
  </ResponseMetadata>
</ListDomainsResponse>`

const domainMetadataBody = `<DomainMetadataResponse xmlns="http://sdb.amazonaws.com/doc/2007-11-07/">
  <DomainMetadataResult>
    <ItemCount>195078</ItemCount>
    <ItemNamesSizeBytes>2586634</ItemNamesSizeBytes>
    <AttributeNameCount>12</AttributeNameCount>
    <AttributeNamesSizeBytes>120</AttributeNamesSizeBytes>
    <AttributeValueCount>3690416</AttributeValueCount>
    <AttributeValuesSizeBytes>50149756</AttributeValuesSizeBytes>
    <Timestamp>1225486466</Timestamp>
  </DomainMetadataResult>
  <ResponseMetadata>
    <RequestId>b1e8f1f7-42e9-494c-ad09-2674e557526d</RequestId>
    <BoxUsage>0.0000219907</BoxUsage>
  </ResponseMetadata>
</DomainMetadataResponse>`

const getAttributesBody = `<GetAttributesResponse>
  <GetAttributesResult>
    <Attribute><Name>Color</Name><Value>Blue</Value></Attribute>
    <Attribute><Name>Color</Name><Value>Red</Value></Attribute>
    <Attribute><Name>Size</Name><Value>nil</Value></Attribute>
    <Attribute><Name encoding="base64">UHJpY2U=</Name><Value encoding="base64">MTQ=</Value></Attribute>
  </GetAttributesResult>
  <ResponseMetadata><RequestId>r1</RequestId><BoxUsage>0.0000093282</BoxUsage></ResponseMetadata>
</GetAttributesResponse>`

const selectBody = `<SelectResponse>
  <SelectResult>
    <Item><Name>item2</Name><Attribute><Name>a</Name><Value>1</Value></Attribute></Item>
    <Item><Name>item1</Name></Item>
    <NextToken>next</NextToken>
  </SelectResult>
  <ResponseMetadata><RequestId>r2</RequestId><BoxUsage>0.0000228616</BoxUsage></ResponseMetadata>
</SelectResponse>`

// --- ParseBasic Tests ---

func TestParseBasic(t *testing.T) {
	body := []byte(`<CreateDomainResponse><ResponseMetadata><RequestId>abc</RequestId><BoxUsage>0.0055590278</BoxUsage></ResponseMetadata></CreateDomainResponse>`)

	resp, err := ParseBasic(body, DefaultNilString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.RequestID != "abc" {
		t.Errorf("expected RequestID abc, got %q", resp.RequestID)
	}
	if resp.BoxUsage != 0.0055590278 {
		t.Errorf("expected BoxUsage 0.0055590278, got %v", resp.BoxUsage)
	}
}

func TestParseBasic_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"whitespace", "  \n"},
		{"not xml", "hello"},
		{"error document", `<Response><Errors><Error><Code>X</Code></Error></Errors><RequestID>r</RequestID></Response>`},
		{"wrong root", `<Foo><ResponseMetadata><RequestId>r</RequestId></ResponseMetadata></Foo>`},
		{"missing request id", `<CreateDomainResponse><ResponseMetadata></ResponseMetadata></CreateDomainResponse>`},
		{"bad box usage", `<CreateDomainResponse><ResponseMetadata><RequestId>r</RequestId><BoxUsage>lots</BoxUsage></ResponseMetadata></CreateDomainResponse>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseBasic([]byte(tt.body), DefaultNilString); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// --- ParseListDomains Tests ---

func TestParseListDomains(t *testing.T) {
	res, err := ParseListDomains([]byte(listDomainsBody), DefaultNilString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Domains) != 2 || res.Domains[0] != "Domain1-200706011651" || res.Domains[1] != "Domain2-200706011652" {
		t.Errorf("unexpected domains %v", res.Domains)
	}
	if res.NextToken != "TWV0ZXJzQWN0aXZl" {
		t.Errorf("expected NextToken, got %q", res.NextToken)
	}
	if res.RequestID != "eb13162f-1b95-4511-8b12-489b86acfd28" {
		t.Errorf("unexpected RequestID %q", res.RequestID)
	}
}

// --- ParseDomainMetadata Tests ---

func TestParseDomainMetadata(t *testing.T) {
	res, err := ParseDomainMetadata([]byte(domainMetadataBody), DefaultNilString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ItemCount != 195078 {
		t.Errorf("expected ItemCount 195078, got %d", res.ItemCount)
	}
	if res.AttributeValuesSizeBytes != 50149756 {
		t.Errorf("expected AttributeValuesSizeBytes 50149756, got %d", res.AttributeValuesSizeBytes)
	}
	if !res.Timestamp.Equal(time.Unix(1225486466, 0)) {
		t.Errorf("unexpected Timestamp %v", res.Timestamp)
	}
	if res.Timestamp.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %v", res.Timestamp.Location())
	}
}

func TestParseDomainMetadata_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"malformed", "<DomainMetadataResponse><DomainMetadataResult>"},
		{"missing result", `<DomainMetadataResponse><ResponseMetadata><RequestId>r</RequestId></ResponseMetadata></DomainMetadataResponse>`},
		{"non numeric", `<DomainMetadataResponse><DomainMetadataResult><ItemCount>many</ItemCount></DomainMetadataResult><ResponseMetadata><RequestId>r</RequestId></ResponseMetadata></DomainMetadataResponse>`},
		{"wrong root", `<ListDomainsResponse><ResponseMetadata><RequestId>r</RequestId></ResponseMetadata></ListDomainsResponse>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDomainMetadata([]byte(tt.body), DefaultNilString); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// --- ParseGetAttributes Tests ---

func TestParseGetAttributes(t *testing.T) {
	res, err := ParseGetAttributes([]byte(getAttributesBody), DefaultNilString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	colors := res.Attributes["Color"]
	if len(colors) != 2 || colors[0].String() != "Blue" || colors[1].String() != "Red" {
		t.Errorf("expected Color [Blue Red], got %v", colors)
	}
	size, ok := res.Attributes.First("Size")
	if !ok || !size.IsNull() {
		t.Errorf("expected Size to decode as null, got %v", size)
	}
	price, ok := res.Attributes.First("Price")
	if !ok || price.String() != "14" {
		t.Errorf("expected base64 Price 14, got %v", price)
	}
}

func TestParseGetAttributes_CustomNilString(t *testing.T) {
	res, err := ParseGetAttributes([]byte(getAttributesBody), "<none>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	size, _ := res.Attributes.First("Size")
	if size.IsNull() || size.String() != "nil" {
		t.Errorf("expected literal nil with a different sentinel, got %v", size)
	}
}

func TestParseGetAttributes_MissingItem(t *testing.T) {
	body := `<GetAttributesResponse><GetAttributesResult/><ResponseMetadata><RequestId>r</RequestId></ResponseMetadata></GetAttributesResponse>`

	res, err := ParseGetAttributes([]byte(body), DefaultNilString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attributes == nil || len(res.Attributes) != 0 {
		t.Errorf("expected empty non-nil attributes, got %v", res.Attributes)
	}
}

// --- ParseSelect Tests ---

func TestParseSelect(t *testing.T) {
	res, err := ParseSelect([]byte(selectBody), DefaultNilString)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}
	if res.Items[0].Name != "item2" || res.Items[1].Name != "item1" {
		t.Errorf("expected service order item2, item1, got %s, %s", res.Items[0].Name, res.Items[1].Name)
	}
	if v, _ := res.Items[0].Attributes.First("a"); v.String() != "1" {
		t.Errorf("expected a=1, got %v", v)
	}
	if res.NextToken != "next" {
		t.Errorf("expected NextToken next, got %q", res.NextToken)
	}
}

// --- ParserFunc Tests ---

func TestParserFunc(t *testing.T) {
	sentinel := errors.New("boom")
	var p Parser[int] = ParserFunc[int](func(body []byte, nilString string) (int, error) {
		if nilString != "x" {
			return 0, sentinel
		}
		return len(body), nil
	})

	if n, err := p.Parse([]byte("abc"), "x"); err != nil || n != 3 {
		t.Errorf("expected 3, got %d, %v", n, err)
	}
	if _, err := p.Parse(nil, "y"); !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error, got %v", err)
	}
}
