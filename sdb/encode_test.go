package sdb

import (
	"strconv"
	"testing"
)

// --- encodeItems Tests ---

func TestEncodeItems_SingleValue(t *testing.T) {
	items := Items{"item1": Attributes{"color": Strings("blue")}}

	got := encodeItems(items, nil, DefaultNilString)

	expected := map[string]string{
		"Item.0.ItemName":          "item1",
		"Item.0.Attribute.0.Name":  "color",
		"Item.0.Attribute.0.Value": "blue",
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d params, got %d: %v", len(expected), len(got), got)
	}
	for k, v := range expected {
		if got[k] != v {
			t.Errorf("expected %s=%q, got %q", k, v, got[k])
		}
	}
}

func TestEncodeItems_MultiValueTakesOneSlotPerValue(t *testing.T) {
	items := Items{"i": Attributes{"tag": Strings("a", "b", "c")}}

	got := encodeItems(items, nil, DefaultNilString)

	for j, want := range []string{"a", "b", "c"} {
		prefix := "Item.0.Attribute." + strconv.Itoa(j) + "."
		if got[prefix+"Name"] != "tag" {
			t.Errorf("expected %sName=tag, got %q", prefix, got[prefix+"Name"])
		}
		if got[prefix+"Value"] != want {
			t.Errorf("expected %sValue=%q, got %q", prefix, want, got[prefix+"Value"])
		}
	}
}

func TestEncodeItems_PairCount(t *testing.T) {
	items := Items{
		"a": Attributes{"x": Strings("1", "2"), "y": Strings("3")},
		"b": Attributes{"z": Strings("4")},
		"c": Attributes{"x": Strings("5", "6", "7"), "w": {Null()}},
	}

	got := encodeItems(items, nil, DefaultNilString)

	values := 0
	for k := range got {
		if len(k) > 6 && k[len(k)-6:] == ".Value" {
			values++
		}
	}
	if values != 8 {
		t.Errorf("expected 8 Value entries, got %d", values)
	}
	for i, name := range []string{"a", "b", "c"} {
		key := "Item." + strconv.Itoa(i) + ".ItemName"
		if got[key] != name {
			t.Errorf("expected %s=%q, got %q", key, name, got[key])
		}
	}
}

func TestEncodeItems_ReplaceOnlyForListedAttributes(t *testing.T) {
	items := Items{"i": Attributes{"a": Strings("1", "2"), "b": Strings("3")}}
	replace := Replace{"i": {"a"}}

	got := encodeItems(items, replace, DefaultNilString)

	// a sorts first: slots 0 and 1 belong to a, slot 2 to b.
	for _, j := range []string{"0", "1"} {
		if got["Item.0.Attribute."+j+".Replace"] != "true" {
			t.Errorf("expected Replace=true on slot %s", j)
		}
	}
	if _, ok := got["Item.0.Attribute.2.Replace"]; ok {
		t.Error("expected no Replace on slot 2")
	}
}

func TestEncodeItems_ReplaceForOtherItemIgnored(t *testing.T) {
	items := Items{"i": Attributes{"a": Strings("1")}}
	replace := Replace{"other": {"a"}}

	got := encodeItems(items, replace, DefaultNilString)
	if _, ok := got["Item.0.Attribute.0.Replace"]; ok {
		t.Error("expected no Replace for attribute listed under another item")
	}
}

func TestEncodeItems_NullUsesSentinel(t *testing.T) {
	items := Items{"i": Attributes{"gone": {Null()}}}

	got := encodeItems(items, nil, "<null>")
	if got["Item.0.Attribute.0.Value"] != "<null>" {
		t.Errorf("expected sentinel, got %q", got["Item.0.Attribute.0.Value"])
	}
}

func TestEncodeItems_Empty(t *testing.T) {
	if got := encodeItems(nil, nil, DefaultNilString); len(got) != 0 {
		t.Errorf("expected no params for nil items, got %v", got)
	}
	if got := encodeItems(Items{}, nil, DefaultNilString); len(got) != 0 {
		t.Errorf("expected no params for empty items, got %v", got)
	}
}

func TestEncodeItems_Deterministic(t *testing.T) {
	items := Items{
		"z": Attributes{"b": Strings("1"), "a": Strings("2")},
		"y": Attributes{"c": Strings("3")},
	}
	first := encodeItems(items, nil, DefaultNilString)
	for i := 0; i < 10; i++ {
		got := encodeItems(items, nil, DefaultNilString)
		for k, v := range first {
			if got[k] != v {
				t.Fatalf("run %d: %s changed from %q to %q", i, k, v, got[k])
			}
		}
	}
}

// --- encodeAttributes Tests ---

func TestEncodeAttributes_NoItemPrefix(t *testing.T) {
	got := encodeAttributes(Attributes{"color": Strings("blue")}, []string{"color"}, DefaultNilString, false)

	expected := map[string]string{
		"Attribute.0.Name":    "color",
		"Attribute.0.Value":   "blue",
		"Attribute.0.Replace": "true",
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for k, v := range expected {
		if got[k] != v {
			t.Errorf("expected %s=%q, got %q", k, v, got[k])
		}
	}
}

func TestEncodeAttributes_BareNameDeletesAllValues(t *testing.T) {
	got := encodeAttributes(Attributes{"a": nil, "b": Strings("x")}, nil, DefaultNilString, true)

	if got["Attribute.0.Name"] != "a" {
		t.Errorf("expected Attribute.0.Name=a, got %q", got["Attribute.0.Name"])
	}
	if _, ok := got["Attribute.0.Value"]; ok {
		t.Error("expected no value for bare attribute")
	}
	if got["Attribute.1.Name"] != "b" || got["Attribute.1.Value"] != "x" {
		t.Errorf("expected b=x in slot 1, got %v", got)
	}
}

func TestEncodeAttributes_EmptyValuesSkippedWhenNotBare(t *testing.T) {
	got := encodeAttributes(Attributes{"a": nil}, nil, DefaultNilString, false)
	if len(got) != 0 {
		t.Errorf("expected no params, got %v", got)
	}
}

// --- encodeAttributeNames Tests ---

func TestEncodeAttributeNames(t *testing.T) {
	got := encodeAttributeNames([]string{"b", "a"})

	if got["AttributeName.0"] != "b" || got["AttributeName.1"] != "a" {
		t.Errorf("expected names in given order, got %v", got)
	}
	if len(encodeAttributeNames(nil)) != 0 {
		t.Error("expected no params for nil names")
	}
}
