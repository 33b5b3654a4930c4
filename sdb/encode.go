package sdb

import "strconv"

// encodeItems flattens items into Item.<i>.* parameters. Items and attribute
// names are visited in sorted order so the numbering is stable. <j> counts
// (attribute, value) pairs within an item.
func encodeItems(items Items, replace Replace, nilString string) map[string]string {
	encoded := make(map[string]string)
	for i, itemName := range sortedKeys(items) {
		prefix := "Item." + strconv.Itoa(i) + "."
		encoded[prefix+"ItemName"] = itemName
		encodePairs(encoded, prefix, items[itemName], replace[itemName], nilString, false)
	}
	return encoded
}

// encodeAttributes flattens the attributes of a single item into
// Attribute.<j>.* parameters. With bare set, an attribute without values is
// sent by name alone, which deletes all of its values.
func encodeAttributes(attrs Attributes, replace []string, nilString string, bare bool) map[string]string {
	encoded := make(map[string]string)
	encodePairs(encoded, "", attrs, replace, nilString, bare)
	return encoded
}

func encodePairs(dst map[string]string, prefix string, attrs Attributes, replace []string, nilString string, bare bool) {
	replaced := make(map[string]bool, len(replace))
	for _, name := range replace {
		replaced[name] = true
	}

	j := 0
	for _, name := range sortedKeys(attrs) {
		values := attrs[name]
		if len(values) == 0 {
			if bare {
				dst[prefix+"Attribute."+strconv.Itoa(j)+".Name"] = name
				j++
			}
			continue
		}
		for _, v := range values {
			key := prefix + "Attribute." + strconv.Itoa(j) + "."
			dst[key+"Name"] = name
			dst[key+"Value"] = encodeValue(v, nilString)
			if replaced[name] {
				dst[key+"Replace"] = "true"
			}
			j++
		}
	}
}

// encodeAttributeNames produces AttributeName.<i> filters in the given order.
func encodeAttributeNames(names []string) map[string]string {
	encoded := make(map[string]string, len(names))
	for i, name := range names {
		encoded["AttributeName."+strconv.Itoa(i)] = name
	}
	return encoded
}

func encodeValue(v Value, nilString string) string {
	if v.IsNull() {
		return nilString
	}
	return v.String()
}
