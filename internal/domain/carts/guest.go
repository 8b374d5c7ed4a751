package carts

import (
	"encoding/json"
	"fmt"
)

// attrsJSON canonicalizes an attributes map for storage and line identity.
// encoding/json writes map keys in sorted order, so two maps with the same
// contents always produce the same payload. A nil map becomes "{}".
func attrsJSON(attrs map[string]any) ([]byte, error) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}
	return b, nil
}

// NormalizeGuestItems coalesces guest lines that target the same
// (product, attributes) pair, summing their quantities, and preserves the
// first-seen order of the distinct pairs. The merge then applies each
// distinct pair as a single accumulate-upsert.
func NormalizeGuestItems(items []GuestItem) ([]GuestItem, error) {
	type lineKey struct {
		productID int64
		attrs     string
	}

	index := make(map[lineKey]int, len(items))
	out := make([]GuestItem, 0, len(items))

	for _, it := range items {
		b, err := attrsJSON(it.Attributes)
		if err != nil {
			return nil, err
		}
		k := lineKey{productID: it.ProductID, attrs: string(b)}

		if i, ok := index[k]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[k] = len(out)
		out = append(out, GuestItem{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			Attributes: it.Attributes,
		})
	}

	return out, nil
}
