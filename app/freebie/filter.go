package freebie

// Filter returns the subset of items whose keys are not in seen, in input
// order, each tagged with its derived key for downstream use. Neither input
// is mutated.
func Filter(items []Item, seen KeySet) []Tagged {
	unseen := make([]Tagged, 0, len(items))

	for _, item := range items {
		key := DeriveKey(item)
		if seen.Has(key) {
			continue
		}
		unseen = append(unseen, Tagged{Item: item, Key: key})
	}

	return unseen
}
