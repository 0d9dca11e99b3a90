package cart

import "github.com/angelmondragon/boutique-backend/pkg/types"

// Merge folds an anonymous local cart into the server cart. A local line whose
// product id already exists server-side raises that line to the larger quantity;
// other local lines are appended without their variation. Merging into an empty
// server cart returns the local cart unchanged.
func Merge(server, local []types.CartLine) []types.CartLine {
	if len(server) == 0 {
		return append([]types.CartLine(nil), local...)
	}

	merged := append([]types.CartLine(nil), server...)
	for _, item := range local {
		idx := indexOfProduct(merged, item.ProductID)
		if idx < 0 {
			merged = append(merged, item.ClearVariation())
			continue
		}
		if item.Quantity > merged[idx].Quantity {
			merged[idx].Quantity = item.Quantity
		}
	}
	return merged
}

func indexOfProduct(lines []types.CartLine, productID int64) int {
	for i := range lines {
		if lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

type lineKey struct {
	productID   int64
	variationID int64
}

func keyOf(line types.CartLine) lineKey {
	return lineKey{productID: line.ProductID, variationID: line.VariationID}
}

// dedupe keeps the last occurrence of each (product, variation) pair at the
// position of its first occurrence.
func dedupe(lines []types.CartLine) []types.CartLine {
	pos := make(map[lineKey]int, len(lines))
	out := make([]types.CartLine, 0, len(lines))
	for _, line := range lines {
		k := keyOf(line)
		if i, ok := pos[k]; ok {
			out[i] = line
			continue
		}
		pos[k] = len(out)
		out = append(out, line)
	}
	return out
}
