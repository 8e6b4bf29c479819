package listing

import (
	"slices"

	"realty_backend/pkg/price"
)

// Sort orders records in place. The sort is stable, so records with equal
// keys keep their relative order. Unknown orders fall back to newest first.
//
// Records with an unparseable price go last for both price orders.
func Sort(records []Record, sortBy string) {
	switch sortBy {
	case SortPriceAsc:
		sortByPrice(records, false)
	case SortPriceDesc:
		sortByPrice(records, true)
	default:
		slices.SortStableFunc(records, func(a, b Record) int {
			switch {
			case a.ID > b.ID:
				return -1
			case a.ID < b.ID:
				return 1
			}
			return 0
		})
	}
}

func sortByPrice(records []Record, desc bool) {
	type keyed struct {
		rec    Record
		amount int64
		known  bool
	}
	items := make([]keyed, len(records))
	for i, r := range records {
		amount, ok := price.Parse(r.Price)
		items[i] = keyed{rec: r, amount: amount, known: ok}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case !a.known && !b.known:
			return 0
		case !a.known:
			return 1
		case !b.known:
			return -1
		}
		cmp := 0
		switch {
		case a.amount < b.amount:
			cmp = -1
		case a.amount > b.amount:
			cmp = 1
		}
		if desc {
			cmp = -cmp
		}
		return cmp
	})

	for i := range items {
		records[i] = items[i].rec
	}
}
