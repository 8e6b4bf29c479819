package listing

import "fmt"

// Apply filters catalog with spec, sorts the survivors and cuts out the
// requested page. The catalog is never modified.
//
// The only error is ErrInvalidArgument, returned for a page below 1 or a
// non-positive page size. Malformed filter values never fail: they drop the
// clause they belong to.
func Apply(catalog []Record, spec FilterSpec) (Result, error) {
	if spec.PageSize <= 0 {
		return Result{}, fmt.Errorf("%w: page size %d", ErrInvalidArgument, spec.PageSize)
	}
	if spec.Page < 1 {
		return Result{}, fmt.Errorf("%w: page %d", ErrInvalidArgument, spec.Page)
	}

	filtered := Filter(catalog, spec)
	Sort(filtered, spec.SortBy)
	items, totalPages := Paginate(filtered, spec.Page, spec.PageSize)

	return Result{
		Items:      items,
		TotalCount: len(filtered),
		TotalPages: totalPages,
		Page:       spec.Page,
		PageSize:   spec.PageSize,
	}, nil
}

// AllMatching returns every record matching spec in sorted order, ignoring the
// pagination fields.
func AllMatching(catalog []Record, spec FilterSpec) []Record {
	filtered := Filter(catalog, spec)
	Sort(filtered, spec.SortBy)
	return filtered
}
