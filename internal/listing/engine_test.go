package listing

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() []Record {
	return []Record{
		{ID: 1, Title: "Sea View Apartment", Location: "Bandra West, Mumbai", Type: "Apartment", Purpose: PurposeSale, Price: "₹1.5 Cr", Beds: 3, AgentName: "Rahul Sharma"},
		{ID: 2, Title: "Cozy Studio", Location: "Koramangala, Bangalore", Type: "Studio", Purpose: PurposeRent, Price: "₹18,000/month", Beds: 0, AgentName: "Priya Patel"},
		{ID: 3, Title: "Garden Villa", Location: "Whitefield, Bangalore", Type: "Villa", Purpose: PurposeSale, Price: "₹3 Cr", Beds: 5, AgentName: "Priya Patel"},
		{ID: 4, Title: "Compact Flat", Location: "Andheri East, Mumbai", Type: "Flat", Purpose: PurposeSale, Price: "₹75 L", Beds: 2, AgentName: "Rahul Sharma"},
		{ID: 5, Title: "Family Home", Location: "Gurgaon Sector 54", Type: "Apartment", Purpose: PurposeRent, Price: "₹45,000/month", Beds: 3, AgentName: "Amit Verma"},
		{ID: 6, Title: "Sky Penthouse", Location: "Worli, Mumbai", Type: "Penthouse", Purpose: PurposeSale, Price: "₹8.5 Cr", Beds: 4, AgentName: "Amit Verma"},
		{ID: 7, Title: "Budget Flat", Location: "Pune Hinjewadi", Type: "Flat", Purpose: PurposeSale, Price: "₹15 L", Beds: 1, AgentName: "Sneha Reddy"},
		{ID: 8, Title: "Shared Flat", Location: "Hinjewadi, Pune", Type: "Flat", Purpose: PurposeRent, Price: "₹12,000/month", Beds: 2, AgentName: "Sneha Reddy"},
		{ID: 9, Title: "Lake Villa", Location: "Hyderabad Gachibowli", Type: "Villa", Purpose: PurposeSale, Price: "₹25 L", Beds: 4, AgentName: "Rahul Sharma"},
		{ID: 10, Title: "Office Studio", Location: "Cyber City, Gurgaon", Type: "Studio", Purpose: PurposeRent, Price: "₹22,000/month", Beds: 1, AgentName: "Amit Verma"},
	}
}

func ids(records []Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestApplyForSaleScenario(t *testing.T) {
	res, err := Apply(sampleCatalog(), FilterSpec{Purpose: PurposeSale, Page: 1, PageSize: 6})
	require.NoError(t, err)

	assert.Equal(t, 6, res.TotalCount)
	assert.Equal(t, 1, res.TotalPages)
	assert.Len(t, res.Items, 6)
	for _, r := range res.Items {
		assert.Equal(t, PurposeSale, r.Purpose)
	}
	// newest first
	assert.Equal(t, []int64{9, 7, 6, 4, 3, 1}, ids(res.Items))
}

func TestApplyPriceRange(t *testing.T) {
	catalog := []Record{
		{ID: 1, Purpose: PurposeSale, Price: "₹15 L"},
		{ID: 2, Purpose: PurposeSale, Price: "₹25 L"},
	}
	res, err := Apply(catalog, FilterSpec{MinPrice: "1000000", MaxPrice: "2000000", Page: 1, PageSize: 6})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids(res.Items))
}

func TestApplyPriceBoundsAreInclusive(t *testing.T) {
	catalog := []Record{{ID: 1, Price: "₹75 L"}}
	res, err := Apply(catalog, FilterSpec{MinPrice: "7500000", MaxPrice: "7,500,000", Page: 1, PageSize: 6})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalCount)
}

func TestApplyMalformedBoundsAreIgnored(t *testing.T) {
	res, err := Apply(sampleCatalog(), FilterSpec{MinPrice: "cheap", MaxPrice: "--", Page: 1, PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, 10, res.TotalCount)
}

func TestApplyRentScaleLimitation(t *testing.T) {
	// A sale-scale minimum combined with a rent filter matches nothing since
	// monthly rents are kept as the literal monthly figure.
	res, err := Apply(sampleCatalog(), FilterSpec{Purpose: PurposeRent, MinPrice: "1000000", Page: 1, PageSize: 6})
	require.NoError(t, err)
	assert.Zero(t, res.TotalCount)
	assert.Empty(t, res.Items)
}

func TestApplyUnparseablePrice(t *testing.T) {
	catalog := []Record{
		{ID: 1, Price: "Price on request"},
		{ID: 2, Price: "₹50 L"},
		{ID: 3, Price: "₹20 L"},
	}

	res, err := Apply(catalog, FilterSpec{MaxPrice: "9000000", Page: 1, PageSize: 6})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2}, ids(res.Items), "unknown price fails an active bound")

	asc, err := Apply(catalog, FilterSpec{SortBy: SortPriceAsc, Page: 1, PageSize: 6})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids(asc.Items))

	desc, err := Apply(catalog, FilterSpec{SortBy: SortPriceDesc, Page: 1, PageSize: 6})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, ids(desc.Items))
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name string
		spec FilterSpec
		want []int64
	}{
		{"everything", FilterSpec{}, []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}},
		{"all wildcards", FilterSpec{Purpose: "all", AgentName: "all", PropertyType: "all", Beds: "any"}, []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}},
		{"agent exact", FilterSpec{AgentName: "Priya Patel"}, []int64{3, 2}},
		{"agent ignores case", FilterSpec{AgentName: "rahul sharma"}, []int64{9, 4, 1}},
		{"location substring", FilterSpec{Location: "mumbai"}, []int64{6, 4, 1}},
		{"location mixed case", FilterSpec{Location: "PuNe"}, []int64{8, 7}},
		{"type ignores case", FilterSpec{PropertyType: "villa"}, []int64{9, 3}},
		{"exact beds", FilterSpec{Beds: "2"}, []int64{8, 4}},
		{"studio beds", FilterSpec{Beds: "0"}, []int64{2}},
		{"four plus", FilterSpec{Beds: FourPlusBeds}, []int64{9, 6, 3}},
		{"bhk style beds", FilterSpec{Beds: "3BHK"}, []int64{5, 1}},
		{"plus suffix other than four", FilterSpec{Beds: "3+"}, []int64{5, 1}},
		{"negative beds", FilterSpec{Beds: "-1"}, []int64{}},
		{"garbage beds ignored", FilterSpec{Beds: "lots"}, []int64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}},
		{"combined", FilterSpec{Purpose: PurposeSale, Location: "bangalore", PropertyType: "Villa"}, []int64{3}},
		{"rent under 20k", FilterSpec{Purpose: PurposeRent, MaxPrice: "20000"}, []int64{8, 2}},
		{"purpose padded", FilterSpec{Purpose: " for-rent "}, []int64{10, 8, 5, 2}},
		{"unknown agent", FilterSpec{AgentName: "Nobody"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.spec.Page = 1
			tt.spec.PageSize = 100
			res, err := Apply(sampleCatalog(), tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Items))
			assert.Equal(t, len(tt.want), res.TotalCount)
		})
	}
}

func TestFourPlusBeds(t *testing.T) {
	spec := FilterSpec{Beds: FourPlusBeds}
	assert.Empty(t, Reasons(Record{Beds: 5}, spec))
	assert.Equal(t, []string{"too_few_beds"}, Reasons(Record{Beds: 3}, spec))
}

func TestSortOrders(t *testing.T) {
	asc, err := Apply(sampleCatalog(), FilterSpec{Purpose: PurposeSale, SortBy: SortPriceAsc, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 9, 4, 1, 3, 6}, ids(asc.Items))

	desc, err := Apply(sampleCatalog(), FilterSpec{Purpose: PurposeSale, SortBy: SortPriceDesc, Page: 1, PageSize: 10})
	require.NoError(t, err)

	reversed := slices.Clone(asc.Items)
	slices.Reverse(reversed)
	assert.Equal(t, ids(reversed), ids(desc.Items))
}

func TestSortUnknownFallsBackToNewest(t *testing.T) {
	res, err := Apply(sampleCatalog(), FilterSpec{SortBy: "popular", Page: 1, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 9, 8}, ids(res.Items))
}

func TestSortIsStable(t *testing.T) {
	catalog := []Record{
		{ID: 1, Title: "a", Price: "₹50 L"},
		{ID: 2, Title: "b", Price: "₹50 L"},
		{ID: 3, Title: "c", Price: "₹5000000"},
		{ID: 4, Title: "d", Price: "₹10 L"},
	}
	for _, order := range []string{SortPriceAsc, SortPriceDesc} {
		res, err := Apply(catalog, FilterSpec{SortBy: order, Page: 1, PageSize: 10})
		require.NoError(t, err)
		var equal []int64
		for _, r := range res.Items {
			if r.Price != "₹10 L" {
				equal = append(equal, r.ID)
			}
		}
		assert.Equal(t, []int64{1, 2, 3}, equal, order)
	}
}

func TestApplyDoesNotMutateCatalog(t *testing.T) {
	catalog := sampleCatalog()
	before := ids(catalog)
	_, err := Apply(catalog, FilterSpec{SortBy: SortPriceDesc, Page: 1, PageSize: 4})
	require.NoError(t, err)
	assert.Equal(t, before, ids(catalog))
}

func TestApplyIsIdempotent(t *testing.T) {
	specs := []FilterSpec{
		{Purpose: PurposeSale, SortBy: SortPriceAsc},
		{Location: "mumbai", Beds: FourPlusBeds},
		{AgentName: "Amit Verma", SortBy: SortPriceDesc},
		{MinPrice: "15000", MaxPrice: "20000000"},
	}
	for _, spec := range specs {
		spec.Page, spec.PageSize = 1, 6
		first, err := Apply(sampleCatalog(), spec)
		require.NoError(t, err)
		second, err := Apply(first.Items, spec)
		require.NoError(t, err)
		assert.Equal(t, first.Items, second.Items, "%+v", spec)
	}
}

func TestTotalCountNeverExceedsCatalog(t *testing.T) {
	catalog := sampleCatalog()
	for _, spec := range []FilterSpec{{}, {Purpose: PurposeRent}, {Beds: "9"}, {Location: "a"}} {
		spec.Page, spec.PageSize = 1, 6
		res, err := Apply(catalog, spec)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.TotalCount, len(catalog))
	}
}

func TestPagesReconstructResult(t *testing.T) {
	catalog := sampleCatalog()
	for size := 1; size <= 11; size++ {
		t.Run(fmt.Sprintf("size %d", size), func(t *testing.T) {
			spec := FilterSpec{SortBy: SortPriceAsc, Page: 1, PageSize: size}
			first, err := Apply(catalog, spec)
			require.NoError(t, err)

			var all []Record
			for p := 1; p <= first.TotalPages; p++ {
				spec.Page = p
				res, err := Apply(catalog, spec)
				require.NoError(t, err)
				all = append(all, res.Items...)
			}
			assert.Equal(t, ids(AllMatching(catalog, spec)), ids(all))
			assert.Len(t, all, first.TotalCount)
		})
	}
}

func TestPageBeyondEnd(t *testing.T) {
	res, err := Apply(sampleCatalog(), FilterSpec{Page: 5, PageSize: 6})
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 10, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
}

func TestHugePageIsEmpty(t *testing.T) {
	res, err := Apply(sampleCatalog(), FilterSpec{Page: math.MaxInt, PageSize: 6})
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 2, res.TotalPages)

	page, total := Paginate([]int{1, 2, 3}, math.MaxInt, math.MaxInt/2)
	assert.Equal(t, []int{}, page)
	assert.Equal(t, 1, total)
}

func TestApplyOutOfRangePriceIsUnknown(t *testing.T) {
	catalog := []Record{
		{ID: 1, Price: "₹50 L"},
		{ID: 2, Price: "₹99999999999999 Cr"},
	}

	asc, err := Apply(catalog, FilterSpec{SortBy: SortPriceAsc, Page: 1, PageSize: 6})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(asc.Items))

	capped, err := Apply(catalog, FilterSpec{MaxPrice: "1000", Page: 1, PageSize: 6})
	require.NoError(t, err)
	assert.Empty(t, capped.Items)
}

func TestEmptyCatalog(t *testing.T) {
	res, err := Apply(nil, FilterSpec{Page: 1, PageSize: 6})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.TotalPages)
}

func TestApplyInvalidArguments(t *testing.T) {
	_, err := Apply(sampleCatalog(), FilterSpec{Page: 1, PageSize: 0})
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = Apply(sampleCatalog(), FilterSpec{Page: 0, PageSize: 6})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page, total := Paginate(items, 2, 3)
	assert.Equal(t, []int{4, 5, 6}, page)
	assert.Equal(t, 3, total)

	page, _ = Paginate(items, 3, 3)
	assert.Equal(t, []int{7}, page)

	page, _ = Paginate(items, 4, 3)
	assert.Equal(t, []int{}, page)

	page, total = Paginate(items, 1, 0)
	assert.Empty(t, page)
	assert.Zero(t, total)
}
