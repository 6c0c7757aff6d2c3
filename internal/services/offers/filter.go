package offers

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Andessonreis/corre-aqui-dash/internal/models"
)

// Sort keys accepted by Apply
const (
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// FilterAll disables the status or category filter
const FilterAll = "all"

// Filter is the query state of the offers table
type Filter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Category string `form:"category"`
	Sort     string `form:"sort"`
}

// Apply filters and sorts offers without touching the input slice.
// Offers must already carry their derived status.
func Apply(offers []models.Offer, f Filter) []models.Offer {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		if search != "" && !strings.Contains(strings.ToLower(o.Name), search) {
			continue
		}
		if !matches(f.Status, string(o.Status)) || !matches(f.Category, o.CategoryName) {
			continue
		}
		out = append(out, o)
	}

	switch f.Sort {
	case SortNameAsc, SortNameDesc:
		col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
		desc := f.Sort == SortNameDesc
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				return col.CompareString(out[j].Name, out[i].Name) < 0
			}
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].OfferPrice < out[j].OfferPrice })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].OfferPrice > out[j].OfferPrice })
	}

	return out
}

func matches(want, got string) bool {
	return want == "" || want == FilterAll || want == got
}

// Facets returns the distinct category names and statuses, for filter dropdowns
func Facets(offers []models.Offer) (categories, statuses []string) {
	seenCategory := map[string]bool{}
	seenStatus := map[string]bool{}
	categories = []string{}
	statuses = []string{}

	for _, o := range offers {
		if o.CategoryName != "" && !seenCategory[o.CategoryName] {
			seenCategory[o.CategoryName] = true
			categories = append(categories, o.CategoryName)
		}
		if s := string(o.Status); s != "" && !seenStatus[s] {
			seenStatus[s] = true
			statuses = append(statuses, s)
		}
	}

	sort.Strings(categories)
	sort.Strings(statuses)
	return categories, statuses
}
