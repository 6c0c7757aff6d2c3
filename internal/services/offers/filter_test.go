package offers

import (
	"testing"

	"github.com/Andessonreis/corre-aqui-dash/internal/models"
)

func sample() []models.Offer {
	return []models.Offer{
		{Name: "Pizza Grande", CategoryName: "Alimentação", OfferPrice: 39.9, Status: models.OfferStatusActive},
		{Name: "açaí 500ml", CategoryName: "Alimentação", OfferPrice: 12.5, Status: models.OfferStatusExpired},
		{Name: "Camiseta", CategoryName: "Vestuário", OfferPrice: 49.0, Status: models.OfferStatusActive},
		{Name: "Bolo de pote", CategoryName: "Alimentação", OfferPrice: 8.0, Status: models.OfferStatusScheduled},
		{Name: "Tênis", CategoryName: "Vestuário", OfferPrice: 199.0, Status: models.OfferStatusInactive},
	}
}

func names(offers []models.Offer) []string {
	out := make([]string, len(offers))
	for i, o := range offers {
		out[i] = o.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyStatusActive(t *testing.T) {
	got := Apply(sample(), Filter{Status: "active"})
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 offers", names(got))
	}
	for _, o := range got {
		if o.Status != models.OfferStatusActive {
			t.Errorf("offer %s has status %s", o.Name, o.Status)
		}
	}
}

func TestApplyPriceDescNonIncreasing(t *testing.T) {
	got := Apply(sample(), Filter{Sort: SortPriceDesc})
	if len(got) != 5 {
		t.Fatalf("got %d offers", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].OfferPrice > got[i-1].OfferPrice {
			t.Errorf("price-desc not ordered: %v", names(got))
		}
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter keeps order", Filter{}, []string{"Pizza Grande", "açaí 500ml", "Camiseta", "Bolo de pote", "Tênis"}},
		{"all is no filter", Filter{Status: "all", Category: "all"}, []string{"Pizza Grande", "açaí 500ml", "Camiseta", "Bolo de pote", "Tênis"}},
		{"search is case insensitive", Filter{Search: "PIZ"}, []string{"Pizza Grande"}},
		{"category", Filter{Category: "Vestuário"}, []string{"Camiseta", "Tênis"}},
		{"category and status", Filter{Category: "Alimentação", Status: "expired"}, []string{"açaí 500ml"}},
		{"name asc uses collation", Filter{Category: "Alimentação", Sort: SortNameAsc}, []string{"açaí 500ml", "Bolo de pote", "Pizza Grande"}},
		{"name desc", Filter{Category: "Alimentação", Sort: SortNameDesc}, []string{"Pizza Grande", "Bolo de pote", "açaí 500ml"}},
		{"price asc", Filter{Category: "Vestuário", Sort: SortPriceAsc}, []string{"Camiseta", "Tênis"}},
		{"unknown sort keeps order", Filter{Sort: "rating"}, []string{"Pizza Grande", "açaí 500ml", "Camiseta", "Bolo de pote", "Tênis"}},
		{"no match", Filter{Search: "sushi"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Apply(sample(), tt.filter))
			if !equal(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := sample()
	Apply(in, Filter{Sort: SortPriceAsc})
	if in[0].Name != "Pizza Grande" {
		t.Error("input slice was reordered")
	}
}

func TestFacets(t *testing.T) {
	categories, statuses := Facets(sample())
	if !equal(categories, []string{"Alimentação", "Vestuário"}) {
		t.Errorf("categories = %v", categories)
	}
	if !equal(statuses, []string{"active", "expired", "inactive", "scheduled"}) {
		t.Errorf("statuses = %v", statuses)
	}
}
