package onboarding

import (
	"testing"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
)

const testCategory = "5f0c6a4e-3b0a-4a53-9c53-6f1a9d9b2a10"

func companyData() Data {
	return Data{
		CNPJ:        "11.222.333/0001-81",
		CPF:         "529.982.247-25",
		CategoryID:  testCategory,
		Description: "Mercadinho de bairro com ofertas diarias",
	}
}

func imageData() Data {
	return Data{ImageURL: "/uploads/logo.png", BannerURL: "/uploads/banner.png"}
}

func locationData() Data {
	return Data{
		Street:       "Rua das Flores",
		Number:       "100",
		Neighborhood: "Centro",
		City:         "Teresina",
		State:        "PI",
		PostalCode:   "64000-000",
	}
}

func TestNewStateStartsAtFirstStep(t *testing.T) {
	tests := []struct {
		variant Variant
		first   Step
		total   int
	}{
		{VariantTwoStep, StepStore, 2},
		{VariantThreeStep, StepStore, 3},
		{VariantFourStep, StepInfo, 4},
	}

	for _, tt := range tests {
		s, err := NewState(tt.variant)
		if err != nil {
			t.Fatalf("NewState(%s) error = %v", tt.variant, err)
		}
		if s.Active != tt.first {
			t.Errorf("%s: active = %s, want %s", tt.variant, s.Active, tt.first)
		}
		if len(s.Steps()) != tt.total {
			t.Errorf("%s: %d steps, want %d", tt.variant, len(s.Steps()), tt.total)
		}
	}

	if _, err := NewState("five-step"); err == nil {
		t.Error("NewState(five-step) should fail")
	}
}

func TestSubmitBlockedByInvalidData(t *testing.T) {
	s, _ := NewState(VariantThreeStep)

	final, err := s.Submit(StepStore, Data{CNPJ: "11.222.333/0001-00", Description: "curta"})
	if final {
		t.Error("invalid submit must not be final")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Submit() error = %v, want validation", err)
	}

	fields := apperr.As(err).Fields
	for _, name := range []string{"cnpj", "cpf", "category_id", "description"} {
		if fields[name] == "" {
			t.Errorf("missing field error for %s", name)
		}
	}

	if s.Active != StepStore {
		t.Errorf("active = %s, want store", s.Active)
	}
	if s.Unlocked(StepImage) {
		t.Error("image step must stay locked")
	}
}

func TestSubmitAdvancesAndAccumulates(t *testing.T) {
	s, _ := NewState(VariantThreeStep)

	if final, err := s.Submit(StepStore, companyData()); err != nil || final {
		t.Fatalf("Submit(store) = %v, %v", final, err)
	}
	if s.Active != StepImage {
		t.Fatalf("active = %s, want image", s.Active)
	}
	if s.Data.CNPJ != "11222333000181" || s.Data.CPF != "52998224725" {
		t.Errorf("documents not unmasked: %+v", s.Data)
	}

	if final, err := s.Submit(StepImage, imageData()); err != nil || final {
		t.Fatalf("Submit(image) = %v, %v", final, err)
	}

	final, err := s.Submit(StepLocation, locationData())
	if err != nil || !final {
		t.Fatalf("Submit(location) = %v, %v; want final", final, err)
	}
	if s.Data.PostalCode != "64000000" {
		t.Errorf("postal code = %q", s.Data.PostalCode)
	}
	if s.Data.CNPJ == "" || s.Data.ImageURL == "" {
		t.Error("accumulator lost earlier steps")
	}
}

func TestSubmitRejectsInactiveStep(t *testing.T) {
	s, _ := NewState(VariantThreeStep)

	if _, err := s.Submit(StepLocation, locationData()); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("Submit(location) error = %v, want conflict", err)
	}
	if _, err := s.Submit(StepConfirmation, Data{}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Submit(confirmation) on three-step error = %v, want validation", err)
	}
}

func TestTwoStepRequiresImagesWithCompany(t *testing.T) {
	s, _ := NewState(VariantTwoStep)

	_, err := s.Submit(StepStore, companyData())
	fields := apperr.As(err).Fields
	if fields["image_url"] == "" || fields["banner_url"] == "" {
		t.Fatalf("two-step store should require images, got %v", err)
	}

	in := companyData()
	in.ImageURL = "/uploads/logo.png"
	in.BannerURL = "/uploads/banner.png"
	if _, err := s.Submit(StepStore, in); err != nil {
		t.Fatalf("Submit(store) error = %v", err)
	}
	if s.Active != StepLocation || s.Data.BannerURL == "" {
		t.Errorf("state = %+v", s)
	}
}

func TestFourStepConfirmationIsFinal(t *testing.T) {
	s, _ := NewState(VariantFourStep)

	steps := []struct {
		step Step
		data Data
	}{
		{StepInfo, companyData()},
		{StepVisual, imageData()},
		{StepAddress, locationData()},
	}
	for _, st := range steps {
		if final, err := s.Submit(st.step, st.data); err != nil || final {
			t.Fatalf("Submit(%s) = %v, %v", st.step, final, err)
		}
	}

	final, err := s.Submit(StepConfirmation, Data{})
	if err != nil || !final {
		t.Fatalf("Submit(confirmation) = %v, %v", final, err)
	}
}

func TestBackPreservesAccumulator(t *testing.T) {
	s, _ := NewState(VariantThreeStep)

	if err := s.Back(); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Back() at first step error = %v, want validation", err)
	}

	s.Submit(StepStore, companyData())
	if err := s.Back(); err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if s.Active != StepStore {
		t.Errorf("active = %s, want store", s.Active)
	}
	if s.Data.CNPJ != "11222333000181" {
		t.Error("Back() must keep the accumulator")
	}

	// completed steps stay unlocked after going back
	if !s.Unlocked(StepImage) {
		t.Error("image step should remain unlocked")
	}
}

func TestGotoRequiresPriorSteps(t *testing.T) {
	s, _ := NewState(VariantThreeStep)

	if err := s.Goto(StepImage); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("Goto(image) error = %v, want forbidden", err)
	}

	s.Submit(StepStore, companyData())
	if err := s.Goto(StepLocation); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("Goto(location) error = %v, want forbidden", err)
	}

	s.Submit(StepImage, imageData())
	if err := s.Goto(StepStore); err != nil {
		t.Fatalf("Goto(store) error = %v", err)
	}
	if err := s.Goto(StepLocation); err != nil {
		t.Fatalf("Goto(location) error = %v", err)
	}
	if s.Active != StepLocation {
		t.Errorf("active = %s", s.Active)
	}
}

func TestProgress(t *testing.T) {
	s, _ := NewState(VariantThreeStep)

	want := []Progress{
		{Index: 1, Total: 3, Percent: 33, Label: "Etapa 1/3"},
		{Index: 2, Total: 3, Percent: 66, Label: "Etapa 2/3"},
		{Index: 3, Total: 3, Percent: 100, Label: "Etapa 3/3"},
	}

	inputs := []Data{companyData(), imageData()}
	for i, w := range want {
		if got := s.Progress(); got != w {
			t.Errorf("Progress() = %+v, want %+v", got, w)
		}
		if i < len(inputs) {
			if _, err := s.Submit(s.Active, inputs[i]); err != nil {
				t.Fatal(err)
			}
		}
	}

	four, _ := NewState(VariantFourStep)
	if got := four.Progress(); got.Percent != 25 || got.Label != "Etapa 1/4" {
		t.Errorf("four-step Progress() = %+v", got)
	}
}

func TestValidateLocation(t *testing.T) {
	fields := ValidateStep(VariantThreeStep, StepLocation, Data{PostalCode: "6400-000"})
	for _, name := range []string{"street", "number", "neighborhood", "city", "state", "postal_code"} {
		if fields[name] == "" {
			t.Errorf("missing field error for %s", name)
		}
	}

	if fields := ValidateStep(VariantThreeStep, StepLocation, locationData()); len(fields) != 0 {
		t.Errorf("valid location rejected: %v", fields)
	}
}

func TestAddressLine(t *testing.T) {
	d := locationData()
	d.PostalCode = "64000000"
	want := "Rua das Flores, 100, Centro, Teresina, PI, 64000000, Brasil"
	if got := d.AddressLine(); got != want {
		t.Errorf("AddressLine() = %q, want %q", got, want)
	}
}

func TestDisplayMasksRoundTrip(t *testing.T) {
	s, _ := NewState(VariantThreeStep)
	if _, err := s.Submit(StepStore, Data{
		CNPJ:        "11222333000181",
		CPF:         "52998224725",
		CategoryID:  testCategory,
		Description: "Mercadinho de bairro com ofertas diarias",
	}); err != nil {
		t.Fatal(err)
	}

	d := s.Data.Display()
	if d.CNPJ != "11.222.333/0001-81" || d.CPF != "529.982.247-25" {
		t.Errorf("Display() = %+v", d)
	}

	// the masked values submitted back are stored unmasked
	s2, _ := NewState(VariantThreeStep)
	if _, err := s2.Submit(StepStore, Data{CNPJ: d.CNPJ, CPF: d.CPF, CategoryID: testCategory,
		Description: "Mercadinho de bairro com ofertas diarias"}); err != nil {
		t.Fatal(err)
	}
	if s2.Data.CNPJ != "11222333000181" || s2.Data.CPF != "52998224725" {
		t.Errorf("accumulator = %+v", s2.Data)
	}

	if got := (Data{}).Display(); got != (Display{}) {
		t.Errorf("empty Display() = %+v", got)
	}
}
