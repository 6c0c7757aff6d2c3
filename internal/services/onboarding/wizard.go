// Package onboarding drives the store setup wizard: an ordered set of steps
// that accumulate company, image and address data and end in a single
// transactional write of owner, store and address.
package onboarding

import (
	"fmt"
	"strings"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

type Variant string

const (
	VariantTwoStep   Variant = "two-step"
	VariantThreeStep Variant = "three-step"
	VariantFourStep  Variant = "four-step"
)

type Step string

const (
	StepStore        Step = "store"
	StepImage        Step = "image"
	StepLocation     Step = "location"
	StepInfo         Step = "info"
	StepVisual       Step = "visual"
	StepAddress      Step = "address"
	StepConfirmation Step = "confirmation"
)

var variantSteps = map[Variant][]Step{
	VariantTwoStep:   {StepStore, StepLocation},
	VariantThreeStep: {StepStore, StepImage, StepLocation},
	VariantFourStep:  {StepInfo, StepVisual, StepAddress, StepConfirmation},
}

// stepKind groups steps that collect the same data across variants
type stepKind int

const (
	kindCompany stepKind = iota
	kindImages
	kindLocation
	kindConfirmation
)

var stepKinds = map[Step]stepKind{
	StepStore:        kindCompany,
	StepInfo:         kindCompany,
	StepImage:        kindImages,
	StepVisual:       kindImages,
	StepLocation:     kindLocation,
	StepAddress:      kindLocation,
	StepConfirmation: kindConfirmation,
}

// ParseVariant validates a variant name. Empty selects fallback.
func ParseVariant(name string, fallback Variant) (Variant, error) {
	if name == "" {
		return fallback, nil
	}
	v := Variant(name)
	if _, ok := variantSteps[v]; !ok {
		return "", apperr.Validation("unknown wizard variant", map[string]string{
			"variant": fmt.Sprintf("must be one of %s, %s, %s", VariantTwoStep, VariantThreeStep, VariantFourStep),
		})
	}
	return v, nil
}

// Data is the accumulator. Documents and postal code are kept unmasked.
type Data struct {
	CNPJ         string `json:"cnpj,omitempty"`
	CPF          string `json:"cpf,omitempty"`
	CategoryID   string `json:"category_id,omitempty"`
	Description  string `json:"description,omitempty"`
	Name         string `json:"name,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	BannerURL    string `json:"banner_url,omitempty"`
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// AddressLine is the free-form query sent to the geocoder
func (d Data) AddressLine() string {
	return strings.Join([]string{
		d.Street, d.Number, d.Neighborhood, d.City, d.State, d.PostalCode, Country,
	}, ", ")
}

// Display is the accumulator documents in their form masks
type Display struct {
	CNPJ       string `json:"cnpj,omitempty"`
	CPF        string `json:"cpf,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Display masks the unmasked documents for the form inputs
func (d Data) Display() Display {
	return Display{
		CNPJ:       utils.FormatCNPJ(d.CNPJ),
		CPF:        utils.FormatCPF(d.CPF),
		PostalCode: utils.FormatCEP(d.PostalCode),
	}
}

// Country is stored on every address
const Country = "Brasil"

// State is the persisted wizard state of one user
type State struct {
	Variant   Variant `json:"variant"`
	Active    Step    `json:"active_step"`
	Completed []Step  `json:"completed"`
	Data      Data    `json:"data"`
}

// NewState starts a wizard at its first step with an empty accumulator
func NewState(variant Variant) (*State, error) {
	steps, ok := variantSteps[variant]
	if !ok {
		return nil, fmt.Errorf("unknown wizard variant %q", variant)
	}
	return &State{
		Variant:   variant,
		Active:    steps[0],
		Completed: []Step{},
	}, nil
}

// Steps returns the ordered steps of the variant
func (s *State) Steps() []Step {
	return variantSteps[s.Variant]
}

func (s *State) indexOf(step Step) int {
	for i, st := range s.Steps() {
		if st == step {
			return i
		}
	}
	return -1
}

func (s *State) isCompleted(step Step) bool {
	for _, st := range s.Completed {
		if st == step {
			return true
		}
	}
	return false
}

func (s *State) markCompleted(step Step) {
	if !s.isCompleted(step) {
		s.Completed = append(s.Completed, step)
	}
}

// IsFinal reports whether step is the last of the variant
func (s *State) IsFinal(step Step) bool {
	steps := s.Steps()
	return len(steps) > 0 && steps[len(steps)-1] == step
}

// Unlocked reports whether the user may navigate to step: every earlier step
// has been completed. Completed steps never lock again.
func (s *State) Unlocked(step Step) bool {
	idx := s.indexOf(step)
	if idx < 0 {
		return false
	}
	for _, prior := range s.Steps()[:idx] {
		if !s.isCompleted(prior) {
			return false
		}
	}
	return true
}

// Submit validates and merges the data of the active step. Non-final steps
// advance the wizard; for the final step the caller performs the terminal
// write and the active step is left in place.
func (s *State) Submit(step Step, in Data) (final bool, err error) {
	if s.indexOf(step) < 0 {
		return false, apperr.Validation(fmt.Sprintf("step %q is not part of the %s wizard", step, s.Variant), nil)
	}
	if step != s.Active {
		return false, apperr.Conflict(fmt.Sprintf("step %q is not the active step", step))
	}

	if fields := ValidateStep(s.Variant, step, in); len(fields) > 0 {
		return false, apperr.Validation("invalid step data", fields)
	}

	s.merge(step, in)
	s.markCompleted(step)

	if s.IsFinal(step) {
		return true, nil
	}
	s.Active = s.Steps()[s.indexOf(step)+1]
	return false, nil
}

// Back moves to the previous step keeping the accumulator
func (s *State) Back() error {
	idx := s.indexOf(s.Active)
	if idx <= 0 {
		return apperr.Validation("already at the first step", nil)
	}
	s.Active = s.Steps()[idx-1]
	return nil
}

// Goto jumps to an unlocked step
func (s *State) Goto(step Step) error {
	if s.indexOf(step) < 0 {
		return apperr.Validation(fmt.Sprintf("step %q is not part of the %s wizard", step, s.Variant), nil)
	}
	if !s.Unlocked(step) {
		return apperr.Forbidden(fmt.Sprintf("step %q is locked until the previous steps are completed", step))
	}
	s.Active = step
	return nil
}

// Progress describes the position of the active step
type Progress struct {
	Index   int    `json:"index"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Label   string `json:"label"`
}

func (s *State) Progress() Progress {
	total := len(s.Steps())
	idx := s.indexOf(s.Active)
	if total == 0 || idx < 0 {
		return Progress{}
	}
	return Progress{
		Index:   idx + 1,
		Total:   total,
		Percent: 100 * (idx + 1) / total,
		Label:   fmt.Sprintf("Etapa %d/%d", idx+1, total),
	}
}

func (s *State) merge(step Step, in Data) {
	d := &s.Data

	switch stepKinds[step] {
	case kindCompany:
		d.CNPJ = utils.OnlyDigits(in.CNPJ)
		d.CPF = utils.OnlyDigits(in.CPF)
		d.CategoryID = strings.TrimSpace(in.CategoryID)
		d.Description = strings.TrimSpace(in.Description)
		if name := strings.TrimSpace(in.Name); name != "" {
			d.Name = name
		}
		if s.Variant == VariantTwoStep {
			d.ImageURL = strings.TrimSpace(in.ImageURL)
			d.BannerURL = strings.TrimSpace(in.BannerURL)
		}
	case kindImages:
		d.ImageURL = strings.TrimSpace(in.ImageURL)
		d.BannerURL = strings.TrimSpace(in.BannerURL)
	case kindLocation:
		d.Street = strings.TrimSpace(in.Street)
		d.Number = strings.TrimSpace(in.Number)
		d.Neighborhood = strings.TrimSpace(in.Neighborhood)
		d.City = strings.TrimSpace(in.City)
		d.State = strings.TrimSpace(in.State)
		d.PostalCode = utils.OnlyDigits(in.PostalCode)
	}
}
