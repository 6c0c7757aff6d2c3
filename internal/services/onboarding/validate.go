package onboarding

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

const minDescriptionLength = 20

// ValidateStep returns the field errors of the data submitted for step.
// An empty map means the step may be completed.
func ValidateStep(variant Variant, step Step, in Data) map[string]string {
	fields := map[string]string{}

	switch stepKinds[step] {
	case kindCompany:
		if !utils.ValidCNPJ(utils.OnlyDigits(in.CNPJ)) {
			fields["cnpj"] = "invalid CNPJ"
		}
		if !utils.ValidCPF(utils.OnlyDigits(in.CPF)) {
			fields["cpf"] = "invalid CPF"
		}
		if strings.TrimSpace(in.CategoryID) == "" {
			fields["category_id"] = "category is required"
		} else if _, err := uuid.Parse(strings.TrimSpace(in.CategoryID)); err != nil {
			fields["category_id"] = "invalid category"
		}
		if utf8.RuneCountInString(strings.TrimSpace(in.Description)) < minDescriptionLength {
			fields["description"] = "description must have at least 20 characters"
		}
		if variant == VariantTwoStep {
			requireImages(fields, in)
		}

	case kindImages:
		requireImages(fields, in)

	case kindLocation:
		required(fields, "street", in.Street)
		required(fields, "number", in.Number)
		required(fields, "neighborhood", in.Neighborhood)
		required(fields, "city", in.City)
		required(fields, "state", in.State)
		if !utils.ValidCEP(utils.OnlyDigits(in.PostalCode)) {
			fields["postal_code"] = "postal code must have 8 digits"
		}
	}

	return fields
}

func requireImages(fields map[string]string, in Data) {
	if strings.TrimSpace(in.ImageURL) == "" {
		fields["image_url"] = "store logo is required"
	}
	if strings.TrimSpace(in.BannerURL) == "" {
		fields["banner_url"] = "store banner is required"
	}
}

func required(fields map[string]string, name, value string) {
	if strings.TrimSpace(value) == "" {
		fields[name] = name + " is required"
	}
}

// cnpjDigits returns the unmasked cnpj when it has the right length
func cnpjDigits(cnpj string) string {
	digits := utils.OnlyDigits(cnpj)
	if len(digits) != 14 {
		return ""
	}
	return digits
}
