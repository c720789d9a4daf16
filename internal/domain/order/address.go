package order

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = validator.New()

// ShippingAddress is where an order is delivered.
type ShippingAddress struct {
	RecipientName string
	Email         string
	Phone         string
	Line1         string
	Line2         string
	City          string
	PostalCode    string
	Country       string
}

// Normalize trims every field and upper-cases the country code.
func (a ShippingAddress) Normalize() ShippingAddress {
	return ShippingAddress{
		RecipientName: strings.TrimSpace(a.RecipientName),
		Email:         strings.TrimSpace(a.Email),
		Phone:         strings.TrimSpace(a.Phone),
		Line1:         strings.TrimSpace(a.Line1),
		Line2:         strings.TrimSpace(a.Line2),
		City:          strings.TrimSpace(a.City),
		PostalCode:    strings.TrimSpace(a.PostalCode),
		Country:       strings.ToUpper(strings.TrimSpace(a.Country)),
	}
}

// Validate returns one message per missing or malformed field.
func (a ShippingAddress) Validate() []string {
	var msgs []string
	required := []struct{ name, value string }{
		{"recipient name", a.RecipientName},
		{"address line 1", a.Line1},
		{"city", a.City},
		{"postal code", a.PostalCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			msgs = append(msgs, "shipping address "+f.name+" is required")
		}
	}
	if a.Email != "" && fieldValidator.Var(a.Email, "email") != nil {
		msgs = append(msgs, "shipping address email is invalid")
	}
	if a.Country != "" && fieldValidator.Var(a.Country, "iso3166_1_alpha2") != nil {
		msgs = append(msgs, "shipping address country must be an ISO 3166-1 alpha-2 code")
	}
	return msgs
}
