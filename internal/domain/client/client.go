// Package client describes the customer a quote or invoice is addressed to.
package client

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"renodevis/internal/core/apperror"
)

// DefaultRegion is used to read phone numbers written without a country code.
const DefaultRegion = "FR"

// Info is the customer block printed on quotes and invoices.
type Info struct {
	Nom        string `json:"nom" db:"client_nom"`
	Prenom     string `json:"prenom,omitempty" db:"client_prenom"`
	Adresse    string `json:"adresse,omitempty" db:"client_adresse"`
	CodePostal string `json:"code_postal,omitempty" db:"client_code_postal"`
	Ville      string `json:"ville,omitempty" db:"client_ville"`
	Telephone  string `json:"telephone,omitempty" db:"client_telephone"`
	Email      string `json:"email,omitempty" db:"client_email"`
}

// Validate requires a customer name.
func (c Info) Validate() error {
	if strings.TrimSpace(c.Nom) == "" {
		return apperror.NewValidation("Veuillez saisir le nom du client").
			WithDetail("field", "client.nom")
	}
	return nil
}

// Normalized trims every field, lower-cases the email and formats the phone
// number as E.164 when it parses. Unparseable numbers are kept as typed.
func (c Info) Normalized() Info {
	out := Info{
		Nom:        strings.TrimSpace(c.Nom),
		Prenom:     strings.TrimSpace(c.Prenom),
		Adresse:    strings.TrimSpace(c.Adresse),
		CodePostal: strings.TrimSpace(c.CodePostal),
		Ville:      strings.TrimSpace(c.Ville),
		Telephone:  NormalizePhone(c.Telephone),
		Email:      strings.ToLower(strings.TrimSpace(c.Email)),
	}
	return out
}

// DisplayName is "Prenom Nom", or just Nom.
func (c Info) DisplayName() string {
	return strings.TrimSpace(c.Prenom + " " + c.Nom)
}

// NormalizePhone formats a phone number to E.164. If parsing fails, it
// returns the trimmed input.
func NormalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, DefaultRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}
