package domain

import "time"

type PartyKind string

const (
	PartyKindPerson  PartyKind = "PERSON"
	PartyKindCompany PartyKind = "COMPANY"
)

// Address is embedded in every business party and in Property.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
}

type Landlord struct {
	ID        int32     `json:"id"`
	Kind      PartyKind `json:"kind"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"` // CPF or CNPJ depending on Kind
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   Address   `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
