package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "AVAILABLE"
	PropertyStatusOccupied  PropertyStatus = "OCCUPIED"
	PropertyStatusInactive  PropertyStatus = "INACTIVE"
)

type PropertyType string

const (
	PropertyTypeHouse      PropertyType = "HOUSE"
	PropertyTypeApartment  PropertyType = "APARTMENT"
	PropertyTypeCommercial PropertyType = "COMMERCIAL"
	PropertyTypeLand       PropertyType = "LAND"
)

type Property struct {
	ID         int32           `json:"id"`
	LandlordID int32           `json:"landlord_id"`
	Code       string          `json:"code"` // unique business code
	Type       PropertyType    `json:"type"`
	Status     PropertyStatus  `json:"status"`
	Address    Address         `json:"address"`
	CondoFee   decimal.Decimal `json:"condo_fee"` // monthly, zero when not applicable
	IsActive   bool            `json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
