package models

import "time"

const (
	PASS_VALID         = "valid"
	PASS_EXPIRED       = "expired"
	PASS_REVOKED       = "revoked"
	PASS_NOT_YET_VALID = "not_yet_valid"
	PASS_NOT_FOUND     = "not_found"
)

// ProductionBatch is a bottled lot that carries a QR code on every box.
type ProductionBatch struct {
	ID             int64     `json:"id"`
	BatchCode      string    `json:"batch_code"`
	ProductID      int64     `json:"product_id" validate:"required,gt=0"`
	ProductName    string    `json:"product_name,omitempty"`
	ManufacturedOn time.Time `json:"manufactured_on"`
	ExpiresOn      time.Time `json:"expires_on"`
	Boxes          int64     `json:"boxes" validate:"gt=0"`
	CreatedAt      time.Time `json:"created_at"`
}

type BatchVerification struct {
	Authentic bool             `json:"authentic"`
	Expired   bool             `json:"expired"`
	Message   string           `json:"message"`
	Batch     *ProductionBatch `json:"batch,omitempty"`
}

// VisitorPass covers visitor passes and issued documents checked at the gate.
type VisitorPass struct {
	ID           int64     `json:"id"`
	Token        string    `json:"token"`
	HolderName   string    `json:"holder_name" validate:"required"`
	HolderMobile string    `json:"holder_mobile"`
	Purpose      string    `json:"purpose" validate:"required"`
	ValidFrom    time.Time `json:"valid_from"`
	ValidUntil   time.Time `json:"valid_until"`
	Revoked      bool      `json:"revoked"`
	IssuedBy     int64     `json:"issued_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type PassVerification struct {
	Status string       `json:"status"`
	Pass   *VisitorPass `json:"pass,omitempty"`
}
