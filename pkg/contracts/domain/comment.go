package domain

import "time"

// SubjectType distinguishes what a comment is attached to.
type SubjectType string

const (
	SubjectPurchaseOrder SubjectType = "PurchaseOrder"
	SubjectContract      SubjectType = "Contract"
)

// Comment is an append-only annotation on a purchase order or contract.
type Comment struct {
	SubjectID   string      `json:"subject_id" validate:"required"`
	SubjectType SubjectType `json:"subject_type" validate:"required,oneof=PurchaseOrder Contract"`
	Text        string      `json:"text" validate:"required"`
	Author      string      `json:"author" validate:"required"`
	CreatedAt   time.Time   `json:"created_at"`
}
