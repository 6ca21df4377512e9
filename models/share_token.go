package models

import "gorm.io/gorm"

const (
	ShareTypeDish = "DISH"
	ShareTypeMenu = "MENU"
)

// A 6-char import code pointing at a dish or menu, so other users can
// copy it into their own library. Parties reuse their own ShareCode and
// never get a ShareToken row.
type ShareToken struct {
	gorm.Model
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Code   string `gorm:"uniqueIndex;not null" json:"code"`
	Type   string `gorm:"not null" json:"type"`
	RefID  uint   `gorm:"not null" json:"ref_id"`
}
