package model

import "strings"

// UnclassifiedCategory groups items whose category is empty.
const UnclassifiedCategory = "unclassified"

// Item is one stock-keeping unit on the clinic shelves.
type Item struct {
	BaseModel
	// Seq records insertion order; listings default to it.
	Seq      int64  `gorm:"not null;index" json:"-"`
	Name     string `gorm:"type:varchar(255);not null;index" json:"name"`
	Category string `gorm:"type:varchar(100);index" json:"category"`
	Quantity int    `gorm:"not null;default:0" json:"quantity"`
	Unit     string `gorm:"type:varchar(20)" json:"unit"`
	// ExpiryDate keeps the raw value so that rows imported with a malformed
	// date survive; ParseDate decides whether it counts.
	ExpiryDate  string `gorm:"type:varchar(32)" json:"expiry_date,omitempty"`
	MinQuantity int    `gorm:"not null;default:0" json:"min_quantity"`
	Location    string `gorm:"type:varchar(100)" json:"location"`
}

// DisplayCategory returns the grouping label used for category cards.
func (i *Item) DisplayCategory() string {
	if c := strings.TrimSpace(i.Category); c != "" {
		return c
	}
	return UnclassifiedCategory
}

// ItemView is an Item plus its computed status, as handed to the
// presentation layer.
type ItemView struct {
	Item
	Status          Status `json:"status"`
	DisplayCategory string `json:"display_category"`
}
