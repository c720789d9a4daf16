package models

import "time"

// OrderSequenceModel holds the last issued order sequence for one key,
// normally an "ORD-YYYYMMDD" prefix.
type OrderSequenceModel struct {
	Key       string    `gorm:"column:seq_key;type:varchar(32);primaryKey"`
	Value     int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderSequenceModel) TableName() string {
	return "order_sequences"
}
