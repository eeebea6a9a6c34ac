package models

// OptionModel is a generic key-value row. The section collection is stored
// here as one JSON blob when the mysql storage driver is selected.
type OptionModel struct {
	ID    uint   `json:"-"     gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name"  gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"`
}

func (OptionModel) TableName() string { return "options" }
