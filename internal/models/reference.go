package models

// Ingredient is immutable reference data
type Ingredient struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:200;not null;index"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:50;not null"`
}

type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:50;uniqueIndex;not null"`
	Color string `json:"color" gorm:"size:50;uniqueIndex;not null"`
	Slug  string `json:"slug" gorm:"size:50;uniqueIndex;not null"`
}
