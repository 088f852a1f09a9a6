package models

// Tag is a catalog label attached to recipes.
type Tag struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex;type:varchar(200);not null" validate:"required,max=200"`
	Color string `json:"color" gorm:"uniqueIndex;type:varchar(7);not null" validate:"required,hexcolor6"`
	Slug  string `json:"slug" gorm:"uniqueIndex;type:varchar(200);not null" validate:"required,max=200"`
}
