package models

// All lists every persisted model in dependency order, for AutoMigrate
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&Follow{},
		&Favourite{},
		&Cart{},
	}
}
