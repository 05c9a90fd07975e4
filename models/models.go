package models

// All returns every model in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{&User{}, &Group{}, &Post{}, &Comment{}, &Follow{}, &Like{}}
}
