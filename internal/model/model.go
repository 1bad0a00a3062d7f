// Package model holds the persisted entities.
package model

// All lists every entity for schema migration, parents before children.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Friendship{},
		&Blog{},
		&Review{},
		&Reaction{},
	}
}
