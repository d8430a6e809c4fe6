package models

import "gorm.io/gorm"

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&BlogPost{},
		&Like{},
		&Comment{},
		&FailedLoginAttempt{},
	}
}

// tables maps table names to their model for the column report.
func tables() map[string]interface{} {
	return map[string]interface{}{
		"users":                 &User{},
		"tags":                  &Tag{},
		"blog_posts":            &BlogPost{},
		"likes":                 &Like{},
		"comments":              &Comment{},
		"failed_login_attempts": &FailedLoginAttempt{},
	}
}

// Migrate creates or updates the schema for every model, including the blog_post_tags join table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
