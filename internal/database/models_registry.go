package database

import "chirp/internal/models"

// PersistentModels returns every model that maps to a database table, in
// dependency order (referenced tables first).
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tweet{},
		&models.Like{},
		&models.Retweet{},
		&models.Bookmark{},
		&models.Follow{},
		&models.Comment{},
		&models.Notification{},
		&models.Message{},
	}
}
