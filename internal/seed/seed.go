// Package seed loads development fixtures so a fresh instance has
// something to browse.
package seed

import (
	"context"
	"log"

	"github.com/anonto42/microblog/backend/internal/models"
	"github.com/anonto42/microblog/backend/internal/repositories"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDatabase creates sample users, groups and posts. It is a no-op when
// users already exist.
func SeedDatabase(db *gorm.DB, postRepo repositories.PostRepository) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Seed skipped: users already present.")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []models.User{
		{Username: "alice", PasswordHash: string(hash)},
		{Username: "bob", PasswordHash: string(hash)},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	groups := []models.Group{
		{Title: "General", Slug: "general", Description: "Anything goes."},
		{Title: "Travel", Slug: "travel", Description: "Trips and places."},
	}
	if err := db.Create(&groups).Error; err != nil {
		return err
	}

	ctx := context.Background()
	posts := []models.Post{
		{Text: "First post on a fresh instance.", AuthorID: users[0].ID, GroupID: &groups[0].ID},
		{Text: "Packing for the mountains.", AuthorID: users[1].ID, GroupID: &groups[1].ID},
		{Text: "No group on this one.", AuthorID: users[0].ID},
	}
	for i := range posts {
		if err := postRepo.CreatePost(ctx, &posts[i]); err != nil {
			return err
		}
	}

	log.Printf("Seeded %d users, %d groups, %d posts.", len(users), len(groups), len(posts))
	return nil
}
