package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/microblog/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPostNotFound is returned when no post matches the given id, including
// ids that are not well-formed ObjectIDs.
var ErrPostNotFound = errors.New("post not found")

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostsByAuthorID(ctx context.Context, authorID uint) ([]models.Post, error)
	GetPostsByAuthorIDs(ctx context.Context, authorIDs []uint) ([]models.Post, error)
	GetPostsByGroupID(ctx context.Context, groupID uint) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetAllPosts retrieves all posts, newest first
func (r *MongoPostRepository) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	return r.findPosts(ctx, bson.D{})
}

// GetPostsByAuthorID retrieves one author's posts, newest first
func (r *MongoPostRepository) GetPostsByAuthorID(ctx context.Context, authorID uint) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"author_id": authorID})
}

// GetPostsByAuthorIDs retrieves the posts of a set of authors, newest first
func (r *MongoPostRepository) GetPostsByAuthorIDs(ctx context.Context, authorIDs []uint) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.findPosts(ctx, bson.M{"author_id": bson.M{"$in": authorIDs}})
}

// GetPostsByGroupID retrieves a group's posts, newest first
func (r *MongoPostRepository) GetPostsByGroupID(ctx context.Context, groupID uint) ([]models.Post, error) {
	return r.findPosts(ctx, bson.M{"group_id": groupID})
}

func (r *MongoPostRepository) findPosts(ctx context.Context, filter interface{}) ([]models.Post, error) {
	posts := []models.Post{}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost updates the writable fields of an existing post in MongoDB.
// Author and creation timestamp are never touched.
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"text":       post.Text,
			"group_id":   post.GroupID,
			"image_url":  post.ImageURL,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	return nil
}
