package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Eizen94/pokedex-api/internal/model"
)

// ProfileRepo stores the document-side mirror of a user: display data, the
// settings bag and activity stamps.  One document per user, keyed by
// user_id.
type ProfileRepo struct{ col *mongo.Collection }

func NewProfileRepo(db *mongo.Database) *ProfileRepo {
	return &ProfileRepo{col: db.Collection("profiles")}
}

// Create mirrors a freshly registered user into the profiles collection.
func (r *ProfileRepo) Create(ctx context.Context, userID uint64, email, displayName string) (model.Profile, error) {
	now := primitive.NewDateTimeFromTime(time.Now().UTC())
	p := model.Profile{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Email:       email,
		DisplayName: displayName,
		Settings:    model.DefaultSettings(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.col.InsertOne(ctx, p); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// GetByUserID fetches the profile document for a user.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (model.Profile, error) {
	var p model.Profile
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// UpdateDisplay replaces display name and photo URL, returning the updated
// document.
func (r *ProfileRepo) UpdateDisplay(ctx context.Context, userID uint64, displayName, photoURL string) (model.Profile, error) {
	update := bson.M{"$set": bson.M{
		"display_name": displayName,
		"photo_url":    photoURL,
		"updated_at":   primitive.NewDateTimeFromTime(time.Now().UTC()),
	}}
	return r.findAndUpdate(ctx, userID, update)
}

// UpdateSettings replaces the whole settings bag, returning the updated
// document.
func (r *ProfileRepo) UpdateSettings(ctx context.Context, userID uint64, s model.Settings) (model.Profile, error) {
	update := bson.M{"$set": bson.M{
		"settings":   s,
		"updated_at": primitive.NewDateTimeFromTime(time.Now().UTC()),
	}}
	return r.findAndUpdate(ctx, userID, update)
}

// StampLastLogin records a successful sign-in on the profile document.
func (r *ProfileRepo) StampLastLogin(ctx context.Context, userID uint64) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{
		"$set": bson.M{"last_login_at": primitive.NewDateTimeFromTime(time.Now().UTC())},
	})
	return err
}

// StampLastSync records a favorites mutation on the profile document.
func (r *ProfileRepo) StampLastSync(ctx context.Context, userID uint64) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{
		"$set": bson.M{"last_sync_at": primitive.NewDateTimeFromTime(time.Now().UTC())},
	})
	return err
}

func (r *ProfileRepo) findAndUpdate(ctx context.Context, userID uint64, update bson.M) (model.Profile, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p model.Profile
	err := r.col.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}
