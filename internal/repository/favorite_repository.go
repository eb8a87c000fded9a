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

// FavoriteRepo stores per-user favorites in the `favorites` collection.  The
// (user_id, pokemon_id) pair is unique; every query carries the user id so
// one user can never touch another's entries.
type FavoriteRepo struct{ col *mongo.Collection }

func NewFavoriteRepo(db *mongo.Database) *FavoriteRepo {
	return &FavoriteRepo{col: db.Collection("favorites")}
}

// EnsureIndexes creates the compound unique index that backs the
// (user_id, pokemon_id) constraint.  Add relies on it: the insert itself is
// the uniqueness check, so two racing adds for the same pair can never both
// land.
func (r *FavoriteRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "pokemon_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Add inserts a favorite for the user.  Adding an already favorited Pokémon
// returns ErrDuplicate, surfaced by the unique index on
// (user_id, pokemon_id).
func (r *FavoriteRepo) Add(ctx context.Context, userID uint64, pokemonID int, nickname, note string) (model.Favorite, error) {
	fav := model.Favorite{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PokemonID: pokemonID,
		Nickname:  nickname,
		Note:      note,
		AddedAt:   primitive.NewDateTimeFromTime(time.Now().UTC()),
	}
	if _, err := r.col.InsertOne(ctx, fav); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Favorite{}, ErrDuplicate
		}
		return model.Favorite{}, err
	}
	return fav, nil
}

// Remove deletes the user's favorite for pokemonID.  Removing an absent
// entry returns ErrNotFound.
func (r *FavoriteRepo) Remove(ctx context.Context, userID uint64, pokemonID int) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"user_id": userID, "pokemon_id": pokemonID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateNote replaces the nickname/note of an existing favorite and returns
// the updated document.
func (r *FavoriteRepo) UpdateNote(ctx context.Context, userID uint64, pokemonID int, nickname, note string) (model.Favorite, error) {
	filter := bson.M{"user_id": userID, "pokemon_id": pokemonID}
	update := bson.M{"$set": bson.M{"nickname": nickname, "note": note}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var fav model.Favorite
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&fav)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Favorite{}, ErrNotFound
	}
	if err != nil {
		return model.Favorite{}, err
	}
	return fav, nil
}

// ListByUser returns the user's favorites ordered by added time.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	favorites := []model.Favorite{}
	for cur.Next(ctx) {
		var fav model.Favorite
		if err := cur.Decode(&fav); err != nil {
			return nil, err
		}
		favorites = append(favorites, fav)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return favorites, nil
}
