package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Favorite pairs a user with a Pokémon in the `favorites` collection.  The
// pair (user_id, pokemon_id) is unique; Nickname and Note are optional
// user-supplied fields.  Entries are created and deleted only on explicit
// user action, never expired automatically.
type Favorite struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    uint64             `bson:"user_id" json:"user_id"`
	PokemonID int                `bson:"pokemon_id" json:"pokemon_id"`
	Nickname  string             `bson:"nickname,omitempty" json:"nickname,omitempty"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	AddedAt   primitive.DateTime `bson:"added_at" json:"added_at"`
}
