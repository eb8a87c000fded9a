package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Settings is the small per-user settings bag persisted alongside the
// profile document.  Values are validated at the handler boundary; the
// document store itself enforces nothing.
type Settings struct {
	Theme         string `bson:"theme" json:"theme"`                   // light | dark | system
	Language      string `bson:"language" json:"language"`             // BCP 47 tag, e.g. "en"
	Notifications bool   `bson:"notifications" json:"notifications"`   // push notifications on/off
	NewsUpdates   bool   `bson:"news_updates" json:"news_updates"`     // catalog news opt-in
}

// Profile mirrors the identity record into the `profiles` collection so the
// settings bag and activity stamps live next to the rest of the user's
// documents.  UserID references users.id in the identity store.
type Profile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID      uint64             `bson:"user_id" json:"user_id"`
	Email       string             `bson:"email" json:"email"`
	DisplayName string             `bson:"display_name" json:"display_name"`
	PhotoURL    string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Settings    Settings           `bson:"settings" json:"settings"`
	LastLoginAt primitive.DateTime `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	LastSyncAt  primitive.DateTime `bson:"last_sync_at,omitempty" json:"last_sync_at,omitempty"`
	CreatedAt   primitive.DateTime `bson:"created_at" json:"created_at"`
	UpdatedAt   primitive.DateTime `bson:"updated_at" json:"updated_at"`
}

// DefaultSettings returns the settings bag applied to a freshly mirrored
// profile.
func DefaultSettings() Settings {
	return Settings{Theme: "system", Language: "en", Notifications: true, NewsUpdates: false}
}
