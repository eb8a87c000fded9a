// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into the favorites audit log.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteActivityEvent is published whenever a user adds or removes a
// favorite.  It carries enough information for downstream consumers to log
// or trigger notifications without querying the document store.
type FavoriteActivityEvent struct {
	EventID    string `json:"event_id"`
	Action     string `json:"action"` // "added" | "removed"
	UserID     uint64 `json:"user_id"`
	PokemonID  int    `json:"pokemon_id"`
	Nickname   string `json:"nickname,omitempty"`
	OccurredAt string `json:"occurred_at"` // RFC 3339 UTC
}

// NewFavoriteActivityEvent stamps a fresh event id and occurrence time.
func NewFavoriteActivityEvent(action string, userID uint64, pokemonID int, nickname string) FavoriteActivityEvent {
	return FavoriteActivityEvent{
		EventID:    uuid.NewString(),
		Action:     action,
		UserID:     userID,
		PokemonID:  pokemonID,
		Nickname:   nickname,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
