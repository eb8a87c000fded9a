package model

// StatBlock holds the six named base stats of a Pokémon.
type StatBlock struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"special_attack"`
	SpecialDefense int `json:"special_defense"`
	Speed          int `json:"speed"`
}

// PokemonSummary is the list-level view of a Pokémon.  It is built once from
// an upstream API response and never mutated afterwards; identity is the
// integer ID.
type PokemonSummary struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Types      []string  `json:"types"`
	ArtworkURL string    `json:"artwork_url"`
	Height     int       `json:"height"`
	Weight     int       `json:"weight"`
	Stats      StatBlock `json:"stats"`
}

// Ability names a Pokémon ability and whether it is hidden.
type Ability struct {
	Name     string `json:"name"`
	IsHidden bool   `json:"is_hidden"`
}

// Move names a move a Pokémon can learn.
type Move struct {
	Name string `json:"name"`
}

// EvolutionStage is one step of an evolution chain.  Trigger describes the
// condition that causes the evolution into this stage (level-up, item, trade,
// ...); MinLevel is zero when the trigger is not level-based.
type EvolutionStage struct {
	SpeciesName string `json:"species_name"`
	SpeciesID   int    `json:"species_id"`
	Trigger     string `json:"trigger,omitempty"`
	MinLevel    int    `json:"min_level,omitempty"`
	Item        string `json:"item,omitempty"`
}

// PokemonDetail is the full detail view, composed from three upstream
// resources: the base pokemon resource, the species resource and the
// evolution-chain resource.  Composition is all-or-nothing: a detail object
// either carries every section or is never returned at all.
type PokemonDetail struct {
	PokemonSummary

	Abilities   []string         `json:"abilities"`
	Moves       []string         `json:"moves"`
	Evolution   []EvolutionStage `json:"evolution_chain"`
	Description string           `json:"description"`
	CaptureRate int              `json:"capture_rate"`
	EggGroups   []string         `json:"egg_groups"`
	// GenderRate follows the upstream encoding: -1 genderless, otherwise
	// female chance in eighths (0..8).
	GenderRate int    `json:"gender_rate"`
	Generation int    `json:"generation"`
	Habitat    string `json:"habitat,omitempty"`
}

// PokemonPage is one page of catalog results plus the end-of-data flag.
// HasMore uses the short-page heuristic: a page shorter than the requested
// limit means the catalog is exhausted.
type PokemonPage struct {
	Items   []PokemonSummary `json:"items"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	HasMore bool             `json:"has_more"`
}
