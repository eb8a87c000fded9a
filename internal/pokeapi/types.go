package pokeapi

import (
	"strconv"
	"strings"
)

// NamedRef is the upstream's ubiquitous {name, url} pair.
type NamedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID extracts the trailing numeric path segment of the referenced resource
// URL, e.g. ".../pokemon-species/133/" -> 133.  Returns 0 when the URL does
// not end in a number.
func (r NamedRef) ID() int {
	trimmed := strings.TrimSuffix(r.URL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

// ListResponse matches /pokemon?offset=&limit=.
type ListResponse struct {
	Count   int        `json:"count"`
	Results []NamedRef `json:"results"`
}

// PokemonResource matches /pokemon/{id}.
type PokemonResource struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		Other        struct {
			OfficialArtwork struct {
				FrontDefault string `json:"front_default"`
			} `json:"official-artwork"`
		} `json:"other"`
	} `json:"sprites"`
	Types []struct {
		Slot int      `json:"slot"`
		Type NamedRef `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int      `json:"base_stat"`
		Stat     NamedRef `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		Ability  NamedRef `json:"ability"`
		IsHidden bool     `json:"is_hidden"`
	} `json:"abilities"`
	Moves []struct {
		Move NamedRef `json:"move"`
	} `json:"moves"`
	Species NamedRef `json:"species"`
}

// ArtworkURL prefers the official artwork and falls back to the default
// front sprite.
func (p *PokemonResource) ArtworkURL() string {
	if u := p.Sprites.Other.OfficialArtwork.FrontDefault; u != "" {
		return u
	}
	return p.Sprites.FrontDefault
}

// SpeciesResource matches /pokemon-species/{id}.
type SpeciesResource struct {
	ID                int `json:"id"`
	CaptureRate       int `json:"capture_rate"`
	GenderRate        int `json:"gender_rate"`
	FlavorTextEntries []struct {
		FlavorText string   `json:"flavor_text"`
		Language   NamedRef `json:"language"`
	} `json:"flavor_text_entries"`
	EggGroups      []NamedRef `json:"egg_groups"`
	Generation     NamedRef   `json:"generation"`
	Habitat        *NamedRef  `json:"habitat"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

// FlavorText returns the first flavor text in the given language with
// upstream control characters normalized to spaces.
func (s *SpeciesResource) FlavorText(lang string) string {
	for _, e := range s.FlavorTextEntries {
		if e.Language.Name == lang {
			replacer := strings.NewReplacer("\n", " ", "\f", " ", "\r", " ")
			return replacer.Replace(e.FlavorText)
		}
	}
	return ""
}

// EvolutionChainID extracts the numeric chain id from the species resource.
func (s *SpeciesResource) EvolutionChainID() int {
	return NamedRef{URL: s.EvolutionChain.URL}.ID()
}

// ChainLink is one node of the upstream evolution tree.
type ChainLink struct {
	Species          NamedRef `json:"species"`
	EvolutionDetails []struct {
		Trigger  NamedRef  `json:"trigger"`
		MinLevel *int      `json:"min_level"`
		Item     *NamedRef `json:"item"`
	} `json:"evolution_details"`
	EvolvesTo []ChainLink `json:"evolves_to"`
}

// EvolutionChainResource matches /evolution-chain/{id}.
type EvolutionChainResource struct {
	ID    int       `json:"id"`
	Chain ChainLink `json:"chain"`
}
