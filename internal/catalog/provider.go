// Package catalog serves the searchable, paginated Pokémon catalog and the
// on-demand detail composition.  Summaries are accumulated into an in-memory
// ordered list as upstream pages are consumed; details are memoized with a
// fixed TTL and a bounded, set-order-evicting cache.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Eizen94/pokedex-api/internal/model"
	"github.com/Eizen94/pokedex-api/internal/pokeapi"
)

// searchFetchThreshold is the minimum number of matches a filtered result
// must reach before the provider stops requesting further upstream pages.
const searchFetchThreshold = 5

// Upstream is the slice of the Pokémon API client the provider needs.
type Upstream interface {
	ListPokemon(ctx context.Context, offset, limit int) (*pokeapi.ListResponse, error)
	GetPokemon(ctx context.Context, id int) (*pokeapi.PokemonResource, error)
	GetSpecies(ctx context.Context, id int) (*pokeapi.SpeciesResource, error)
	GetEvolutionChain(ctx context.Context, id int) (*pokeapi.EvolutionChainResource, error)
}

type inflightCall struct {
	done   chan struct{}
	detail *model.PokemonDetail
	err    error
}

// Provider coordinates upstream fetches, the summary list and the detail
// memo.  All methods are safe for concurrent use.
type Provider struct {
	upstream Upstream
	pageSize int
	logger   *slog.Logger

	cache *detailCache

	mu        sync.Mutex
	loaded    []model.PokemonSummary // summaries in upstream order
	seen      map[int]bool           // ids already appended to loaded
	offset    int                    // next upstream list offset to request
	exhausted bool                   // last upstream page was short

	flightMu sync.Mutex
	inflight map[int]*inflightCall

	now func() time.Time // test hook
}

// NewProvider builds a Provider over the given upstream.  pageSize is the
// upstream page size used when loading summaries; detailTTL and detailMax
// control the detail memo.
func NewProvider(upstream Upstream, pageSize int, detailTTL time.Duration, detailMax int, logger *slog.Logger) *Provider {
	if pageSize < 1 {
		pageSize = 20
	}
	return &Provider{
		upstream: upstream,
		pageSize: pageSize,
		logger:   logger,
		cache:    newDetailCache(detailTTL, detailMax),
		seen:     make(map[int]bool),
		inflight: make(map[int]*inflightCall),
		now:      time.Now,
	}
}

// Page returns the summaries in [offset, offset+limit), loading further
// upstream pages as needed.  HasMore is derived from the short-page
// heuristic: once an upstream page comes back smaller than requested, the
// catalog is considered exhausted.
func (p *Provider) Page(ctx context.Context, offset, limit int) (*model.PokemonPage, error) {
	if limit < 1 {
		limit = p.pageSize
	}
	if offset < 0 {
		offset = 0
	}
	if err := p.ensureLoaded(ctx, offset+limit); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	page := &model.PokemonPage{Offset: offset, Limit: limit, Items: []model.PokemonSummary{}}
	if offset < len(p.loaded) {
		end := offset + limit
		if end > len(p.loaded) {
			end = len(p.loaded)
		}
		page.Items = append(page.Items, p.loaded[offset:end]...)
	}
	page.HasMore = !p.exhausted || offset+limit < len(p.loaded)
	return page, nil
}

// Search filters the loaded summaries with Filter.  When the match count is
// below a small threshold and more upstream pages remain, further pages are
// loaded before answering.  Results are capped at limit.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]model.PokemonSummary, error) {
	if limit < 1 {
		limit = p.pageSize
	}

	// Make sure at least one page is loaded before filtering.
	if err := p.ensureLoaded(ctx, p.pageSize); err != nil {
		return nil, err
	}

	for {
		p.mu.Lock()
		matches := Filter(p.loaded, query)
		done := p.exhausted
		loadedLen := len(p.loaded)
		p.mu.Unlock()

		if len(matches) >= searchFetchThreshold || len(matches) >= limit || done {
			if len(matches) > limit {
				matches = matches[:limit]
			}
			return matches, nil
		}
		if err := p.ensureLoaded(ctx, loadedLen+p.pageSize); err != nil {
			return nil, err
		}
	}
}

// Filter is a pure function matching case-insensitive substring on name,
// exact numeric id, or substring on any type tag.  Filtering an already
// filtered set with the same query returns the same set.
func Filter(items []model.PokemonSummary, query string) []model.PokemonSummary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := make([]model.PokemonSummary, len(items))
		copy(out, items)
		return out
	}
	qID, qIsNum := 0, false
	if n, err := strconv.Atoi(q); err == nil {
		qID, qIsNum = n, true
	}

	var out []model.PokemonSummary
	for _, it := range items {
		if qIsNum && it.ID == qID {
			out = append(out, it)
			continue
		}
		if strings.Contains(strings.ToLower(it.Name), q) {
			out = append(out, it)
			continue
		}
		for _, t := range it.Types {
			if strings.Contains(strings.ToLower(t), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// ensureLoaded fetches upstream pages until at least upto summaries are
// loaded or the catalog is exhausted.  A single mutex serializes loading so
// two concurrent requests never fetch the same page twice.  The upstream
// offset is tracked separately from len(loaded): refs with unparseable
// URLs or ids seen on an earlier page (the upstream dataset can shift
// mid-pagination) consume the offset without contributing a summary.
func (p *Provider) ensureLoaded(ctx context.Context, upto int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.loaded) < upto && !p.exhausted {
		list, err := p.upstream.ListPokemon(ctx, p.offset, p.pageSize)
		if err != nil {
			return err
		}
		p.offset += len(list.Results)
		added := 0
		for _, ref := range list.Results {
			id := ref.ID()
			if id == 0 || p.seen[id] {
				continue
			}
			res, err := p.upstream.GetPokemon(ctx, id)
			if err != nil {
				return err
			}
			p.seen[id] = true
			p.loaded = append(p.loaded, summaryFromResource(res))
			added++
		}
		if len(list.Results) < p.pageSize {
			p.exhausted = true
		}
		if list.Count > 0 && p.offset >= list.Count {
			p.exhausted = true
		}
		if added == 0 && len(list.Results) == p.pageSize {
			// A full page that yields nothing new means the upstream is
			// feeding malformed refs or repeating itself.  Stop here
			// instead of requesting pages forever.
			p.logger.Warn("upstream page yielded no new summaries, stopping load",
				"offset", p.offset)
			p.exhausted = true
		}
	}
	return nil
}

// Detail returns the composed detail for id.  Fresh cache entries are served
// without touching the upstream.  Identical in-flight requests are coalesced
// onto one composition; when the owning request is canceled mid-compose, a
// waiter whose own context is still live retries instead of inheriting the
// cancellation.  When the upstream is unreachable, a stale cache entry is
// served instead; a never-cached id surfaces the no-connection
// classification.
func (p *Provider) Detail(ctx context.Context, id int) (*model.PokemonDetail, error) {
	for {
		if d, fresh, ok := p.cache.get(id, p.now()); ok && fresh {
			return d, nil
		}

		p.flightMu.Lock()
		if call, ok := p.inflight[id]; ok {
			p.flightMu.Unlock()
			select {
			case <-call.done:
				if isCanceled(call.err) && ctx.Err() == nil {
					continue
				}
				return call.detail, call.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		call := &inflightCall{done: make(chan struct{})}
		p.inflight[id] = call
		p.flightMu.Unlock()

		detail, err := p.compose(ctx, id)
		if err != nil && pokeapi.IsUnreachable(err) {
			if stale, _, ok := p.cache.get(id, p.now()); ok {
				p.logger.Warn("serving stale detail, upstream unreachable", "pokemon_id", id)
				detail, err = stale, nil
			}
		}
		if err == nil && detail != nil {
			// Stale fallbacks keep their original set time so they expire
			// normally once the upstream recovers.
			if d, _, ok := p.cache.get(id, p.now()); !ok || d != detail {
				p.cache.set(id, detail, p.now())
			}
		}

		// Deregister before signalling so a retrying waiter registers a
		// fresh call instead of re-joining this one.
		call.detail, call.err = detail, err
		p.flightMu.Lock()
		delete(p.inflight, id)
		p.flightMu.Unlock()
		close(call.done)
		return detail, err
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// FlushDetailCache drops every memoized detail entry.
func (p *Provider) FlushDetailCache() {
	p.cache.flush()
}

// CachedDetails reports the current memo entry count.
func (p *Provider) CachedDetails() int {
	return p.cache.len()
}

// compose assembles a detail object from the base, species and
// evolution-chain resources.  Any sub-fetch failure aborts the whole
// composition; partial detail objects are never produced.
func (p *Provider) compose(ctx context.Context, id int) (*model.PokemonDetail, error) {
	base, err := p.upstream.GetPokemon(ctx, id)
	if err != nil {
		return nil, err
	}

	speciesID := base.Species.ID()
	if speciesID == 0 {
		speciesID = base.ID
	}
	sp, err := p.upstream.GetSpecies(ctx, speciesID)
	if err != nil {
		return nil, err
	}

	chain, err := p.upstream.GetEvolutionChain(ctx, sp.EvolutionChainID())
	if err != nil {
		return nil, err
	}

	detail := &model.PokemonDetail{
		PokemonSummary: summaryFromResource(base),
		Description:    sp.FlavorText("en"),
		CaptureRate:    sp.CaptureRate,
		GenderRate:     sp.GenderRate,
		Generation:     sp.Generation.ID(),
		Evolution:      flattenChain(chain.Chain),
	}
	for _, a := range base.Abilities {
		detail.Abilities = append(detail.Abilities, a.Ability.Name)
	}
	for _, m := range base.Moves {
		detail.Moves = append(detail.Moves, m.Move.Name)
	}
	for _, g := range sp.EggGroups {
		detail.EggGroups = append(detail.EggGroups, g.Name)
	}
	if sp.Habitat != nil {
		detail.Habitat = sp.Habitat.Name
	}
	return detail, nil
}

// summaryFromResource maps the upstream base resource onto the immutable
// summary model.
func summaryFromResource(res *pokeapi.PokemonResource) model.PokemonSummary {
	s := model.PokemonSummary{
		ID:         res.ID,
		Name:       res.Name,
		ArtworkURL: res.ArtworkURL(),
		Height:     res.Height,
		Weight:     res.Weight,
	}
	for _, t := range res.Types {
		s.Types = append(s.Types, t.Type.Name)
	}
	for _, st := range res.Stats {
		switch st.Stat.Name {
		case "hp":
			s.Stats.HP = st.BaseStat
		case "attack":
			s.Stats.Attack = st.BaseStat
		case "defense":
			s.Stats.Defense = st.BaseStat
		case "special-attack":
			s.Stats.SpecialAttack = st.BaseStat
		case "special-defense":
			s.Stats.SpecialDefense = st.BaseStat
		case "speed":
			s.Stats.Speed = st.BaseStat
		}
	}
	return s
}

// flattenChain walks the upstream evolution tree in pre-order and emits one
// stage per species.  Branching chains (e.g. multiple stones) keep upstream
// order; each stage records the first trigger that produces it.
func flattenChain(link pokeapi.ChainLink) []model.EvolutionStage {
	var stages []model.EvolutionStage
	var walk func(l pokeapi.ChainLink)
	walk = func(l pokeapi.ChainLink) {
		stage := model.EvolutionStage{
			SpeciesName: l.Species.Name,
			SpeciesID:   l.Species.ID(),
		}
		if len(l.EvolutionDetails) > 0 {
			d := l.EvolutionDetails[0]
			stage.Trigger = d.Trigger.Name
			if d.MinLevel != nil {
				stage.MinLevel = *d.MinLevel
			}
			if d.Item != nil {
				stage.Item = d.Item.Name
			}
		}
		stages = append(stages, stage)
		for _, next := range l.EvolvesTo {
			walk(next)
		}
	}
	walk(link)
	return stages
}
