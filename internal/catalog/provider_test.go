package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eizen94/pokedex-api/internal/model"
	"github.com/Eizen94/pokedex-api/internal/pokeapi"
)

// fakeUpstream serves a fixed dataset of sequential ids and counts every
// call so tests can assert how often the network was hit.
type fakeUpstream struct {
	mu          sync.Mutex
	total       int
	unreachable bool
	gate        chan struct{} // when set, GetPokemon blocks until closed

	listCalls    int
	pokemonCalls int
	speciesCalls int
	chainCalls   int
}

func (f *fakeUpstream) fail() error {
	return fmt.Errorf("%w: dial tcp: no route to host", pokeapi.ErrNoConnection)
}

func (f *fakeUpstream) ListPokemon(ctx context.Context, offset, limit int) (*pokeapi.ListResponse, error) {
	f.mu.Lock()
	f.listCalls++
	down := f.unreachable
	f.mu.Unlock()
	if down {
		return nil, f.fail()
	}
	resp := &pokeapi.ListResponse{Count: f.total}
	for i := offset; i < offset+limit && i < f.total; i++ {
		id := i + 1
		resp.Results = append(resp.Results, pokeapi.NamedRef{
			Name: fmt.Sprintf("poke-%d", id),
			URL:  fmt.Sprintf("https://pokeapi.test/api/v2/pokemon/%d/", id),
		})
	}
	return resp, nil
}

func (f *fakeUpstream) GetPokemon(ctx context.Context, id int) (*pokeapi.PokemonResource, error) {
	f.mu.Lock()
	f.pokemonCalls++
	down := f.unreachable
	gate := f.gate
	f.mu.Unlock()
	if down {
		return nil, f.fail()
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	typ := "fire"
	if id%2 == 0 {
		typ = "grass"
	}
	raw := fmt.Sprintf(`{
		"id": %d, "name": "poke-%d", "height": 7, "weight": 69,
		"sprites": {"front_default": "https://img.test/%d.png"},
		"types": [{"slot": 1, "type": {"name": "%s", "url": ""}}],
		"stats": [
			{"base_stat": 45, "stat": {"name": "hp", "url": ""}},
			{"base_stat": 49, "stat": {"name": "attack", "url": ""}},
			{"base_stat": 65, "stat": {"name": "speed", "url": ""}}
		],
		"abilities": [{"ability": {"name": "overgrow", "url": ""}, "is_hidden": false}],
		"moves": [{"move": {"name": "tackle", "url": ""}}],
		"species": {"name": "poke-%d", "url": "https://pokeapi.test/api/v2/pokemon-species/%d/"}
	}`, id, id, id, typ, id, id)
	var res pokeapi.PokemonResource
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (f *fakeUpstream) GetSpecies(ctx context.Context, id int) (*pokeapi.SpeciesResource, error) {
	f.mu.Lock()
	f.speciesCalls++
	down := f.unreachable
	f.mu.Unlock()
	if down {
		return nil, f.fail()
	}
	raw := fmt.Sprintf(`{
		"id": %d, "capture_rate": 45, "gender_rate": 1,
		"flavor_text_entries": [
			{"flavor_text": "Ein seltsames Wesen.", "language": {"name": "de", "url": ""}},
			{"flavor_text": "A strange seed was\nplanted on its back.", "language": {"name": "en", "url": ""}}
		],
		"egg_groups": [{"name": "monster", "url": ""}],
		"generation": {"name": "generation-i", "url": "https://pokeapi.test/api/v2/generation/1/"},
		"habitat": {"name": "grassland", "url": ""},
		"evolution_chain": {"url": "https://pokeapi.test/api/v2/evolution-chain/%d/"}
	}`, id, id)
	var res pokeapi.SpeciesResource
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (f *fakeUpstream) GetEvolutionChain(ctx context.Context, id int) (*pokeapi.EvolutionChainResource, error) {
	f.mu.Lock()
	f.chainCalls++
	down := f.unreachable
	f.mu.Unlock()
	if down {
		return nil, f.fail()
	}
	raw := fmt.Sprintf(`{
		"id": %d,
		"chain": {
			"species": {"name": "poke-%d", "url": "https://pokeapi.test/api/v2/pokemon-species/%d/"},
			"evolution_details": [],
			"evolves_to": [{
				"species": {"name": "poke-%d-mid", "url": "https://pokeapi.test/api/v2/pokemon-species/%d/"},
				"evolution_details": [{"trigger": {"name": "level-up", "url": ""}, "min_level": 16, "item": null}],
				"evolves_to": []
			}]
		}
	}`, id, id, id, id, id+1)
	var res pokeapi.EvolutionChainResource
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func newTestProvider(up *fakeUpstream) *Provider {
	return NewProvider(up, 20, 24*time.Hour, 100, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPageNoDuplicatesAndHasMore(t *testing.T) {
	up := &fakeUpstream{total: 40}
	p := newTestProvider(up)
	ctx := context.Background()

	first, err := p.Page(ctx, 0, 20)
	require.NoError(t, err)
	assert.Len(t, first.Items, 20)
	assert.True(t, first.HasMore)

	second, err := p.Page(ctx, 20, 20)
	require.NoError(t, err)
	assert.Len(t, second.Items, 20)
	assert.False(t, second.HasMore, "40-item dataset is exhausted after two pages of 20")

	seen := map[int]bool{}
	for _, it := range append(first.Items, second.Items...) {
		assert.False(t, seen[it.ID], "duplicate id %d across pages", it.ID)
		seen[it.ID] = true
	}
	assert.Len(t, seen, 40)
}

func TestPageBeyondEnd(t *testing.T) {
	up := &fakeUpstream{total: 5}
	p := newTestProvider(up)

	page, err := p.Page(context.Background(), 100, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestPageDoesNotRefetchLoadedSummaries(t *testing.T) {
	up := &fakeUpstream{total: 40}
	p := newTestProvider(up)
	ctx := context.Background()

	_, err := p.Page(ctx, 0, 20)
	require.NoError(t, err)
	calls := up.pokemonCalls

	// Same window again: everything already loaded.
	_, err = p.Page(ctx, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, calls, up.pokemonCalls)
}

func TestDetailMemoizedWithinTTL(t *testing.T) {
	up := &fakeUpstream{total: 10}
	p := newTestProvider(up)
	ctx := context.Background()

	first, err := p.Detail(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, up.pokemonCalls)
	require.Equal(t, 1, up.speciesCalls)
	require.Equal(t, 1, up.chainCalls)

	second, err := p.Detail(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, up.pokemonCalls, "second fetch within TTL must not hit the network")
	assert.Same(t, first, second, "cache must return the identical object")
}

func TestDetailExpiredEntryRecomposed(t *testing.T) {
	up := &fakeUpstream{total: 10}
	p := newTestProvider(up)
	ctx := context.Background()

	_, err := p.Detail(ctx, 1)
	require.NoError(t, err)

	// Jump past the TTL.
	p.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = p.Detail(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, up.pokemonCalls)
}

func TestDetailComposition(t *testing.T) {
	up := &fakeUpstream{total: 10}
	p := newTestProvider(up)

	d, err := p.Detail(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, 4, d.ID)
	assert.Equal(t, "poke-4", d.Name)
	assert.Equal(t, []string{"grass"}, d.Types)
	assert.Equal(t, 45, d.Stats.HP)
	assert.Equal(t, 65, d.Stats.Speed)
	assert.Equal(t, []string{"overgrow"}, d.Abilities)
	assert.Equal(t, []string{"tackle"}, d.Moves)
	assert.Equal(t, 45, d.CaptureRate)
	assert.Equal(t, 1, d.Generation)
	assert.Equal(t, "grassland", d.Habitat)
	assert.Equal(t, []string{"monster"}, d.EggGroups)
	// Flavor text picks English and normalizes line breaks.
	assert.Equal(t, "A strange seed was planted on its back.", d.Description)

	require.Len(t, d.Evolution, 2)
	assert.Equal(t, "poke-4", d.Evolution[0].SpeciesName)
	assert.Empty(t, d.Evolution[0].Trigger)
	assert.Equal(t, "level-up", d.Evolution[1].Trigger)
	assert.Equal(t, 16, d.Evolution[1].MinLevel)
}

func TestDetailCoalescesConcurrentRequests(t *testing.T) {
	up := &fakeUpstream{total: 10, gate: make(chan struct{})}
	p := newTestProvider(up)

	var wg sync.WaitGroup
	results := make([]*model.PokemonDetail, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.Detail(context.Background(), 1)
		}(i)
		// Stagger so the first request is registered in-flight before the
		// second arrives.
		time.Sleep(20 * time.Millisecond)
	}

	close(up.gate)
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	assert.Equal(t, 1, up.pokemonCalls, "identical in-flight requests must share one composition")
	assert.Same(t, results[0], results[1])
}

// junkUpstream serves full list pages whose ref URLs never parse to an id,
// mimicking an upstream that shifts or corrupts mid-pagination.
type junkUpstream struct {
	mu        sync.Mutex
	listCalls int
}

func (j *junkUpstream) ListPokemon(ctx context.Context, offset, limit int) (*pokeapi.ListResponse, error) {
	j.mu.Lock()
	j.listCalls++
	j.mu.Unlock()
	resp := &pokeapi.ListResponse{}
	for i := 0; i < limit; i++ {
		resp.Results = append(resp.Results, pokeapi.NamedRef{
			Name: "glitch",
			URL:  "https://pokeapi.test/api/v2/pokemon/glitch/",
		})
	}
	return resp, nil
}

func (j *junkUpstream) GetPokemon(ctx context.Context, id int) (*pokeapi.PokemonResource, error) {
	return nil, fmt.Errorf("unexpected GetPokemon(%d)", id)
}

func (j *junkUpstream) GetSpecies(ctx context.Context, id int) (*pokeapi.SpeciesResource, error) {
	return nil, fmt.Errorf("unexpected GetSpecies(%d)", id)
}

func (j *junkUpstream) GetEvolutionChain(ctx context.Context, id int) (*pokeapi.EvolutionChainResource, error) {
	return nil, fmt.Errorf("unexpected GetEvolutionChain(%d)", id)
}

func TestPageStopsWhenPageYieldsNoSummaries(t *testing.T) {
	up := &junkUpstream{}
	p := NewProvider(up, 20, 24*time.Hour, 100, slog.New(slog.NewTextHandler(io.Discard, nil)))

	page, err := p.Page(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
	assert.Equal(t, 1, up.listCalls, "a full page of unusable refs must stop loading, not refetch forever")
}

func TestDetailWaiterRetriesAfterOwnerCanceled(t *testing.T) {
	up := &fakeUpstream{total: 10, gate: make(chan struct{})}
	p := newTestProvider(up)

	ownerCtx, cancelOwner := context.WithCancel(context.Background())
	var ownerErr, waiterErr error
	var waiterDetail *model.PokemonDetail
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ownerErr = p.Detail(ownerCtx, 1)
	}()
	time.Sleep(20 * time.Millisecond) // owner registered and blocked upstream

	wg.Add(1)
	go func() {
		defer wg.Done()
		waiterDetail, waiterErr = p.Detail(context.Background(), 1)
	}()
	time.Sleep(20 * time.Millisecond) // waiter joined the in-flight call

	cancelOwner()
	time.Sleep(20 * time.Millisecond) // waiter retries and becomes the owner
	close(up.gate)
	wg.Wait()

	assert.ErrorIs(t, ownerErr, context.Canceled)
	require.NoError(t, waiterErr, "waiter with a live context must not inherit the owner's cancellation")
	require.NotNil(t, waiterDetail)
	assert.Equal(t, 1, waiterDetail.ID)
}

func TestDetailOfflineFallback(t *testing.T) {
	up := &fakeUpstream{total: 10}
	p := newTestProvider(up)
	ctx := context.Background()

	cached, err := p.Detail(ctx, 1)
	require.NoError(t, err)

	// Expire the entry, then take the upstream down.
	p.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	up.mu.Lock()
	up.unreachable = true
	up.mu.Unlock()

	t.Run("cached id served stale", func(t *testing.T) {
		d, err := p.Detail(ctx, 1)
		require.NoError(t, err)
		assert.Same(t, cached, d)
	})

	t.Run("never-cached id fails with no-connection", func(t *testing.T) {
		_, err := p.Detail(ctx, 7)
		require.Error(t, err)
		assert.ErrorIs(t, err, pokeapi.ErrNoConnection)
	})
}

func TestFilter(t *testing.T) {
	items := []model.PokemonSummary{
		{ID: 1, Name: "bulbasaur", Types: []string{"grass", "poison"}},
		{ID: 4, Name: "charmander", Types: []string{"fire"}},
		{ID: 7, Name: "squirtle", Types: []string{"water"}},
		{ID: 25, Name: "pikachu", Types: []string{"electric"}},
	}

	t.Run("substring on name", func(t *testing.T) {
		got := Filter(items, "char")
		require.Len(t, got, 1)
		assert.Equal(t, "charmander", got[0].Name)
	})

	t.Run("case insensitive", func(t *testing.T) {
		got := Filter(items, "PIKA")
		require.Len(t, got, 1)
		assert.Equal(t, 25, got[0].ID)
	})

	t.Run("exact numeric id", func(t *testing.T) {
		got := Filter(items, "7")
		require.Len(t, got, 1)
		assert.Equal(t, "squirtle", got[0].Name)
	})

	t.Run("type tag substring", func(t *testing.T) {
		got := Filter(items, "gras")
		require.Len(t, got, 1)
		assert.Equal(t, "bulbasaur", got[0].Name)
	})

	t.Run("empty query returns all", func(t *testing.T) {
		assert.Len(t, Filter(items, ""), len(items))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Filter(items, "a")
		twice := Filter(once, "a")
		assert.Equal(t, once, twice)
	})
}

func TestSearchFetchesMorePagesForSparseMatches(t *testing.T) {
	up := &fakeUpstream{total: 60}
	p := newTestProvider(up)

	// "poke-41" only exists on the third upstream page.
	got, err := p.Search(context.Background(), "poke-41", 20)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, 41, got[0].ID)
	assert.GreaterOrEqual(t, up.listCalls, 3)
}
