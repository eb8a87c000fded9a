package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client talks to the public Pokémon REST API.  A shared limiter caps the
// request rate against the upstream quota and capped exponential backoff is
// applied on 429 and 5xx responses only; every other failure surfaces
// immediately with its classification.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient builds a Client for the given base URL.  rps caps client-side
// requests per second; maxRetries bounds retries on retryable statuses.
func NewClient(baseURL, userAgent string, rps, maxRetries int) *Client {
	if rps < 1 {
		rps = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// ListPokemon fetches one page of {name, url} references.
func (c *Client) ListPokemon(ctx context.Context, offset, limit int) (*ListResponse, error) {
	var res ListResponse
	url := fmt.Sprintf("%s/pokemon?offset=%d&limit=%d", c.baseURL, offset, limit)
	if err := c.get(ctx, url, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetPokemon fetches the base pokemon resource by id.
func (c *Client) GetPokemon(ctx context.Context, id int) (*PokemonResource, error) {
	var res PokemonResource
	if err := c.get(ctx, fmt.Sprintf("%s/pokemon/%d", c.baseURL, id), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetSpecies fetches the species resource by id.
func (c *Client) GetSpecies(ctx context.Context, id int) (*SpeciesResource, error) {
	var res SpeciesResource
	if err := c.get(ctx, fmt.Sprintf("%s/pokemon-species/%d", c.baseURL, id), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetEvolutionChain fetches the evolution chain resource by chain id.
func (c *Client) GetEvolutionChain(ctx context.Context, id int) (*EvolutionChainResource, error) {
	var res EvolutionChainResource
	if err := c.get(ctx, fmt.Sprintf("%s/evolution-chain/%d", c.baseURL, id), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Backoff: 1s, 2s, 4s... capped at 8s.
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			if backoff > 8*time.Second {
				backoff = 8 * time.Second
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %v", ErrNoConnection, err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(target)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%w: %v", ErrDecode, err)
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("%w: %s", ErrNotFound, url)
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			lastErr = fmt.Errorf("%w: %s", ErrRateLimited, url)
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("upstream status %d: %s", resp.StatusCode, url)
		default:
			resp.Body.Close()
			return fmt.Errorf("upstream status %d: %s", resp.StatusCode, url)
		}
	}
	return lastErr
}

// IsUnreachable reports whether err is classified as a transport failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrNoConnection)
}
