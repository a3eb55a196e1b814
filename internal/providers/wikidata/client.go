// Package wikidata extracts company leadership from Wikidata entity claims.
package wikidata

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/phuslu/log"

	"github.com/azrea/companion/internal/infra"
	"github.com/azrea/companion/pkg/models"
)

const defaultAPIURL = "https://www.wikidata.org/w/api.php"

// Claim properties of interest.
const (
	propCEO         = "P169"
	propChairperson = "P488"
	propManager     = "P1037"
	propOwnedBy     = "P127"
)

// Client fetches Wikidata entities. Safe for concurrent use.
type Client struct {
	http   *infra.Client
	apiURL string
}

// Option customizes a Client, mainly for tests.
type Option func(*Client)

// WithAPIURL overrides the Wikidata API endpoint.
func WithAPIURL(url string) Option {
	return func(c *Client) { c.apiURL = url }
}

// New builds a Wikidata client.
func New(userAgent string, opts ...Option) *Client {
	c := &Client{
		http:   infra.NewClient(infra.DefaultTimeout, userAgent),
		apiURL: defaultAPIURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Leadership resolves the CEO, chairperson, managers and owners recorded
// on the entity (a Q-identifier such as "Q312"). Claim values are usually
// entity references, each needing a second lookup for its English label;
// labels already resolved during this call are not fetched again. Literal
// string values are used as-is. Lists are deduplicated by label with
// first-seen order kept. A claims fetch failure yields an empty
// Leadership; a failed label lookup only drops that one entry.
func (c *Client) Leadership(ctx context.Context, entityID string) models.Leadership {
	if entityID == "" {
		return models.Leadership{}
	}

	claims, err := c.entityClaims(ctx, entityID)
	if err != nil {
		log.Warn().Err(err).Str("entity", entityID).Msg("wikidata claims fetch failed")
		return models.Leadership{}
	}

	labels := map[string]string{}
	lookup := func(id string) (string, bool) {
		if label, ok := labels[id]; ok {
			return label, true
		}
		label, err := c.entityLabel(ctx, id)
		if err != nil {
			log.Warn().Err(err).Str("entity", id).Msg("wikidata label fetch failed")
			return "", false
		}
		labels[id] = label
		return label, true
	}

	resolve := func(prop string) []string {
		var names []string
		seen := map[string]bool{}
		for _, v := range claimValues(claims, prop) {
			name := v.literal
			if v.id != "" {
				var ok bool
				if name, ok = lookup(v.id); !ok {
					continue
				}
			}
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
		return names
	}

	return models.Leadership{
		CEO:         resolve(propCEO),
		Chairperson: resolve(propChairperson),
		Managers:    resolve(propManager),
		Owners:      resolve(propOwnedBy),
	}
}

func (c *Client) entityClaims(ctx context.Context, entityID string) (map[string][]claim, error) {
	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("ids", entityID)
	params.Set("props", "claims")
	params.Set("format", "json")

	var resp entitiesResponse
	if err := c.http.GetJSON(ctx, c.apiURL, params, nil, &resp); err != nil {
		return nil, err
	}
	entity, ok := resp.Entities[entityID]
	if !ok {
		return nil, &infra.FetchError{Kind: infra.FailParse, URL: c.apiURL, Err: errEntityMissing(entityID)}
	}
	return entity.Claims, nil
}

func (c *Client) entityLabel(ctx context.Context, entityID string) (string, error) {
	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("ids", entityID)
	params.Set("props", "labels")
	params.Set("languages", "en")
	params.Set("format", "json")

	var resp entitiesResponse
	if err := c.http.GetJSON(ctx, c.apiURL, params, nil, &resp); err != nil {
		return "", err
	}
	return resp.Entities[entityID].Labels["en"].Value, nil
}

// claimValue is one usable claim target: either a literal name or an
// entity reference whose label still needs resolving.
type claimValue struct {
	literal string
	id      string
}

// claimValues extracts the usable values of a property's claims, in claim
// order. A value is either a plain string or an object carrying an entity
// id; a claim with any other shape is skipped on its own.
func claimValues(claims map[string][]claim, prop string) []claimValue {
	var out []claimValue
	for _, cl := range claims[prop] {
		raw := cl.MainSnak.DataValue.Value
		if len(raw) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				out = append(out, claimValue{literal: s})
			}
			continue
		}
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &ref); err == nil && ref.ID != "" {
			out = append(out, claimValue{id: ref.ID})
		}
	}
	return out
}

type errEntityMissing string

func (e errEntityMissing) Error() string {
	return "entity " + string(e) + " not in response"
}
