package wikidata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
)

// Q312 names Q1 twice as CEO, Q2 as both CEO and chairperson, and Q4 as
// a distinct entity that shares Q1's label; the managers carry a literal
// string value and one claim with an unusable shape. One fixture covers
// duplicate dropping, the label memo, literals, and skipping bad claims.
const appleClaims = `{"entities": {"Q312": {"claims": {
	"P169": [
		{"mainsnak": {"datavalue": {"value": {"id": "Q1"}}}},
		{"mainsnak": {"datavalue": {"value": {"id": "Q2"}}}},
		{"mainsnak": {"datavalue": {"value": {"id": "Q1"}}}},
		{"mainsnak": {"datavalue": {"value": {"id": "Q4"}}}}
	],
	"P488": [{"mainsnak": {"datavalue": {"value": {"id": "Q2"}}}}],
	"P1037": [
		{"mainsnak": {"datavalue": {"value": "Jeff Williams"}}},
		{"mainsnak": {"datavalue": {"value": 42}}}
	],
	"P127": [{"mainsnak": {"datavalue": {"value": {"id": "Q3"}}}}]
}}}}`

var labelFixtures = map[string]string{
	"Q1": "Tim Cook",
	"Q2": "Arthur Levinson",
	"Q3": "Institutional investors",
	"Q4": "Tim Cook",
}

func newWikidataServer(t *testing.T, labelHits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		id := q.Get("ids")
		switch q.Get("props") {
		case "claims":
			if id == "Q312" {
				w.Write([]byte(appleClaims))
				return
			}
			fmt.Fprintf(w, `{"entities": {"%s": {"claims": {}}}}`, id)
		case "labels":
			if labelHits != nil {
				labelHits.Add(1)
			}
			name, ok := labelFixtures[id]
			if !ok {
				fmt.Fprintf(w, `{"entities": {"%s": {"labels": {}}}}`, id)
				return
			}
			fmt.Fprintf(w, `{"entities": {"%s": {"labels": {"en": {"value": "%s"}}}}}`, id, name)
		default:
			http.Error(w, "bad props", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLeadership(t *testing.T) {
	var labelHits atomic.Int64
	srv := newWikidataServer(t, &labelHits)
	c := New("test/1.0", WithAPIURL(srv.URL))

	got := c.Leadership(context.Background(), "Q312")

	if want := []string{"Tim Cook", "Arthur Levinson"}; !reflect.DeepEqual(got.CEO, want) {
		t.Errorf("CEO = %v, want %v", got.CEO, want)
	}
	if want := []string{"Arthur Levinson"}; !reflect.DeepEqual(got.Chairperson, want) {
		t.Errorf("Chairperson = %v, want %v", got.Chairperson, want)
	}
	if want := []string{"Jeff Williams"}; !reflect.DeepEqual(got.Managers, want) {
		t.Errorf("Managers = %v, want %v", got.Managers, want)
	}
	if want := []string{"Institutional investors"}; !reflect.DeepEqual(got.Owners, want) {
		t.Errorf("Owners = %v, want %v", got.Owners, want)
	}
	// Four distinct entities referenced, so four label lookups; literal
	// values never touch the label endpoint.
	if n := labelHits.Load(); n != 4 {
		t.Errorf("label endpoint hit %d times, want 4", n)
	}
}

func TestLeadershipNoClaims(t *testing.T) {
	srv := newWikidataServer(t, nil)
	c := New("test/1.0", WithAPIURL(srv.URL))

	got := c.Leadership(context.Background(), "Q999")
	if !got.Empty() {
		t.Errorf("expected empty leadership, got %+v", got)
	}
}

func TestLeadershipBlankEntity(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)
	c := New("test/1.0", WithAPIURL(srv.URL))

	if got := c.Leadership(context.Background(), ""); !got.Empty() {
		t.Errorf("expected empty leadership, got %+v", got)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server hit %d times for blank entity, want 0", n)
	}
}

func TestLeadershipServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := New("test/1.0", WithAPIURL(srv.URL))

	if got := c.Leadership(context.Background(), "Q312"); !got.Empty() {
		t.Errorf("expected empty leadership when unreachable, got %+v", got)
	}
}
