package wikidata

import "encoding/json"

type entitiesResponse struct {
	Entities map[string]entity `json:"entities"`
}

type entity struct {
	Claims map[string][]claim `json:"claims"`
	Labels map[string]label   `json:"labels"`
}

// A claim's datavalue.value is either an object referencing another
// entity or a plain literal, so it stays raw until inspected.
type claim struct {
	MainSnak struct {
		DataValue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

type label struct {
	Value string `json:"value"`
}
