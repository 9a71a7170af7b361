// Package availability turns the raw inventory feed into a per-item,
// per-zone status snapshot and decides which statuses are worth an alert.
package availability

import (
	"sort"
)

// Item is a tracked model reference (e.g. "1801sk13").
type Item string

// Zone is a regional availability bucket under an item (e.g. "gra").
type Zone string

// Snapshot maps item -> zone -> status. It is rebuilt on every pass.
type Snapshot map[Item]map[Zone]Status

// Zones returns the zone statuses for item, or an *ItemLookupError.
func (s Snapshot) Zones(item Item) (map[Zone]Status, error) {
	zones, ok := s[item]
	if !ok {
		return nil, &ItemLookupError{Item: item}
	}
	return zones, nil
}

// SortedZones returns the zones of item in lexical order.
func (s Snapshot) SortedZones(item Item) ([]Zone, error) {
	zones, err := s.Zones(item)
	if err != nil {
		return nil, err
	}
	out := make([]Zone, 0, len(zones))
	for z := range zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Classify builds a Snapshot from a feed payload decoded into a generic tree
// (encoding/json into any). The payload must carry answer.availability; any
// other shape is reported as ErrMalformedFeed.
//
//	{"answer": {"availability": [
//	    {"reference": "1801sk13", "zones": [{"zone": "gra", "availability": "unavailable"}]}
//	]}}
//
// A reference listed twice has its zones merged; the later entry wins per zone.
func Classify(raw any) (Snapshot, error) {
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, malformed("payload is %T, want object", raw)
	}
	answer, ok := root["answer"].(map[string]any)
	if !ok {
		return nil, malformed("missing answer object")
	}
	list, ok := answer["availability"].([]any)
	if !ok {
		if _, present := answer["availability"]; !present {
			return nil, malformed("missing answer.availability")
		}
		return nil, malformed("answer.availability is %T, want array", answer["availability"])
	}

	snap := make(Snapshot, len(list))
	for i, entry := range list {
		model, ok := entry.(map[string]any)
		if !ok {
			return nil, malformed("availability[%d] is %T, want object", i, entry)
		}
		ref, ok := model["reference"].(string)
		if !ok {
			return nil, malformed("availability[%d].reference missing or not a string", i)
		}
		zones, ok := model["zones"].([]any)
		if !ok {
			return nil, malformed("availability[%d].zones missing or not an array", i)
		}

		byZone := snap[Item(ref)]
		if byZone == nil {
			byZone = make(map[Zone]Status, len(zones))
			snap[Item(ref)] = byZone
		}
		for j, z := range zones {
			zm, ok := z.(map[string]any)
			if !ok {
				return nil, malformed("availability[%d].zones[%d] is %T, want object", i, j, z)
			}
			name, ok := zm["zone"].(string)
			if !ok {
				return nil, malformed("availability[%d].zones[%d].zone missing or not a string", i, j)
			}
			status, ok := zm["availability"].(string)
			if !ok {
				return nil, malformed("availability[%d].zones[%d].availability missing or not a string", i, j)
			}
			byZone[Zone(name)] = Status(status)
		}
	}
	return snap, nil
}
