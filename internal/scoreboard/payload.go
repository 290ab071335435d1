package scoreboard

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire keys of the update webhook.
const (
	keyGame         = "game"
	keyTeam1Balance = "team1_balance"
	keyTeam2Balance = "team2_balance"
	keyTeam1Tickets = "team1_tickets"
	keyTeam2Tickets = "team2_tickets"
	keySheetNames   = "sheet_names"
)

const (
	reasonNoData       = "No data received"
	reasonGameRequired = "Game name required"
	reasonBadJSON      = "Request body must be a JSON object"
)

// DecodeUpdate turns an update webhook body into the GameState it describes.
// Numeric fields are kept as text: strings verbatim, numbers by their literal
// text, booleans as "True"/"False", objects and arrays as compact JSON.
// Absent or null fields become "0".
func DecodeUpdate(data []byte) (GameState, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return GameState{}, err
	}

	game, err := decodeGame(fields[keyGame])
	if err != nil {
		return GameState{}, err
	}

	st := GameState{Game: game}
	targets := []struct {
		key string
		dst *string
	}{
		{keyTeam1Balance, &st.Team1Balance},
		{keyTeam2Balance, &st.Team2Balance},
		{keyTeam1Tickets, &st.Team1Tickets},
		{keyTeam2Tickets, &st.Team2Tickets},
	}
	for _, t := range targets {
		v, err := coerce(fields[t.key])
		if err != nil {
			return GameState{}, invalid(fmt.Sprintf("%s is not valid JSON", t.key))
		}
		*t.dst = v
	}
	return st, nil
}

// DecodeCatalog extracts the sheet name list from a catalog webhook body.
// A body without sheet_names yields an empty list.
func DecodeCatalog(data []byte) ([]string, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	raw, ok := fields[keySheetNames]
	if !ok || isNull(raw) {
		return []string{}, nil
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, invalid("sheet_names must be a list of strings")
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// decodeObject parses a non-empty JSON object. Empty bodies, null and {}
// all count as no data.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, invalid(reasonNoData)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, invalid(reasonBadJSON)
	}
	if len(fields) == 0 {
		return nil, invalid(reasonNoData)
	}
	return fields, nil
}

func decodeGame(raw json.RawMessage) (string, error) {
	if raw == nil || isNull(raw) {
		return "", invalid(reasonGameRequired)
	}
	var game string
	if err := json.Unmarshal(raw, &game); err != nil {
		return "", invalid("Game name must be a string")
	}
	if game == "" {
		return "", invalid(reasonGameRequired)
	}
	return game, nil
}

func coerce(raw json.RawMessage) (string, error) {
	if raw == nil || isNull(raw) {
		return zero, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	default:
		var b bytes.Buffer
		if err := json.Compact(&b, raw); err != nil {
			return "", err
		}
		return b.String(), nil
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
