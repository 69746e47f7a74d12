// Package preset parses hand-authored program catalogs.
//
// Two catalog layouts exist in the wild. V1 keys programs by name and days by
// label:
//
//	{"PPL": {"workouts": {"Push": [{"name": "Bench Press", "muscle": "Chest"}]}}}
//
// V2 lists programs explicitly:
//
//	{"programs": [{"id": "ppl", "name": "PPL", "days": [{"day": "Push", "exercises": [...]}]}]}
//
// Sniff looks at the top-level keys before any structural decoding so that a
// deployment bundling either layout is read correctly and the other is
// rejected cleanly.
package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Schema identifies a catalog layout.
type Schema int

const (
	SchemaUnknown Schema = iota
	SchemaV1
	SchemaV2
)

func (s Schema) String() string {
	switch s {
	case SchemaV1:
		return "v1"
	case SchemaV2:
		return "v2"
	default:
		return "unknown"
	}
}

// ErrUnknownSchema is returned for payloads matching neither layout.
var ErrUnknownSchema = errors.New("unrecognized preset schema")

// Sniff reports which layout data uses.
func Sniff(data []byte) (Schema, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return SchemaUnknown, fmt.Errorf("%w: %v", ErrUnknownSchema, err)
	}
	if raw, ok := top["programs"]; ok {
		if firstByte(raw) != '[' {
			return SchemaUnknown, fmt.Errorf("%w: programs is not an array", ErrUnknownSchema)
		}
		return SchemaV2, nil
	}
	if len(top) == 0 {
		return SchemaUnknown, fmt.Errorf("%w: empty catalog", ErrUnknownSchema)
	}
	for key, raw := range top {
		var probe map[string]json.RawMessage
		if firstByte(raw) != '{' || json.Unmarshal(raw, &probe) != nil {
			return SchemaUnknown, fmt.Errorf("%w: %q is not an object", ErrUnknownSchema, key)
		}
		if firstByte(probe["workouts"]) != '{' {
			return SchemaUnknown, fmt.Errorf("%w: %q has no workouts", ErrUnknownSchema, key)
		}
	}
	return SchemaV1, nil
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
