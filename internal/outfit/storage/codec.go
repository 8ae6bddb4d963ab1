// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package storage provides the denormalized item document codec and an
// in-memory candidate index suitable for embedding and tests. The wire
// format is JSON throughout; goccy/go-json keeps ingest off the hot-path
// allocation profile of encoding/json.
package storage

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// EncodeItem serializes an item document.
func EncodeItem(it *outfit.Item) ([]byte, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item %s: %w", it.ID, err)
	}
	return data, nil
}

// DecodeItem deserializes a single item document.
func DecodeItem(data []byte) (*outfit.Item, error) {
	var it outfit.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return nil, fmt.Errorf("failed to decode item document: %w", err)
	}
	return &it, nil
}

// DecodeItems deserializes a JSON array of item documents.
func DecodeItems(data []byte) ([]*outfit.Item, error) {
	var items []*outfit.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode item documents: %w", err)
	}
	return items, nil
}

// EncodeRuleSet serializes a rule set payload for publishing.
func EncodeRuleSet(rs *outfit.RuleSet) ([]byte, error) {
	data, err := json.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rule set %s: %w", rs.Version, err)
	}
	return data, nil
}

// DecodeRuleSet deserializes and validates a rule set payload.
func DecodeRuleSet(data []byte) (*outfit.RuleSet, error) {
	var rs outfit.RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to decode rule set payload: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("decoded rule set invalid: %w", err)
	}
	return &rs, nil
}

// EncodeBundle serializes a generated bundle for transport.
func EncodeBundle(b *outfit.Bundle) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle %s: %w", b.ID, err)
	}
	return data, nil
}
