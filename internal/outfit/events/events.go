// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package events wires wardrobe and rule-set events to the engine's
// shortlist cache. Item add/update/remove invalidates the owning user's
// shortlists; a rule-set publish swaps the active set and invalidates
// everything. Transport is Watermill, embedded over gochannel by default;
// any message.Subscriber with the same topics and payloads works.
package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/wardrobelabs/ensemble/internal/metrics"
	"github.com/wardrobelabs/ensemble/internal/outfit"
	"github.com/wardrobelabs/ensemble/internal/outfit/storage"
)

// Topics.
const (
	TopicItemEvents       = "wardrobe.item_events"
	TopicRuleSetPublished = "ruleset.published"
)

// Item event actions.
const (
	ActionAdded   = "added"
	ActionUpdated = "updated"
	ActionRemoved = "removed"
)

// ItemEvent announces a wardrobe or catalog item change.
type ItemEvent struct {
	UserID string `json:"user_id"`
	ItemID string `json:"item_id"`
	Action string `json:"action"`
}

// Invalidator is the cache surface the bridge drives. *outfit.Engine
// satisfies it.
type Invalidator interface {
	InvalidateUser(userID string)
	InvalidateAll()
}

// RuleSetSink receives decoded rule-set payloads. *rules.Provider
// satisfies it.
type RuleSetSink interface {
	Publish(rs *outfit.RuleSet) error
}

// NewBus creates the in-process pub/sub transport.
func NewBus() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
}

// PublishItemEvent emits an item change event.
func PublishItemEvent(pub message.Publisher, ev ItemEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode item event: %w", err)
	}
	return pub.Publish(TopicItemEvents, message.NewMessage(watermill.NewUUID(), payload))
}

// PublishRuleSet emits a full rule-set payload.
func PublishRuleSet(pub message.Publisher, rs *outfit.RuleSet) error {
	payload, err := storage.EncodeRuleSet(rs)
	if err != nil {
		return err
	}
	return pub.Publish(TopicRuleSetPublished, message.NewMessage(watermill.NewUUID(), payload))
}

// Bridge consumes both topics and drives invalidation.
type Bridge struct {
	sub    message.Subscriber
	inv    Invalidator
	rules  RuleSetSink
	logger zerolog.Logger
}

// NewBridge wires a subscriber to the engine cache and the rule-set
// provider. The rules sink may be nil when the process does not accept
// remote rule-set publishes.
func NewBridge(sub message.Subscriber, inv Invalidator, rules RuleSetSink, logger zerolog.Logger) *Bridge {
	return &Bridge{sub: sub, inv: inv, rules: rules, logger: logger}
}

// Run subscribes and processes events until the context is canceled.
// Malformed messages are acked and logged; an event bus retrying a payload
// that cannot parse would spin forever.
func (b *Bridge) Run(ctx context.Context) error {
	items, err := b.sub.Subscribe(ctx, TopicItemEvents)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicItemEvents, err)
	}
	rulesets, err := b.sub.Subscribe(ctx, TopicRuleSetPublished)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicRuleSetPublished, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-items:
			if !ok {
				return nil
			}
			b.handleItemEvent(msg)
		case msg, ok := <-rulesets:
			if !ok {
				return nil
			}
			b.handleRuleSet(msg)
		}
	}
}

func (b *Bridge) handleItemEvent(msg *message.Message) {
	defer msg.Ack()

	var ev ItemEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		b.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed item event")
		return
	}
	if ev.UserID == "" {
		b.logger.Warn().Str("message_id", msg.UUID).Msg("dropping item event without user id")
		return
	}

	b.inv.InvalidateUser(ev.UserID)
	metrics.InvalidationsTotal.WithLabelValues("user").Inc()
	b.logger.Debug().
		Str("user_id", ev.UserID).
		Str("item_id", ev.ItemID).
		Str("action", ev.Action).
		Msg("invalidated user shortlists")
}

func (b *Bridge) handleRuleSet(msg *message.Message) {
	defer msg.Ack()

	rs, err := storage.DecodeRuleSet(msg.Payload)
	if err != nil {
		b.logger.Warn().Err(err).Str("message_id", msg.UUID).Msg("dropping malformed rule set payload")
		return
	}

	if b.rules != nil {
		if err := b.rules.Publish(rs); err != nil {
			b.logger.Error().Err(err).Str("version", rs.Version).Msg("rule set publish rejected")
			return
		}
	}

	b.inv.InvalidateAll()
	metrics.InvalidationsTotal.WithLabelValues("all").Inc()
	b.logger.Info().Str("version", rs.Version).Msg("rule set published, all shortlists invalidated")
}
