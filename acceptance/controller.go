// Package acceptance manages the accept/revoke lifecycle of
// recommendations against assets. State transitions only on confirmed
// backend success; there are no optimistic updates.
package acceptance

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/karsidev/karsi/types"
)

// ErrInFlight is returned when an accept or revoke is already
// outstanding for the same asset. Requests are rejected, not queued.
var ErrInFlight = errors.New("acceptance request already in flight for asset")

// Actioner is the backend surface the controller needs.
type Actioner interface {
	Accept(ctx context.Context, assetID string, assetType types.Category, variant types.Variant) error
	Revoke(ctx context.Context, assetID string, assetType types.Category) error
}

// Store holds per-asset acceptance state. It is the single shared
// scope: every view of an asset reads the same store, so all consumers
// observe one truth.
type Store interface {
	Get(assetID string) (types.AcceptanceState, error)
	Set(assetID string, state types.AcceptanceState) error
}

// Journal records acceptance intents and outcomes for audit. Optional.
type Journal interface {
	Append(entryType string, assetID string, data any) error
	AppendError(entryType string, assetID string, data any, err error) error
}

// Journal entry types.
const (
	EntryRequested = "requested"
	EntryConfirmed = "confirmed"
	EntryFailed    = "failed"
)

// Controller issues accept/revoke requests and tracks the resulting
// state with per-asset single-flight protection.
type Controller struct {
	backend Actioner
	store   Store
	journal Journal
	logger  zerolog.Logger

	mu       sync.Mutex
	inflight map[string]bool
}

// NewController creates a controller. journal may be nil.
func NewController(backend Actioner, store Store, journal Journal, logger zerolog.Logger) *Controller {
	return &Controller{
		backend:  backend,
		store:    store,
		journal:  journal,
		logger:   logger,
		inflight: make(map[string]bool),
	}
}

// State returns the current acceptance state for an asset; assets never
// seen before are none.
func (c *Controller) State(assetID string) (types.AcceptanceState, error) {
	return c.store.Get(assetID)
}

// Accept applies one variant to an asset. A success supersedes any
// prior acceptance (last write wins); an error of any kind leaves the
// stored state untouched.
func (c *Controller) Accept(ctx context.Context, assetID string, assetType types.Category, variant types.Variant) (types.AcceptanceState, error) {
	if err := c.begin(assetID); err != nil {
		return c.currentOr(assetID), err
	}
	defer c.end(assetID)

	c.journalIntent(assetID, map[string]string{
		"action":     "accept",
		"asset_type": string(assetType),
		"variant":    string(variant),
	})

	if err := c.backend.Accept(ctx, assetID, assetType, variant); err != nil {
		c.journalFailure(assetID, "accept", err)
		return c.currentOr(assetID), err
	}

	next := variant.State()
	if err := c.store.Set(assetID, next); err != nil {
		return c.currentOr(assetID), err
	}

	c.journalOutcome(assetID, next)
	c.logger.Info().
		Str("asset_id", assetID).
		Str("variant", string(variant)).
		Msg("recommendation accepted")
	return next, nil
}

// Revoke clears the acceptance for an asset. Revoking an asset whose
// state is none is a valid no-op that still calls the backend.
func (c *Controller) Revoke(ctx context.Context, assetID string, assetType types.Category) (types.AcceptanceState, error) {
	if err := c.begin(assetID); err != nil {
		return c.currentOr(assetID), err
	}
	defer c.end(assetID)

	c.journalIntent(assetID, map[string]string{
		"action":     "revoke",
		"asset_type": string(assetType),
	})

	if err := c.backend.Revoke(ctx, assetID, assetType); err != nil {
		c.journalFailure(assetID, "revoke", err)
		return c.currentOr(assetID), err
	}

	if err := c.store.Set(assetID, types.AcceptanceNone); err != nil {
		return c.currentOr(assetID), err
	}

	c.journalOutcome(assetID, types.AcceptanceNone)
	c.logger.Info().Str("asset_id", assetID).Msg("recommendation revoked")
	return types.AcceptanceNone, nil
}

// begin marks an asset in flight, rejecting concurrent requests for the
// same asset. Other assets are unaffected.
func (c *Controller) begin(assetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[assetID] {
		return ErrInFlight
	}
	c.inflight[assetID] = true
	return nil
}

func (c *Controller) end(assetID string) {
	c.mu.Lock()
	delete(c.inflight, assetID)
	c.mu.Unlock()
}

func (c *Controller) currentOr(assetID string) types.AcceptanceState {
	state, err := c.store.Get(assetID)
	if err != nil {
		return types.AcceptanceNone
	}
	return state
}

func (c *Controller) journalIntent(assetID string, data any) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Append(EntryRequested, assetID, data); err != nil {
		c.logger.Warn().Err(err).Str("asset_id", assetID).Msg("journal append failed")
	}
}

func (c *Controller) journalOutcome(assetID string, state types.AcceptanceState) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Append(EntryConfirmed, assetID, map[string]string{"state": string(state)}); err != nil {
		c.logger.Warn().Err(err).Str("asset_id", assetID).Msg("journal append failed")
	}
}

func (c *Controller) journalFailure(assetID, action string, cause error) {
	if c.journal == nil {
		return
	}
	if err := c.journal.AppendError(EntryFailed, assetID, map[string]string{"action": action}, cause); err != nil {
		c.logger.Warn().Err(err).Str("asset_id", assetID).Msg("journal append failed")
	}
}
