package acceptance

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsidev/karsi/types"
)

// fakeBackend counts calls and can block or fail on demand. When
// blockAsset is set, calls for that asset signal entered and wait for
// release; other assets pass straight through.
type fakeBackend struct {
	acceptCalls atomic.Int32
	revokeCalls atomic.Int32
	failWith    error
	blockAsset  string
	entered     chan struct{}
	release     chan struct{}
}

func (f *fakeBackend) Accept(ctx context.Context, assetID string, assetType types.Category, variant types.Variant) error {
	f.acceptCalls.Add(1)
	f.maybeBlock(assetID)
	return f.failWith
}

func (f *fakeBackend) Revoke(ctx context.Context, assetID string, assetType types.Category) error {
	f.revokeCalls.Add(1)
	f.maybeBlock(assetID)
	return f.failWith
}

func (f *fakeBackend) maybeBlock(assetID string) {
	if f.blockAsset != "" && assetID == f.blockAsset {
		f.entered <- struct{}{}
		<-f.release
	}
}

func newController(b *fakeBackend) *Controller {
	return NewController(b, NewMemoryStore(), nil, zerolog.Nop())
}

func TestAccept_TransitionsState(t *testing.T) {
	c := newController(&fakeBackend{})

	state, err := c.Accept(context.Background(), "i-1", types.CategoryVM, types.VariantSafe)
	require.NoError(t, err)
	assert.Equal(t, types.AcceptanceSafe, state)

	got, err := c.State("i-1")
	require.NoError(t, err)
	assert.Equal(t, types.AcceptanceSafe, got)
}

func TestAccept_LastWriteWins(t *testing.T) {
	b := &fakeBackend{}
	c := newController(b)
	ctx := context.Background()

	_, err := c.Accept(ctx, "i-1", types.CategoryVM, types.VariantSafe)
	require.NoError(t, err)

	// No client-side "already accepted" guard: the second accept goes
	// straight to the backend and supersedes the first.
	state, err := c.Accept(ctx, "i-1", types.CategoryVM, types.VariantAlternate)
	require.NoError(t, err)
	assert.Equal(t, types.AcceptanceAlternate, state)
	assert.Equal(t, int32(2), b.acceptCalls.Load())
}

func TestAccept_RejectsConcurrentRequestForSameAsset(t *testing.T) {
	b := &fakeBackend{blockAsset: "i-1", entered: make(chan struct{}, 1), release: make(chan struct{})}
	c := newController(b)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.Accept(ctx, "i-1", types.CategoryVM, types.VariantSafe)
		done <- err
	}()

	// Wait until the first request is inside the backend call.
	select {
	case <-b.entered:
	case <-time.After(time.Second):
		t.Fatal("first accept never reached the backend")
	}

	// Second call for the same asset is rejected without a request.
	_, err := c.Accept(ctx, "i-1", types.CategoryVM, types.VariantAlternate)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, int32(1), b.acceptCalls.Load())

	close(b.release)
	require.NoError(t, <-done)

	// Once the first completes, the asset accepts requests again.
	b.blockAsset = ""
	state, err := c.Accept(ctx, "i-1", types.CategoryVM, types.VariantAlternate)
	require.NoError(t, err)
	assert.Equal(t, types.AcceptanceAlternate, state)
}

func TestAccept_SingleFlightIsPerAsset(t *testing.T) {
	b := &fakeBackend{blockAsset: "i-1", entered: make(chan struct{}, 1), release: make(chan struct{})}
	c := newController(b)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := c.Accept(ctx, "i-1", types.CategoryVM, types.VariantSafe)
		done <- err
	}()
	select {
	case <-b.entered:
	case <-time.After(time.Second):
		t.Fatal("first accept never reached the backend")
	}

	// A different asset is not blocked while i-1 is in flight.
	state, err := c.Accept(ctx, "i-2", types.CategoryDB, types.VariantSafe)
	require.NoError(t, err)
	assert.Equal(t, types.AcceptanceSafe, state)

	close(b.release)
	require.NoError(t, <-done)
}

func TestAccept_ErrorLeavesStateUnchanged(t *testing.T) {
	b := &fakeBackend{}
	c := newController(b)
	ctx := context.Background()

	_, err := c.Accept(ctx, "i-1", types.CategoryVM, types.VariantSafe)
	require.NoError(t, err)

	b.failWith = errors.New("backend down")
	state, err := c.Accept(ctx, "i-1", types.CategoryVM, types.VariantAlternate)
	require.Error(t, err)
	assert.Equal(t, types.AcceptanceSafe, state, "failed accept must not mutate state")
}

func TestRevoke_OnNoneIsValidNoOp(t *testing.T) {
	b := &fakeBackend{}
	c := newController(b)

	state, err := c.Revoke(context.Background(), "i-1", types.CategoryStorage)
	require.NoError(t, err)
	assert.Equal(t, types.AcceptanceNone, state)
	// The backend is still called per contract.
	assert.Equal(t, int32(1), b.revokeCalls.Load())
}

func TestRevoke_ClearsAcceptedState(t *testing.T) {
	b := &fakeBackend{}
	c := newController(b)
	ctx := context.Background()

	_, err := c.Accept(ctx, "i-1", types.CategoryVM, types.VariantAlternate)
	require.NoError(t, err)

	state, err := c.Revoke(ctx, "i-1", types.CategoryVM)
	require.NoError(t, err)
	assert.Equal(t, types.AcceptanceNone, state)
}

func TestState_UnknownAssetIsNone(t *testing.T) {
	c := newController(&fakeBackend{})
	state, err := c.State("never-seen")
	require.NoError(t, err)
	assert.Equal(t, types.AcceptanceNone, state)
}
