package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/garyjia/procurement-drafts/internal/domain/draft"
	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
	mockport "github.com/garyjia/procurement-drafts/internal/mocks/port"
)

func one() decimal.Decimal { return decimal.NewFromInt(1) }

func TestCurrencySync_StartsPinnedWhenSingleCurrency(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mockport.NewMockExchangeRateProvider(ctrl)

	c := NewCurrencySync(rates, nil, "USD", "EUR", decimal.NewFromInt(40), false)

	snap := c.Snapshot()
	assert.Equal(t, "THB", snap.Base)
	assert.Equal(t, "THB", snap.Quote)
	assert.True(t, snap.Rate.Equal(one()))
	assert.Equal(t, workflow.StateSameCurrency, snap.State)
}

func TestCurrencySync_CrossCurrencyLooksUpRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mockport.NewMockExchangeRateProvider(ctrl)
	rates.EXPECT().GetRate(gomock.Any(), "USD", "THB").Return(decimal.RequireFromString("33.5"), nil)

	var applied []CurrencySnapshot
	c := NewCurrencySync(rates, nil, "THB", "THB", one(), true,
		WithApplyHook(func(s CurrencySnapshot) { applied = append(applied, s) }))

	require.NoError(t, c.SetCurrencies(context.Background(), "usd", "THB"))

	snap := c.Snapshot()
	assert.Equal(t, "USD", snap.Base)
	assert.Equal(t, workflow.StateCrossCurrency, snap.State)
	assert.Equal(t, "33.5", snap.Rate.String())
	assert.False(t, snap.ManualRate)

	require.Len(t, applied, 2)
	assert.Equal(t, "USD", applied[0].Base, "currency change is applied before the rate arrives")
	assert.True(t, applied[0].Rate.Equal(one()))
	assert.Equal(t, "33.5", applied[1].Rate.String())
	assert.Greater(t, applied[1].Version, applied[0].Version)
}

func TestCurrencySync_SameCurrencyPinsRateWithoutLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mockport.NewMockExchangeRateProvider(ctrl)

	c := NewCurrencySync(rates, nil, "USD", "THB", decimal.RequireFromString("33.5"), true)
	require.Equal(t, workflow.StateCrossCurrency, c.State())

	require.NoError(t, c.SetCurrencies(context.Background(), "THB", "THB"))

	assert.Equal(t, workflow.StateSameCurrency, c.State())
	assert.True(t, c.Rate().Equal(one()))
}

func TestCurrencySync_MulticurrencyOffResetsToHome(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mockport.NewMockExchangeRateProvider(ctrl)

	c := NewCurrencySync(rates, nil, "USD", "THB", decimal.RequireFromString("33.5"), true)

	require.NoError(t, c.SetMulticurrency(context.Background(), false))

	snap := c.Snapshot()
	assert.Equal(t, "THB", snap.Base)
	assert.Equal(t, "THB", snap.Quote)
	assert.True(t, snap.Rate.Equal(one()))
	assert.False(t, snap.Multicurrency)
	assert.Equal(t, workflow.StateSameCurrency, snap.State)
}

func TestCurrencySync_HomeCurrencyIsConfigurable(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mockport.NewMockExchangeRateProvider(ctrl)

	c := NewCurrencySync(rates, nil, "USD", "THB", decimal.RequireFromString("33.5"), true, WithHomeCurrency("sgd"))
	require.NoError(t, c.SetMulticurrency(context.Background(), false))

	assert.Equal(t, "SGD", c.Snapshot().Base)
}

func TestCurrencySync_ChangeRejectedWhileMulticurrencyOff(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mockport.NewMockExchangeRateProvider(ctrl)

	c := NewCurrencySync(rates, nil, "", "", one(), false)

	err := c.SetCurrencies(context.Background(), "USD", "THB")

	var verr *draft.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{draft.FieldBaseCurrency}, verr.FieldNames())
	assert.Equal(t, "THB", c.Snapshot().Base)
}

func TestCurrencySync_ManualRateSurvivesRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mockport.NewMockExchangeRateProvider(ctrl)

	c := NewCurrencySync(rates, nil, "USD", "THB", decimal.RequireFromString("33.5"), true)
	require.NoError(t, c.SetRateManually(decimal.RequireFromString("34.25")))

	// no GetRate expectation: the manual rate must not trigger a fetch
	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.SetCurrencies(context.Background(), "USD", "THB"))

	snap := c.Snapshot()
	assert.Equal(t, "34.25", snap.Rate.String())
	assert.True(t, snap.ManualRate)
}

func TestCurrencySync_CurrencyChangeOverridesManualRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mockport.NewMockExchangeRateProvider(ctrl)
	rates.EXPECT().GetRate(gomock.Any(), "EUR", "THB").Return(decimal.RequireFromString("38.1"), nil)

	c := NewCurrencySync(rates, nil, "USD", "THB", decimal.RequireFromString("33.5"), true)
	require.NoError(t, c.SetRateManually(decimal.RequireFromString("34.25")))

	require.NoError(t, c.SetCurrencies(context.Background(), "EUR", "THB"))

	assert.Equal(t, "38.1", c.Rate().String())
	assert.False(t, c.Snapshot().ManualRate)
}

func TestCurrencySync_ManualRateValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	rates := mockport.NewMockExchangeRateProvider(ctrl)

	same := NewCurrencySync(rates, nil, "THB", "THB", one(), true)
	assert.Error(t, same.SetRateManually(decimal.NewFromInt(2)), "single-currency rate is fixed")

	cross := NewCurrencySync(rates, nil, "USD", "THB", decimal.RequireFromString("33.5"), true)
	var verr *draft.ValidationError
	assert.True(t, errors.As(cross.SetRateManually(decimal.Zero), &verr))
	assert.Equal(t, "33.5", cross.Rate().String())
}

func TestCurrencySync_LookupFailureKeepsPreviousRate(t *testing.T) {
	tests := []struct {
		name string
		rate decimal.Decimal
		err  error
	}{
		{name: "provider_error", err: errors.New("connection refused")},
		{name: "non_positive_rate", rate: decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			rates := mockport.NewMockExchangeRateProvider(ctrl)
			rates.EXPECT().GetRate(gomock.Any(), "USD", "THB").Return(tt.rate, tt.err)
			rec := &recordingRecorder{}

			c := NewCurrencySync(rates, nil, "THB", "THB", one(), true, WithCurrencyRecorder(rec))
			err := c.SetCurrencies(context.Background(), "USD", "THB")

			var lerr *RateLookupError
			require.True(t, errors.As(err, &lerr))
			assert.Equal(t, "USD", lerr.From)
			assert.True(t, c.Rate().Equal(one()))
			assert.Equal(t, "USD", c.Snapshot().Base)
			assert.Equal(t, []string{"error"}, rec.lookups())
		})
	}
}

// blockingRates serves USD after release is closed and every other pair at once.
type blockingRates struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingRates() *blockingRates {
	return &blockingRates{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingRates) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if from == "USD" {
		b.started <- struct{}{}
		<-b.release
		return decimal.RequireFromString("33.5"), nil
	}
	return decimal.RequireFromString("38.1"), nil
}

func TestCurrencySync_LastRequestWins(t *testing.T) {
	rates := newBlockingRates()
	rec := &recordingRecorder{}
	c := NewCurrencySync(rates, nil, "THB", "THB", one(), true, WithCurrencyRecorder(rec))

	var wg sync.WaitGroup
	wg.Add(1)
	var slowErr error
	go func() {
		defer wg.Done()
		slowErr = c.SetCurrencies(context.Background(), "USD", "THB")
	}()
	<-rates.started

	require.NoError(t, c.SetCurrencies(context.Background(), "EUR", "THB"))
	close(rates.release)
	wg.Wait()

	require.NoError(t, slowErr)
	snap := c.Snapshot()
	assert.Equal(t, "EUR", snap.Base)
	assert.Equal(t, "38.1", snap.Rate.String())
	assert.ElementsMatch(t, []string{"applied", "stale"}, rec.lookups())
}

// queuedRates parks every lookup until the test answers it.
type queuedRates struct {
	calls chan chan decimal.Decimal
}

func (q *queuedRates) GetRate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	reply := make(chan decimal.Decimal)
	q.calls <- reply
	return <-reply, nil
}

func TestCurrencySync_RefreshWinsOverOlderLookupAnsweringFirst(t *testing.T) {
	rates := &queuedRates{calls: make(chan chan decimal.Decimal)}
	rec := &recordingRecorder{}
	c := NewCurrencySync(rates, nil, "THB", "THB", one(), true, WithCurrencyRecorder(rec))

	older := make(chan error, 1)
	go func() { older <- c.SetCurrencies(context.Background(), "USD", "THB") }()
	olderReply := <-rates.calls

	newer := make(chan error, 1)
	go func() { newer <- c.Refresh(context.Background()) }()
	newerReply := <-rates.calls

	olderReply <- decimal.RequireFromString("33.0")
	require.NoError(t, <-older)
	newerReply <- decimal.RequireFromString("34.0")
	require.NoError(t, <-newer)

	assert.Equal(t, "34", c.Rate().String())
	assert.Equal(t, []string{"stale", "applied"}, rec.lookups())
}

func TestCurrencySync_ManualEditInvalidatesLookupInFlight(t *testing.T) {
	rates := newBlockingRates()
	c := NewCurrencySync(rates, nil, "THB", "THB", one(), true)

	done := make(chan error, 1)
	go func() { done <- c.SetCurrencies(context.Background(), "USD", "THB") }()
	<-rates.started

	require.NoError(t, c.SetRateManually(decimal.RequireFromString("34")))
	close(rates.release)
	require.NoError(t, <-done)

	assert.Equal(t, "34", c.Rate().String())
}

func TestCurrencySync_ClosedControllerDiscardsResult(t *testing.T) {
	rates := newBlockingRates()
	var applied int
	var mu sync.Mutex
	c := NewCurrencySync(rates, nil, "THB", "THB", one(), true, WithApplyHook(func(CurrencySnapshot) {
		mu.Lock()
		applied++
		mu.Unlock()
	}))

	done := make(chan error, 1)
	go func() { done <- c.SetCurrencies(context.Background(), "USD", "THB") }()
	<-rates.started

	c.Close()
	close(rates.release)
	require.NoError(t, <-done)

	assert.True(t, c.Rate().Equal(one()))
	mu.Lock()
	assert.Equal(t, 1, applied, "only the currency change before the lookup is applied")
	mu.Unlock()
	assert.ErrorIs(t, c.SetMulticurrency(context.Background(), false), ErrSessionClosed)
}
