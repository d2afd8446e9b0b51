package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testAddress = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type mockSource struct {
	mock.Mock
}

func (m *mockSource) WalletInfo(ctx context.Context, address string) (*Info, error) {
	args := m.Called(ctx, address)
	info, _ := args.Get(0).(*Info)
	return info, args.Error(1)
}

func (m *mockSource) WalletTransactions(ctx context.Context, address string, limit int) ([]TransactionRecord, error) {
	args := m.Called(ctx, address, limit)
	txs, _ := args.Get(0).([]TransactionRecord)
	return txs, args.Error(1)
}

func fixedNow() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

func TestTrackerLookup(t *testing.T) {
	src := new(mockSource)
	txs := []TransactionRecord{
		{Type: TxBuy, PnL: 10, SolAmount: 5, TimestampMs: fixedNow().Add(-time.Hour).UnixMilli()},
		{Type: TxSell, PnL: -3, SolAmount: 2, TimestampMs: fixedNow().Add(-10 * 24 * time.Hour).UnixMilli()},
	}
	src.On("WalletInfo", mock.Anything, testAddress).Return(&Info{Address: testAddress, Lamports: 2_500_000_000, Balance: 2.5}, nil).Once()
	src.On("WalletTransactions", mock.Anything, testAddress, 25).Return(txs, nil).Once()

	tracker, err := NewTracker(src, WithTransactionLimit(25), WithTrackerClock(fixedNow))
	require.NoError(t, err)
	defer tracker.Close()

	report, err := tracker.Lookup(context.Background(), "  "+testAddress+" ")
	require.NoError(t, err)
	assert.False(t, report.Mock)
	assert.Equal(t, 2.5, report.Info.Balance)
	assert.Equal(t, 7.0, report.Metrics.RealizedPnL)
	assert.Equal(t, 100.0, report.Metrics.ROI)
	assert.Equal(t, 1, report.ByTimeframe[Timeframe7d].TotalTrades)
	assert.Equal(t, 2, report.ByTimeframe[Timeframe30d].TotalTrades)
	assert.Equal(t, fixedNow(), report.FetchedAt)

	// second lookup is served from cache
	again, err := tracker.Lookup(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Same(t, report, again)
	src.AssertExpectations(t)
}

func TestTrackerLookupInvalidAddress(t *testing.T) {
	src := new(mockSource)
	tracker, err := NewTracker(src)
	require.NoError(t, err)
	defer tracker.Close()

	for _, addr := range []string{"", "abc", "0000000000000000000000000000000000000000"} {
		_, err := tracker.Lookup(context.Background(), addr)
		assert.ErrorIs(t, err, ErrInvalidAddress, addr)
	}
	src.AssertNotCalled(t, "WalletInfo", mock.Anything, mock.Anything)
}

func TestTrackerFallsBackWhenNotConfigured(t *testing.T) {
	primary := new(mockSource)
	primary.On("WalletInfo", mock.Anything, testAddress).Return(nil, ErrNotConfigured)
	primary.On("WalletTransactions", mock.Anything, testAddress, DefaultTransactionLimit).Return(nil, ErrNotConfigured)

	fallback := new(mockSource)
	fallback.On("WalletInfo", mock.Anything, testAddress).Return(&Info{Address: testAddress}, nil)
	fallback.On("WalletTransactions", mock.Anything, testAddress, DefaultTransactionLimit).
		Return([]TransactionRecord{{Type: TxBuy, PnL: 1, SolAmount: 1}}, nil)

	tracker, err := NewTracker(primary, WithFallback(fallback), WithCacheTTL(0))
	require.NoError(t, err)

	report, err := tracker.Lookup(context.Background(), testAddress)
	require.NoError(t, err)
	assert.True(t, report.Mock)
	assert.Equal(t, 1, report.Metrics.TotalTrades)
}

func TestTrackerNilSourceWithoutFallback(t *testing.T) {
	tracker, err := NewTracker(nil, WithCacheTTL(0))
	require.NoError(t, err)
	_, err = tracker.Lookup(context.Background(), testAddress)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTrackerLookupFailures(t *testing.T) {
	boom := errors.New("upstream down")
	tests := []struct {
		name    string
		info    *Info
		infoErr error
		txErr   error
		want    error
	}{
		{name: "info error", infoErr: boom, want: boom},
		{name: "transactions error", info: &Info{}, txErr: boom, want: boom},
		{name: "missing info", want: ErrLookupFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := new(mockSource)
			src.On("WalletInfo", mock.Anything, testAddress).Return(tt.info, tt.infoErr)
			src.On("WalletTransactions", mock.Anything, testAddress, DefaultTransactionLimit).Return([]TransactionRecord{}, tt.txErr)
			tracker, err := NewTracker(src, WithCacheTTL(0))
			require.NoError(t, err)
			_, err = tracker.Lookup(context.Background(), testAddress)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTrackerTrackedSet(t *testing.T) {
	tracker, err := NewTracker(nil, WithCacheTTL(0))
	require.NoError(t, err)

	other := "So11111111111111111111111111111111111111112"
	added, err := tracker.Track(testAddress)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = tracker.Track(testAddress)
	require.NoError(t, err)
	assert.False(t, added)
	_, err = tracker.Track(other)
	require.NoError(t, err)
	_, err = tracker.Track("nope")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	assert.Equal(t, []string{testAddress, other}, tracker.Tracked())
	assert.True(t, tracker.Untrack(testAddress))
	assert.False(t, tracker.Untrack(testAddress))
	assert.Equal(t, []string{other}, tracker.Tracked())
}
