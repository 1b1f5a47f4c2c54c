package forward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/settlement"
)

func TestOnTnChain_SwapPointAt(t *testing.T) {
	chain := &OnTnChain{OnSwapPoint: d("3"), TnSwapPoint: d("3"), OnDays: 1, TnDays: 1}

	tests := []struct {
		days int
		want string
	}{
		{0, "-6"},
		{1, "-3"},
		{2, "0"},
	}
	for _, tt := range tests {
		got, err := chain.SwapPointAt(tt.days)
		require.NoError(t, err)
		assert.True(t, got.Equal(d(tt.want)), "day %d: got %s want %s", tt.days, got, tt.want)
	}

	_, err := chain.SwapPointAt(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = chain.SwapPointAt(3)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestOnTnChain_WeekendStretch(t *testing.T) {
	// friday trade: ON on monday (3 days), TN over a 4-day holiday block
	chain := &OnTnChain{OnSwapPoint: d("2.1"), TnSwapPoint: d("4.9"), OnDays: 3, TnDays: 4}

	got, err := chain.SwapPointAt(3)
	require.NoError(t, err)
	assert.True(t, got.Equal(d("-4.9")), "ON date, got %s", got)

	// between today and SPOT, linear from -7 to 0 over 7 days
	got, err = chain.SwapPointAt(1)
	require.NoError(t, err)
	assert.True(t, got.Equal(d("-6")), "got %s", got)

	got, err = chain.SwapPointAt(5)
	require.NoError(t, err)
	assert.True(t, got.Equal(d("-2")), "got %s", got)

	assert.Equal(t, 7, chain.TotalDays())
}

func TestNewOnTnChain(t *testing.T) {
	calc := settlement.Default()
	a := calc.Anchor(time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC))
	now := time.Date(2025, 9, 12, 8, 0, 0, 0, time.UTC)

	rows := []domain.OnTnRate{
		{Tenor: domain.TenorON, SwapPoint: d("1.5"), UploadedAt: now},
		{Tenor: domain.TenorON, SwapPoint: d("2.1"), UploadedAt: now.Add(time.Hour)},
		{Tenor: domain.TenorTN, SwapPoint: d("4.9"), UploadedAt: now},
	}

	chain, err := NewOnTnChain(a, rows, calc)
	require.NoError(t, err)

	assert.True(t, chain.OnSwapPoint.Equal(d("2.1")), "latest ON row wins")
	assert.True(t, chain.TnSwapPoint.Equal(d("4.9")))
	assert.Equal(t, 3, chain.OnDays)
	assert.Equal(t, 4, chain.TnDays)
}

func TestNewOnTnChain_Missing(t *testing.T) {
	calc := settlement.Default()
	a := calc.Anchor(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	_, err := NewOnTnChain(a, []domain.OnTnRate{{Tenor: domain.TenorON, SwapPoint: d("3")}}, calc)
	assert.ErrorIs(t, err, ErrMissingOnTnData)

	_, err = NewOnTnChain(a, nil, calc)
	assert.ErrorIs(t, err, ErrMissingOnTnData)
}
