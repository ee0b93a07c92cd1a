package poker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputePotsNoSidePots(t *testing.T) {
	contribs := []Contribution{
		{SeatID: "a", Amount: 100, Eligible: true},
		{SeatID: "b", Amount: 100, Eligible: true},
	}
	pots := ComputePots(contribs)
	require.Len(t, pots, 1)
	require.EqualValues(t, 200, pots[0].Amount)
	require.EqualValues(t, 200, TotalPotAmount(pots))
}

func TestComputePotsLayersByAllInAmount(t *testing.T) {
	// a is all-in for 50, b all-in for 150, c covers both at 300.
	contribs := []Contribution{
		{SeatID: "a", Amount: 50, Eligible: true},
		{SeatID: "b", Amount: 150, Eligible: true},
		{SeatID: "c", Amount: 300, Eligible: true},
	}
	pots := ComputePots(contribs)
	require.Len(t, pots, 3)

	require.EqualValues(t, 150, pots[0].Amount) // 50 * 3 contributors
	require.True(t, pots[0].Eligible["a"])
	require.True(t, pots[0].Eligible["b"])
	require.True(t, pots[0].Eligible["c"])

	require.EqualValues(t, 200, pots[1].Amount) // (150-50) * 2 contributors
	require.False(t, pots[1].Eligible["a"])
	require.True(t, pots[1].Eligible["b"])
	require.True(t, pots[1].Eligible["c"])

	require.EqualValues(t, 150, pots[2].Amount) // (300-150) * 1 contributor
	require.False(t, pots[2].Eligible["b"])
	require.True(t, pots[2].Eligible["c"])

	require.EqualValues(t, 500, TotalPotAmount(pots))
}

func TestComputePotsExcludesFoldedFromEligibility(t *testing.T) {
	contribs := []Contribution{
		{SeatID: "a", Amount: 100, Eligible: false}, // folded, still contributed
		{SeatID: "b", Amount: 100, Eligible: true},
	}
	pots := ComputePots(contribs)
	require.Len(t, pots, 1)
	require.EqualValues(t, 200, pots[0].Amount)
	require.False(t, pots[0].Eligible["a"])
	require.True(t, pots[0].Eligible["b"])
}
