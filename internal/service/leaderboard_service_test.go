package service

import (
	"context"
	"testing"

	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaderboardRows() []*models.LeaderboardRow {
	return []*models.LeaderboardRow{
		// passport 1: farcaster 1.0, twitter 0.5 -> 0.35 + 0.15 = 0.50
		{PassportID: 1, AcpID: "acp-1", Platform: models.PlatformFarcaster, NormalizedScore: 1.0},
		{PassportID: 1, AcpID: "acp-1", Platform: models.PlatformTwitter, NormalizedScore: 0.5},
		// passport 2: twitter 1.0 -> 0.30
		{PassportID: 2, AcpID: "acp-2", Platform: models.PlatformTwitter, NormalizedScore: 1.0},
		// passport 3: reddit 1.0, tiktok 1.0 -> 0.30 (ties with 2)
		{PassportID: 3, AcpID: "acp-3", Platform: models.PlatformReddit, NormalizedScore: 1.0},
		{PassportID: 3, AcpID: "acp-3", Platform: models.PlatformTiktok, NormalizedScore: 1.0},
		// passport 4: instagram 0.4 -> 0.02
		{PassportID: 4, AcpID: "acp-4", Platform: models.PlatformInstagram, NormalizedScore: 0.4},
	}
}

func TestGetLeaderboard_RanksAndTieBreak(t *testing.T) {
	pim := newFakePIMRepo()
	pim.board = leaderboardRows()
	svc := NewLeaderboardService(pim)

	board, err := svc.GetLeaderboard(context.Background(), 1, 100, 0)
	require.NoError(t, err)

	assert.Equal(t, 4, board.Total)
	require.Len(t, board.Leaderboard, 4)

	// Dense 1-based ranks, descending total, ties broken by ascending
	// passport id.
	assert.Equal(t, []int{1, 2, 3, 4}, ranks(board.Leaderboard))
	assert.Equal(t, int64(1), board.Leaderboard[0].Passport.ID)
	assert.Equal(t, int64(2), board.Leaderboard[1].Passport.ID)
	assert.Equal(t, int64(3), board.Leaderboard[2].Passport.ID)
	assert.Equal(t, int64(4), board.Leaderboard[3].Passport.ID)

	assert.InDelta(t, 0.50, board.Leaderboard[0].TotalPIM, 1e-9)
	assert.InDelta(t, 0.30, board.Leaderboard[1].TotalPIM, 1e-9)
	assert.InDelta(t, 0.30, board.Leaderboard[2].TotalPIM, 1e-9)
	assert.InDelta(t, 0.02, board.Leaderboard[3].TotalPIM, 1e-9)

	for i := 1; i < len(board.Leaderboard); i++ {
		assert.GreaterOrEqual(t, board.Leaderboard[i-1].TotalPIM, board.Leaderboard[i].TotalPIM)
	}
}

func TestGetLeaderboard_Pagination(t *testing.T) {
	pim := newFakePIMRepo()
	pim.board = leaderboardRows()
	svc := NewLeaderboardService(pim)

	page, err := svc.GetLeaderboard(context.Background(), 1, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Leaderboard, 2)
	assert.Equal(t, []int{2, 3}, ranks(page.Leaderboard))
	assert.Equal(t, int64(2), page.Leaderboard[0].Passport.ID)
	assert.Equal(t, int64(3), page.Leaderboard[1].Passport.ID)

	// Offset past the end yields an empty page, not an error.
	empty, err := svc.GetLeaderboard(context.Background(), 1, 10, 50)
	require.NoError(t, err)
	assert.Empty(t, empty.Leaderboard)
	assert.Equal(t, 4, empty.Total)
}

func TestGetLeaderboard_DefaultEpoch(t *testing.T) {
	pim := newFakePIMRepo()
	svc := NewLeaderboardService(pim)

	board, err := svc.GetLeaderboard(context.Background(), 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, board.Epoch)
	assert.Equal(t, 0, board.Total)
}

func ranks(entries []transfer.LeaderboardEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Rank
	}
	return out
}
