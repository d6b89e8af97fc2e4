package service

import (
	"context"
	"sort"

	config "github.com/contentpassport/pimtrack/configs"
	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/repository"
	"github.com/contentpassport/pimtrack/internal/transfer"
)

const defaultLeaderboardLimit = 100

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, epoch, limit, offset int) (*transfer.Leaderboard, error)
}

type leaderboardService struct {
	pr repository.PIMRepository
}

func NewLeaderboardService(pr repository.PIMRepository) LeaderboardService {
	return &leaderboardService{pr: pr}
}

// GetLeaderboard recomputes each passport's total from its per-platform
// rows and the current weight table rather than trusting a stored
// aggregate. Ties break on ascending passport id so pagination is
// stable across repeated calls.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, epoch, limit, offset int) (*transfer.Leaderboard, error) {
	if epoch <= 0 {
		epoch = 1
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pr.ListLeaderboardRows(ctx, epoch)
	if err != nil {
		return nil, err
	}

	type aggregate struct {
		passport models.PassportSummary
		total    float64
	}

	byPassport := make(map[int64]*aggregate)
	for _, row := range rows {
		agg, ok := byPassport[row.PassportID]
		if !ok {
			agg = &aggregate{passport: models.PassportSummary{
				ID:         row.PassportID,
				AcpID:      row.AcpID,
				Prompt:     row.Prompt,
				PreviewURL: row.PreviewURL,
			}}
			byPassport[row.PassportID] = agg
		}
		agg.total += row.NormalizedScore * config.PlatformWeights[row.Platform]
	}

	aggregates := make([]*aggregate, 0, len(byPassport))
	for _, agg := range byPassport {
		if agg.total > 1 {
			agg.total = 1
		}
		aggregates = append(aggregates, agg)
	}
	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].total != aggregates[j].total {
			return aggregates[i].total > aggregates[j].total
		}
		return aggregates[i].passport.ID < aggregates[j].passport.ID
	})

	board := &transfer.Leaderboard{
		Epoch: epoch,
		Total: len(aggregates),
	}

	end := offset + limit
	if offset > len(aggregates) {
		offset = len(aggregates)
	}
	if end > len(aggregates) {
		end = len(aggregates)
	}
	for i, agg := range aggregates[offset:end] {
		board.Leaderboard = append(board.Leaderboard, transfer.LeaderboardEntry{
			Rank:     offset + i + 1,
			Passport: agg.passport,
			TotalPIM: agg.total,
		})
	}

	return board, nil
}
