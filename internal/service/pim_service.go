package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	config "github.com/contentpassport/pimtrack/configs"
	"github.com/contentpassport/pimtrack/internal/models"
	"github.com/contentpassport/pimtrack/internal/repository"
	"github.com/contentpassport/pimtrack/internal/transfer"
)

type PIMService interface {
	CalculatePIM(ctx context.Context, passportID int64, epoch int) (*transfer.PIMResult, error)
	GetPIM(ctx context.Context, passportID int64, epoch int) (*transfer.PIMOverview, error)
}

type pimService struct {
	mr repository.MatchRepository
	pr repository.PIMRepository
	pa repository.PassportRepository
}

func NewPIMService(
	mr repository.MatchRepository,
	pr repository.PIMRepository,
	pa repository.PassportRepository) PIMService {
	return &pimService{
		mr: mr,
		pr: pr,
		pa: pa,
	}
}

// CalculatePIM rescores a passport for an epoch from its matches and
// each matched post's latest engagement snapshot.
//
// Normalization is scoped to the passport: the best-performing platform
// lands at exactly 1.0, so a single platform's normalized score is not
// comparable across passports. The denominator is floored at a raw
// score of 1, so when even the best platform's raw score is under 1 it
// normalizes below 1.0. The result is best effort as of
// request time; concurrent runs for the same key converge through the
// unique-key upsert.
func (s *pimService) CalculatePIM(ctx context.Context, passportID int64, epoch int) (*transfer.PIMResult, error) {
	if epoch <= 0 {
		epoch = 1
	}

	_, exists, err := s.pa.GetByID(ctx, passportID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("passport %d: %w", passportID, ErrNotFound)
	}

	rows, err := s.mr.ListEngagementByPassportID(ctx, passportID)
	if err != nil {
		return nil, err
	}

	scores := scorePlatforms(rows)

	result := &transfer.PIMResult{
		PassportID: passportID,
		Epoch:      epoch,
		TotalPIM:   totalPIM(scores),
		ByPlatform: scores,
	}

	for _, ps := range scores {
		_, err := s.pr.Upsert(ctx, &models.PIMCalculation{
			PassportID:      passportID,
			Epoch:           epoch,
			Platform:        ps.Platform,
			RawScore:        ps.RawScore,
			NormalizedScore: ps.NormalizedScore,
			PostCount:       ps.PostCount,
		})
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
	}

	return result, nil
}

// GetPIM returns the stored scores without recomputing raw data. The
// total is re-derived from the per-platform rows and the weight table,
// never read from a stored aggregate. An epoch of 0 selects the highest
// epoch with any rows.
func (s *pimService) GetPIM(ctx context.Context, passportID int64, epoch int) (*transfer.PIMOverview, error) {
	_, exists, err := s.pa.GetByID(ctx, passportID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("passport %d: %w", passportID, ErrNotFound)
	}

	if epoch <= 0 {
		latest, ok, err := s.pr.LatestEpoch(ctx, passportID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &transfer.PIMOverview{PassportID: passportID}, nil
		}
		epoch = latest
	}

	all, err := s.pr.ListByPassport(ctx, passportID)
	if err != nil {
		return nil, err
	}

	overview := &transfer.PIMOverview{
		PassportID:  passportID,
		LatestEpoch: epoch,
		History:     groupByEpoch(all),
	}
	for _, es := range overview.History {
		if es.Epoch == epoch {
			overview.CurrentPIM = es.TotalPIM
			break
		}
	}

	return overview, nil
}

// scorePlatforms computes the per-platform raw and normalized scores
// per the weighting scheme: raw = weighted engagement sum, normalized =
// log10(1+raw) / log10(1+maxRaw) with maxRaw floored at 1.
func scorePlatforms(rows []*models.MatchedEngagement) []transfer.PlatformScore {
	raw := make(map[string]float64)
	counts := make(map[string]int)
	for _, row := range rows {
		raw[row.Platform] += rawScore(row)
		counts[row.Platform]++
	}

	maxRaw := 1.0
	for _, v := range raw {
		if v > maxRaw {
			maxRaw = v
		}
	}

	scores := make([]transfer.PlatformScore, 0, len(raw))
	for platform, v := range raw {
		normalized := math.Log10(1+v) / math.Log10(1+maxRaw)
		if normalized > 1 {
			normalized = 1
		}
		scores = append(scores, transfer.PlatformScore{
			Platform:        platform,
			RawScore:        v,
			NormalizedScore: normalized,
			PostCount:       counts[platform],
		})
	}
	sort.Slice(scores, func(i, j int) bool {
		return scores[i].Platform < scores[j].Platform
	})

	return scores
}

func rawScore(row *models.MatchedEngagement) float64 {
	w := config.EngagementWeights
	return w["views"]*float64(row.Views) +
		w["likes"]*float64(row.Likes) +
		w["shares"]*float64(row.Shares) +
		w["comments"]*float64(row.Comments)
}

func totalPIM(scores []transfer.PlatformScore) float64 {
	var total float64
	for _, ps := range scores {
		total += ps.NormalizedScore * config.PlatformWeights[ps.Platform]
	}
	if total > 1 {
		total = 1
	}
	return total
}

func groupByEpoch(calcs []*models.PIMCalculation) []transfer.EpochScore {
	byEpoch := make(map[int][]*models.PIMCalculation)
	var epochs []int
	for _, c := range calcs {
		if _, seen := byEpoch[c.Epoch]; !seen {
			epochs = append(epochs, c.Epoch)
		}
		byEpoch[c.Epoch] = append(byEpoch[c.Epoch], c)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(epochs)))

	history := make([]transfer.EpochScore, 0, len(epochs))
	for _, epoch := range epochs {
		es := transfer.EpochScore{Epoch: epoch}
		for _, c := range byEpoch[epoch] {
			es.ByPlatform = append(es.ByPlatform, transfer.PlatformScore{
				Platform:        c.Platform,
				RawScore:        c.RawScore,
				NormalizedScore: c.NormalizedScore,
				PostCount:       c.PostCount,
			})
			es.TotalPIM += c.NormalizedScore * config.PlatformWeights[c.Platform]
			if c.CalculatedAt.After(es.CalculatedAt) {
				es.CalculatedAt = c.CalculatedAt
			}
		}
		if es.TotalPIM > 1 {
			es.TotalPIM = 1
		}
		history = append(history, es)
	}

	return history
}
