package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"taskpoints-service/internal/apperr"
	"taskpoints-service/internal/model"
	"taskpoints-service/internal/repository"
	"taskpoints-service/internal/store"

	"go.uber.org/zap"
)

// PodiumSize is how many standings the podium view shows
const PodiumSize = 3

// Standing is one leaderboard row
type Standing struct {
	Rank        int    `json:"rank"`
	UID         string `json:"uid"`
	Name        string `json:"name"`
	TotalEarned int    `json:"total_earned"`
	Presence    string `json:"presence"`
}

// LeaderboardService derives ranked standings from profiles, with a
// read-through cache invalidated whenever a verification changes points.
type LeaderboardService struct {
	users repository.UserRepository
	cache store.KV
	ttl   time.Duration
	log   *zap.Logger
}

func NewLeaderboardService(users repository.UserRepository, cache store.KV, ttl time.Duration, log *zap.Logger) *LeaderboardService {
	return &LeaderboardService{users: users, cache: cache, ttl: ttl, log: log}
}

// Standings returns a tenant's employees ranked by total points earned.
// Sorting is stable and descending; ties keep fetch order. The rank of a row
// is 1 plus the number of rows with strictly more points, so ties share a
// rank value.
func (s *LeaderboardService) Standings(ctx context.Context, companyID string) ([]Standing, error) {
	if cached, ok := s.fromCache(ctx, companyID); ok {
		return cached, nil
	}

	profiles, err := s.users.ProfilesByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	standings := ComputeStandings(profiles)
	s.toCache(ctx, companyID, standings)
	return standings, nil
}

// Podium returns the top standings for the podium display
func (s *LeaderboardService) Podium(ctx context.Context, companyID string) ([]Standing, error) {
	standings, err := s.Standings(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(standings) > PodiumSize {
		standings = standings[:PodiumSize]
	}
	return standings, nil
}

// RankOf returns the standing of a single employee
func (s *LeaderboardService) RankOf(ctx context.Context, companyID, uid string) (*Standing, error) {
	standings, err := s.Standings(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for i := range standings {
		if standings[i].UID == uid {
			return &standings[i], nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "employee not on the leaderboard")
}

// Invalidate drops the cached standings for a tenant. Cache failures are
// logged and swallowed; the next read recomputes from the store.
func (s *LeaderboardService) Invalidate(ctx context.Context, companyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, standingsKey(companyID)); err != nil {
		s.log.Warn("Failed to invalidate leaderboard cache",
			zap.String("company_id", companyID), zap.Error(err))
	}
}

// ComputeStandings ranks non-manager profiles by totalEarned
func ComputeStandings(profiles []model.UserProfile) []Standing {
	ranked := make([]model.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.Role != model.RoleManager {
			ranked = append(ranked, p)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PointsStats.TotalEarned > ranked[j].PointsStats.TotalEarned
	})

	standings := make([]Standing, len(ranked))
	for i, p := range ranked {
		rank := 1
		for _, other := range ranked {
			if other.PointsStats.TotalEarned > p.PointsStats.TotalEarned {
				rank++
			}
		}
		standings[i] = Standing{
			Rank:        rank,
			UID:         p.UID,
			Name:        p.Name,
			TotalEarned: p.PointsStats.TotalEarned,
			Presence:    p.Presence,
		}
	}
	return standings
}

func (s *LeaderboardService) fromCache(ctx context.Context, companyID string) ([]Standing, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, standingsKey(companyID))
	if err != nil {
		if err != store.ErrMiss {
			s.log.Warn("Leaderboard cache read failed",
				zap.String("company_id", companyID), zap.Error(err))
		}
		return nil, false
	}
	var standings []Standing
	if err := json.Unmarshal([]byte(raw), &standings); err != nil {
		s.log.Warn("Corrupt leaderboard cache entry, recomputing",
			zap.String("company_id", companyID), zap.Error(err))
		return nil, false
	}
	return standings, true
}

func (s *LeaderboardService) toCache(ctx context.Context, companyID string, standings []Standing) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(standings)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, standingsKey(companyID), string(raw), s.ttl); err != nil {
		s.log.Warn("Leaderboard cache write failed",
			zap.String("company_id", companyID), zap.Error(err))
	}
}

func standingsKey(companyID string) string {
	return "leaderboard:" + companyID
}
