package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/lockin/domain/apperror"
	domaingroup "github.com/example/lockin/domain/group"
	domain "github.com/example/lockin/domain/leaderboard"
	"github.com/example/lockin/modules/account"
	"github.com/example/lockin/modules/cache"
	"github.com/example/lockin/modules/group"
	"golang.org/x/sync/singleflight"
)

// Ordering selects which ranking a leaderboard read returns.
type Ordering string

const (
	ByTasks Ordering = "tasks"
	ByTime  Ordering = "time"
)

func cacheKey(groupID string, o Ordering) string {
	return fmt.Sprintf("leaderboard:%s:%s", groupID, o)
}

// Service maintains the per-group weekly rankings.
type Service struct {
	repo    *Repository
	groups  group.GroupPort
	stats   account.StatsPort
	cache   cache.Store
	sfGroup singleflight.Group

	// generations count invalidations per group; epoch counts full resets.
	// A read only keeps what it cached if neither moved during its load.
	genMu       sync.Mutex
	generations map[string]uint64
	epoch       uint64
}

// NewService creates a new leaderboard service. A nil store disables caching.
func NewService(repo *Repository, groups group.GroupPort, stats account.StatsPort, store cache.Store) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{repo: repo, groups: groups, stats: stats, cache: store, generations: map[string]uint64{}}
}

// EnsureRankingArrays creates empty lists for the group when it has none.
// It reports false when the group does not exist.
func (s *Service) EnsureRankingArrays(ctx context.Context, groupID string) (bool, error) {
	if groupID == "" {
		return false, apperror.InvalidArgument("groupId is required")
	}
	if _, err := s.membership(ctx, groupID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	err := s.repo.Update(ctx, groupID, func(rk *domain.Ranking) error {
		ensureLists(rk)
		return nil
	})
	if err != nil {
		return false, apperror.Internal(err, "ensure ranking for %s", groupID)
	}
	return true, nil
}

// RecordCompletion adds one completion to a member's entries. Groups that
// require confirmation ignore unconfirmed completions.
func (s *Service) RecordCompletion(ctx context.Context, userID string, actualTime int, groupID string, confirmed bool) error {
	if userID == "" || groupID == "" {
		return apperror.InvalidArgument("userId and groupId are required")
	}
	if actualTime <= 0 {
		return apperror.InvalidArgument("actualTime must be > 0")
	}

	m, err := s.membership(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			log.Printf("[leaderboard] Group %s not found, completion of %s ignored", groupID, userID)
			return nil
		}
		return err
	}
	if m.ConfirmationRequired && !confirmed {
		return nil
	}

	err = s.repo.Update(ctx, groupID, func(rk *domain.Ranking) error {
		ensureLists(rk)
		stats := rk.WeeklyStats()
		found := false
		for i := range stats {
			if stats[i].UserID == userID {
				stats[i].CompletedCount++
				stats[i].CompletedMinutes += actualTime
				found = true
				break
			}
		}
		if !found {
			stats = append(stats, domain.WeeklyStat{UserID: userID, CompletedCount: 1, CompletedMinutes: actualTime})
		}
		rk.RankedByTask, rk.RankedByTime = domain.Build(stats)
		return nil
	})
	if err != nil {
		return apperror.Internal(err, "record completion for %s", groupID)
	}
	s.invalidate(ctx, groupID)
	return nil
}

// RecomputeForUser rebuilds the rankings of every group containing userID
// from the members' current stats.
func (s *Service) RecomputeForUser(ctx context.Context, userID string) error {
	if userID == "" {
		return apperror.InvalidArgument("userId is required")
	}
	memberships, err := s.groups.GroupsContaining(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load groups of %s: %w", userID, err)
	}
	for _, m := range memberships {
		if err := s.rebuild(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeGroup rebuilds one group's rankings. The ranking of a deleted
// group is dropped.
func (s *Service) RecomputeGroup(ctx context.Context, groupID string) error {
	if groupID == "" {
		return apperror.InvalidArgument("groupId is required")
	}
	m, err := s.membership(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			if err := s.repo.Delete(ctx, groupID); err != nil {
				return apperror.Internal(err, "drop ranking for %s", groupID)
			}
			s.invalidate(ctx, groupID)
			return nil
		}
		return err
	}
	return s.rebuild(ctx, *m)
}

func (s *Service) rebuild(ctx context.Context, m domaingroup.Membership) error {
	accounts, err := s.stats.ListStats(ctx, m.Members)
	if err != nil {
		return fmt.Errorf("failed to load stats for group %s: %w", m.GroupID, err)
	}
	stats := make([]domain.WeeklyStat, 0, len(accounts))
	for _, acc := range accounts {
		tasks, minutes := acc.Totals(m.ConfirmationRequired)
		stats = append(stats, domain.WeeklyStat{UserID: acc.UserID, CompletedCount: tasks, CompletedMinutes: minutes})
	}
	byTask, byTime := domain.Build(stats)

	err = s.repo.Update(ctx, m.GroupID, func(rk *domain.Ranking) error {
		rk.RankedByTask, rk.RankedByTime = byTask, byTime
		return nil
	})
	if err != nil {
		return apperror.Internal(err, "rebuild ranking for %s", m.GroupID)
	}
	s.invalidate(ctx, m.GroupID)
	return nil
}

// GetLeaderboardByTasks returns the group's weekly stats ordered by
// completed tasks.
func (s *Service) GetLeaderboardByTasks(ctx context.Context, groupID string) ([]domain.WeeklyStat, error) {
	return s.leaderboard(ctx, groupID, ByTasks)
}

// GetLeaderboardByTime returns the group's weekly stats ordered by
// completed minutes.
func (s *Service) GetLeaderboardByTime(ctx context.Context, groupID string) ([]domain.WeeklyStat, error) {
	return s.leaderboard(ctx, groupID, ByTime)
}

func (s *Service) leaderboard(ctx context.Context, groupID string, o Ordering) ([]domain.WeeklyStat, error) {
	if groupID == "" {
		return nil, apperror.InvalidArgument("groupId is required")
	}
	key := cacheKey(groupID, o)

	var cached []domain.WeeklyStat
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("[leaderboard] Cache error for %s: %v", key, err)
	}
	if found {
		return cached, nil
	}

	gen := s.generation(groupID)
	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		return s.load(ctx, groupID, o)
	})
	if err != nil {
		return nil, err
	}
	stats := val.([]domain.WeeklyStat)

	if err := s.cache.Set(ctx, key, stats); err != nil {
		log.Printf("[leaderboard] Failed to cache %s: %v", key, err)
		return stats, nil
	}
	// a write that landed during the load has already invalidated, so the
	// value just cached may predate it
	if s.generation(groupID) != gen {
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Printf("[leaderboard] Warning: failed to drop stale %s: %v", key, err)
		}
	}
	return stats, nil
}

func (s *Service) load(ctx context.Context, groupID string, o Ordering) ([]domain.WeeklyStat, error) {
	if _, err := s.membership(ctx, groupID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return []domain.WeeklyStat{}, nil
		}
		return nil, err
	}
	rk, err := s.repo.Find(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return []domain.WeeklyStat{}, nil
		}
		return nil, apperror.Internal(err, "load ranking for %s", groupID)
	}
	stats := rk.WeeklyStats()
	if o == ByTime {
		domain.SortByTime(stats)
	} else {
		domain.SortByTasks(stats)
	}
	return stats, nil
}

// ResetWeeklyStats zeroes every group's counts while keeping its members
// listed, and stamps the new week start. It returns the number of groups
// reset.
func (s *Service) ResetWeeklyStats(ctx context.Context, weekStart time.Time) (int, error) {
	if weekStart.IsZero() {
		weekStart = time.Now()
	}
	rankings, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, apperror.Internal(err, "load rankings")
	}
	for i := range rankings {
		rk := &rankings[i]
		ensureLists(rk)
		for j := range rk.RankedByTask {
			rk.RankedByTask[j].CompletedCount = 0
		}
		for j := range rk.RankedByTime {
			rk.RankedByTime[j].CompletedMinutes = 0
		}
		rk.WeekStart = weekStart
		if err := s.repo.Save(ctx, rk); err != nil {
			return i, apperror.Internal(err, "reset ranking for %s", rk.GroupID)
		}
	}
	s.genMu.Lock()
	s.epoch++
	s.genMu.Unlock()
	if err := s.cache.DeletePattern(ctx, "leaderboard:*"); err != nil {
		log.Printf("[leaderboard] Warning: failed to invalidate cache after reset: %v", err)
	}
	log.Printf("[leaderboard] Weekly stats reset for %d groups (week start %s)", len(rankings), weekStart.Format(time.RFC3339))
	return len(rankings), nil
}

func (s *Service) membership(ctx context.Context, groupID string) (*domaingroup.Membership, error) {
	m, err := s.groups.GetMembership(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load group %s: %w", groupID, err)
	}
	return m, nil
}

func (s *Service) generation(groupID string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.epoch + s.generations[groupID]
}

// invalidate bumps the group's generation before deleting, so a read that
// loaded earlier sees the bump after its Set.
func (s *Service) invalidate(ctx context.Context, groupID string) {
	s.genMu.Lock()
	s.generations[groupID]++
	s.genMu.Unlock()
	if err := s.cache.DeletePattern(ctx, "leaderboard:"+groupID+":*"); err != nil {
		log.Printf("[leaderboard] Warning: failed to invalidate cache for %s: %v", groupID, err)
	}
}

func ensureLists(rk *domain.Ranking) {
	if rk.RankedByTask == nil {
		rk.RankedByTask = []domain.TaskRank{}
	}
	if rk.RankedByTime == nil {
		rk.RankedByTime = []domain.TimeRank{}
	}
}
