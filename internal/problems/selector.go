// Package problems selects concrete problems matching a target rating
// or topic from the platform problem sets.
package problems

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
)

// Tolerance windows around the requested rating. Kept as named constants
// rather than literals so they can be tuned in one place.
const (
	RatingTolerance      = 100
	TopicRatingTolerance = 200
)

// CodeforcesSource provides the Codeforces problemset with optional tag filter.
type CodeforcesSource interface {
	GetProblems(ctx context.Context, tags []string) ([]models.Problem, error)
}

// AtCoderSource provides the AtCoder problem list (unrated).
type AtCoderSource interface {
	GetProblems(ctx context.Context) ([]models.Problem, error)
}

// LeetCodeSource provides LeetCode questions.
type LeetCodeSource interface {
	GetRandomProblem(ctx context.Context, difficulty string) (*models.Problem, error)
	GetProblemsByTopic(ctx context.Context, topic string, limit int) ([]models.Problem, error)
}

type Selector struct {
	codeforces CodeforcesSource
	atcoder    AtCoderSource
	leetcode   LeetCodeSource
	logger     logger.Logger
	pick       func(n int) int
}

func NewSelector(cf CodeforcesSource, ac AtCoderSource, lc LeetCodeSource, log logger.Logger) *Selector {
	return &Selector{
		codeforces: cf,
		atcoder:    ac,
		leetcode:   lc,
		logger:     log,
		pick:       rand.Intn,
	}
}

// Select returns one problem matching the given constraints from the
// given platform. rating == 0 means no rating constraint, topic == ""
// means no topic constraint; at least one must be given. Selection among
// candidates is uniform random.
func (s *Selector) Select(ctx context.Context, platformTag string, rating int, topic string) (*models.Problem, error) {
	if rating == 0 && topic == "" {
		return nil, fmt.Errorf("%w: rating or topic required", models.ErrInvalidInput)
	}

	candidates, err := s.candidates(ctx, platformTag, rating, topic)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.logger.Warnf("no problems matched platform=%s rating=%d topic=%q", platformTag, rating, topic)
		return nil, fmt.Errorf("%w: no matching problems", models.ErrUnavailable)
	}

	chosen := candidates[s.pick(len(candidates))]
	return &chosen, nil
}

// SelectAny returns a uniformly random problem with no constraints,
// for the plain /daily command.
func (s *Selector) SelectAny(ctx context.Context, platformTag string) (*models.Problem, error) {
	var (
		pool []models.Problem
		err  error
	)
	switch platformTag {
	case models.PlatformAtCoder:
		pool, err = s.atcoder.GetProblems(ctx)
	case models.PlatformLeetCode:
		return s.leetcode.GetRandomProblem(ctx, "")
	default:
		pool, err = s.codeforces.GetProblems(ctx, nil)
	}
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: empty problem set", models.ErrUnavailable)
	}

	chosen := pool[s.pick(len(pool))]
	return &chosen, nil
}

func (s *Selector) candidates(ctx context.Context, platformTag string, rating int, topic string) ([]models.Problem, error) {
	var (
		pool []models.Problem
		err  error
	)

	// The LeetCode topic endpoint filters server-side; only the other
	// pools need the local tag check.
	filterTopic := topic

	switch platformTag {
	case models.PlatformAtCoder:
		pool, err = s.atcoder.GetProblems(ctx)
	case models.PlatformLeetCode:
		if topic != "" {
			pool, err = s.leetcode.GetProblemsByTopic(ctx, topic, 50)
			filterTopic = ""
		} else {
			p, perr := s.leetcode.GetRandomProblem(ctx, difficultyFor(rating))
			if perr != nil {
				return nil, perr
			}
			return []models.Problem{*p}, nil
		}
	default:
		var tags []string
		if topic != "" {
			tags = []string{NormalizeTopic(topic)}
		}
		pool, err = s.codeforces.GetProblems(ctx, tags)
	}
	if err != nil {
		return nil, err
	}

	tolerance := RatingTolerance
	if topic != "" {
		tolerance = TopicRatingTolerance
	}

	matched := make([]models.Problem, 0)
	for _, p := range pool {
		if filterTopic != "" && !hasTag(p.Tags, filterTopic) {
			continue
		}
		if rating > 0 {
			if p.Rating == nil {
				continue
			}
			if diff := *p.Rating - rating; diff < -tolerance || diff > tolerance {
				continue
			}
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func hasTag(tags []string, topic string) bool {
	want := strings.ToLower(NormalizeTopic(topic))
	for _, tag := range tags {
		if strings.ToLower(tag) == want {
			return true
		}
	}
	return false
}

// difficultyFor maps a rating target onto a LeetCode difficulty tier.
func difficultyFor(rating int) string {
	switch {
	case rating == 0:
		return ""
	case rating < 1300:
		return "EASY"
	case rating < 2000:
		return "MEDIUM"
	default:
		return "HARD"
	}
}

// NormalizeTopic maps common topic aliases onto the tag names the
// platforms actually use.
func NormalizeTopic(topic string) string {
	aliases := map[string]string{
		"dynamic programming": "dp",
		"graph":               "graphs",
		"tree":                "trees",
		"bfs":                 "graphs",
		"dfs":                 "graphs",
		"bs":                  "binary search",
		"constructive":        "constructive algorithms",
	}
	lower := strings.ToLower(topic)
	if mapped, ok := aliases[lower]; ok {
		return mapped
	}
	return lower
}
