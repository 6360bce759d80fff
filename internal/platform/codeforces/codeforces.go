// Package codeforces talks to the public Codeforces REST API.
package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform"
)

const defaultBaseURL = "https://codeforces.com/api"

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

func New(log logger.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log,
	}
}

// NewWithBaseURL is used by tests to point the client at a stub server.
func NewWithBaseURL(baseURL string, log logger.Logger) *Client {
	c := New(log)
	c.baseURL = baseURL
	return c
}

// envelope is the common Codeforces API response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

func (c *Client) request(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	u := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: codeforces returned HTTP %d", models.ErrUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	if env.Status != "OK" {
		c.logger.Warnf("codeforces API error on %s: %s", endpoint, env.Comment)
		return fmt.Errorf("%w: %s", models.ErrUnavailable, env.Comment)
	}

	return json.Unmarshal(env.Result, out)
}

type apiUser struct {
	Handle    string `json:"handle"`
	Rating    int    `json:"rating"`
	MaxRating int    `json:"maxRating"`
	Rank      string `json:"rank"`
}

// GetUserInfo fetches a profile snapshot for a handle.
func (c *Client) GetUserInfo(ctx context.Context, handle string) (*platform.UserInfo, error) {
	params := url.Values{"handles": {handle}}

	var users []apiUser
	if err := c.request(ctx, "user.info", params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: handle %q", models.ErrNotFound, handle)
	}

	u := users[0]
	rank := u.Rank
	if rank == "" {
		rank = "unrated"
	}
	return &platform.UserInfo{
		Handle:    u.Handle,
		Platform:  models.PlatformCodeforces,
		Rating:    u.Rating,
		MaxRating: u.MaxRating,
		Rank:      rank,
	}, nil
}

type apiProblem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    *int     `json:"rating"`
	Tags      []string `json:"tags"`
}

type apiSubmission struct {
	ID                  int64      `json:"id"`
	CreationTimeSeconds int64      `json:"creationTimeSeconds"`
	Verdict             string     `json:"verdict"`
	Problem             apiProblem `json:"problem"`
}

// GetUserSubmissions fetches a user's most recent submissions.
func (c *Client) GetUserSubmissions(ctx context.Context, handle string, count int) ([]platform.Submission, error) {
	params := url.Values{
		"handle": {handle},
		"from":   {"1"},
		"count":  {fmt.Sprintf("%d", count)},
	}

	var raw []apiSubmission
	if err := c.request(ctx, "user.status", params, &raw); err != nil {
		return nil, err
	}

	subs := make([]platform.Submission, 0, len(raw))
	for _, s := range raw {
		subs = append(subs, platform.Submission{
			ProblemID:   fmt.Sprintf("%d-%s", s.Problem.ContestID, s.Problem.Index),
			ProblemName: s.Problem.Name,
			Platform:    models.PlatformCodeforces,
			Verdict:     s.Verdict, // Codeforces already uses "OK" for accepted
			Rating:      s.Problem.Rating,
			SubmittedAt: time.Unix(s.CreationTimeSeconds, 0),
		})
	}
	return subs, nil
}

type apiProblemset struct {
	Problems []apiProblem `json:"problems"`
}

// GetProblems fetches the problemset, optionally filtered by tags.
func (c *Client) GetProblems(ctx context.Context, tags []string) ([]models.Problem, error) {
	params := url.Values{}
	if len(tags) > 0 {
		joined := ""
		for i, tag := range tags {
			if i > 0 {
				joined += ";"
			}
			joined += tag
		}
		params.Set("tags", joined)
	}

	var set apiProblemset
	if err := c.request(ctx, "problemset.problems", params, &set); err != nil {
		return nil, err
	}

	problems := make([]models.Problem, 0, len(set.Problems))
	for _, p := range set.Problems {
		if p.ContestID == 0 || p.Index == "" {
			continue
		}
		problems = append(problems, models.Problem{
			ProblemID: fmt.Sprintf("%d-%s", p.ContestID, p.Index),
			Platform:  models.PlatformCodeforces,
			Name:      p.Name,
			Rating:    p.Rating,
			Tags:      p.Tags,
			URL:       ProblemURL(p.ContestID, p.Index),
		})
	}
	return problems, nil
}

type apiContest struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Phase            string `json:"phase"`
	StartTimeSeconds int64  `json:"startTimeSeconds"`
	DurationSeconds  int    `json:"durationSeconds"`
}

// GetContests fetches upcoming contests.
func (c *Client) GetContests(ctx context.Context) ([]models.Contest, error) {
	var raw []apiContest
	if err := c.request(ctx, "contest.list", url.Values{}, &raw); err != nil {
		return nil, err
	}

	contests := make([]models.Contest, 0)
	for _, ct := range raw {
		if ct.Phase != "BEFORE" {
			continue
		}
		contests = append(contests, models.Contest{
			ContestID: fmt.Sprintf("cf-%d", ct.ID),
			Platform:  models.PlatformCodeforces,
			Name:      ct.Name,
			StartTime: time.Unix(ct.StartTimeSeconds, 0),
			Duration:  ct.DurationSeconds / 60,
			URL:       ContestURL(ct.ID),
		})
	}
	return contests, nil
}

// ProblemURL formats the canonical problem link.
func ProblemURL(contestID int, index string) string {
	return fmt.Sprintf("https://codeforces.com/problemset/problem/%d/%s", contestID, index)
}

// ContestURL formats the canonical contest link.
func ContestURL(contestID int) string {
	return fmt.Sprintf("https://codeforces.com/contest/%d", contestID)
}

// RankEmoji maps a Codeforces rank onto its traditional color.
func RankEmoji(rank string) string {
	switch rank {
	case "newbie":
		return "⚪"
	case "pupil":
		return "🟢"
	case "specialist":
		return "🔵"
	case "expert":
		return "💙"
	case "candidate master":
		return "💜"
	case "master", "international master":
		return "🟠"
	case "grandmaster", "international grandmaster", "legendary grandmaster":
		return "🔴"
	default:
		return "⚪"
	}
}
