// Package atcoder reads AtCoder data from the kenkoooo resource dumps,
// which is the de-facto API for AtCoder problem and submission data.
package atcoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform"
)

const (
	siteURL        = "https://atcoder.jp"
	defaultBaseURL = "https://kenkoooo.com/atcoder/resources"
)

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

func (c *Client) get(ctx context.Context, resource string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+resource, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: atcoder returned HTTP %d", models.ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	return nil
}

type apiProblem struct {
	ID        string `json:"id"`
	ContestID string `json:"contest_id"`
	Title     string `json:"title"`
}

// GetProblems fetches the full AtCoder problem list. AtCoder problems
// carry no difficulty rating in this dump.
func (c *Client) GetProblems(ctx context.Context) ([]models.Problem, error) {
	var raw []apiProblem
	if err := c.get(ctx, "problems.json", &raw); err != nil {
		return nil, err
	}

	problems := make([]models.Problem, 0, len(raw))
	for _, p := range raw {
		problems = append(problems, models.Problem{
			ProblemID: p.ID,
			Platform:  models.PlatformAtCoder,
			Name:      p.Title,
			URL:       ProblemURL(p.ContestID, p.ID),
		})
	}
	return problems, nil
}

type apiContest struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	StartEpochSecond int64  `json:"start_epoch_second"`
	DurationSecond   int    `json:"duration_second"`
}

// GetContests fetches contests starting after now.
func (c *Client) GetContests(ctx context.Context) ([]models.Contest, error) {
	var raw []apiContest
	if err := c.get(ctx, "contests.json", &raw); err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	contests := make([]models.Contest, 0)
	for _, ct := range raw {
		if ct.StartEpochSecond <= now {
			continue
		}
		contests = append(contests, models.Contest{
			ContestID: "ac-" + ct.ID,
			Platform:  models.PlatformAtCoder,
			Name:      ct.Title,
			StartTime: time.Unix(ct.StartEpochSecond, 0),
			Duration:  ct.DurationSecond / 60,
			URL:       ContestURL(ct.ID),
		})
	}
	return contests, nil
}

type apiSubmission struct {
	ProblemID   string `json:"problem_id"`
	UserID      string `json:"user_id"`
	EpochSecond int64  `json:"epoch_second"`
	Result      string `json:"result"`
	ContestID   string `json:"contest_id"`
}

// GetUserSubmissions fetches a user's accepted submissions from the ac dump.
func (c *Client) GetUserSubmissions(ctx context.Context, handle string) ([]platform.Submission, error) {
	var raw []apiSubmission
	if err := c.get(ctx, "ac.json", &raw); err != nil {
		return nil, err
	}

	subs := make([]platform.Submission, 0)
	for _, s := range raw {
		if s.UserID != handle {
			continue
		}
		verdict := s.Result
		if verdict == "" || verdict == "AC" {
			verdict = platform.VerdictAccepted
		}
		subs = append(subs, platform.Submission{
			ProblemID:   s.ProblemID,
			ProblemName: s.ProblemID,
			Platform:    models.PlatformAtCoder,
			Verdict:     verdict,
			SubmittedAt: time.Unix(s.EpochSecond, 0),
		})
	}
	return subs, nil
}

// GetUserInfo derives a minimal profile from the submission dump.
func (c *Client) GetUserInfo(ctx context.Context, handle string) (*platform.UserInfo, error) {
	subs, err := c.GetUserSubmissions(ctx, handle)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("%w: handle %q", models.ErrNotFound, handle)
	}
	return &platform.UserInfo{
		Handle:      handle,
		Platform:    models.PlatformAtCoder,
		SolvedCount: len(subs),
	}, nil
}

// ProblemURL formats the canonical problem link.
func ProblemURL(contestID, problemID string) string {
	return fmt.Sprintf("%s/contests/%s/tasks/%s", siteURL, contestID, problemID)
}

// ContestURL formats the canonical contest link.
func ContestURL(contestID string) string {
	return fmt.Sprintf("%s/contests/%s", siteURL, contestID)
}
