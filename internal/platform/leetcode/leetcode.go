// Package leetcode talks to the LeetCode GraphQL API.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform"
)

const (
	siteURL        = "https://leetcode.com"
	defaultGraphQL = siteURL + "/graphql"
)

type Client struct {
	graphqlURL string
	httpClient *http.Client
	logger     logger.Logger
}

func New(log logger.Logger) *Client {
	return &Client{
		graphqlURL: defaultGraphQL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log,
	}
}

// NewWithURL is used by tests to point the client at a stub server.
func NewWithURL(graphqlURL string, log logger.Logger) *Client {
	c := New(log)
	c.graphqlURL = graphqlURL
	return c
}

func (c *Client) query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: leetcode returned HTTP %d", models.ErrUnavailable, resp.StatusCode)
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return fmt.Errorf("%w: %v", models.ErrUnavailable, err)
	}
	return json.Unmarshal(wrapper.Data, out)
}

type topicTag struct {
	Name string `json:"name"`
}

type question struct {
	QuestionID string     `json:"questionId"`
	Title      string     `json:"title"`
	TitleSlug  string     `json:"titleSlug"`
	Difficulty string     `json:"difficulty"`
	TopicTags  []topicTag `json:"topicTags"`
}

func (q question) toProblem() models.Problem {
	tags := make([]string, 0, len(q.TopicTags))
	for _, t := range q.TopicTags {
		tags = append(tags, t.Name)
	}
	return models.Problem{
		ProblemID: "lc-" + q.TitleSlug,
		Platform:  models.PlatformLeetCode,
		Name:      q.Title,
		Rating:    difficultyRating(q.Difficulty),
		Tags:      tags,
		URL:       ProblemURL(q.TitleSlug),
	}
}

// GetUserInfo fetches profile stats for a username.
func (c *Client) GetUserInfo(ctx context.Context, username string) (*platform.UserInfo, error) {
	const q = `
	query getUserProfile($username: String!) {
		matchedUser(username: $username) {
			username
			profile { ranking }
			submitStats {
				acSubmissionNum { difficulty count }
			}
		}
	}`

	var result struct {
		MatchedUser *struct {
			Username string `json:"username"`
			Profile  struct {
				Ranking int `json:"ranking"`
			} `json:"profile"`
			SubmitStats struct {
				ACSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStats"`
		} `json:"matchedUser"`
	}
	if err := c.query(ctx, q, map[string]interface{}{"username": username}, &result); err != nil {
		return nil, err
	}
	if result.MatchedUser == nil {
		return nil, fmt.Errorf("%w: username %q", models.ErrNotFound, username)
	}

	solved := 0
	for _, n := range result.MatchedUser.SubmitStats.ACSubmissionNum {
		if n.Difficulty == "All" {
			solved = n.Count
		}
	}
	return &platform.UserInfo{
		Handle:      result.MatchedUser.Username,
		Platform:    models.PlatformLeetCode,
		Rating:      result.MatchedUser.Profile.Ranking,
		SolvedCount: solved,
	}, nil
}

// GetUserSubmissions fetches a user's recent submissions.
func (c *Client) GetUserSubmissions(ctx context.Context, username string, limit int) ([]platform.Submission, error) {
	const q = `
	query getRecentSubmissions($username: String!, $limit: Int!) {
		recentSubmissionList(username: $username, limit: $limit) {
			title
			titleSlug
			timestamp
			statusDisplay
		}
	}`

	var result struct {
		RecentSubmissionList []struct {
			Title         string `json:"title"`
			TitleSlug     string `json:"titleSlug"`
			Timestamp     string `json:"timestamp"`
			StatusDisplay string `json:"statusDisplay"`
		} `json:"recentSubmissionList"`
	}
	vars := map[string]interface{}{"username": username, "limit": limit}
	if err := c.query(ctx, q, vars, &result); err != nil {
		return nil, err
	}

	subs := make([]platform.Submission, 0, len(result.RecentSubmissionList))
	for _, s := range result.RecentSubmissionList {
		verdict := s.StatusDisplay
		if verdict == "Accepted" {
			verdict = platform.VerdictAccepted
		}
		ts, _ := strconv.ParseInt(s.Timestamp, 10, 64)
		subs = append(subs, platform.Submission{
			ProblemID:   "lc-" + s.TitleSlug,
			ProblemName: s.Title,
			Platform:    models.PlatformLeetCode,
			Verdict:     verdict,
			SubmittedAt: time.Unix(ts, 0),
		})
	}
	return subs, nil
}

// GetDailyQuestion fetches the official daily coding challenge.
func (c *Client) GetDailyQuestion(ctx context.Context) (*models.Problem, error) {
	const q = `
	query questionOfToday {
		activeDailyCodingChallengeQuestion {
			question {
				questionId
				title
				titleSlug
				difficulty
				topicTags { name }
			}
		}
	}`

	var result struct {
		ActiveDailyCodingChallengeQuestion *struct {
			Question question `json:"question"`
		} `json:"activeDailyCodingChallengeQuestion"`
	}
	if err := c.query(ctx, q, nil, &result); err != nil {
		return nil, err
	}
	if result.ActiveDailyCodingChallengeQuestion == nil {
		return nil, fmt.Errorf("%w: no daily question returned", models.ErrUnavailable)
	}

	p := result.ActiveDailyCodingChallengeQuestion.Question.toProblem()
	return &p, nil
}

// GetRandomProblem asks LeetCode for a random question, optionally by difficulty.
func (c *Client) GetRandomProblem(ctx context.Context, difficulty string) (*models.Problem, error) {
	const q = `
	query randomQuestion($categorySlug: String!, $filters: QuestionListFilterInput) {
		randomQuestion(categorySlug: $categorySlug, filters: $filters) {
			questionId
			title
			titleSlug
			difficulty
			topicTags { name }
		}
	}`

	filters := map[string]interface{}{}
	if difficulty != "" {
		filters["difficulty"] = difficulty
	}
	vars := map[string]interface{}{
		"categorySlug": "all-code-essentials",
		"filters":      filters,
	}

	var result struct {
		RandomQuestion *question `json:"randomQuestion"`
	}
	if err := c.query(ctx, q, vars, &result); err != nil {
		return nil, err
	}
	if result.RandomQuestion == nil {
		return nil, fmt.Errorf("%w: no random question returned", models.ErrUnavailable)
	}

	p := result.RandomQuestion.toProblem()
	return &p, nil
}

// GetProblemsByTopic fetches questions carrying a topic tag.
func (c *Client) GetProblemsByTopic(ctx context.Context, topic string, limit int) ([]models.Problem, error) {
	const q = `
	query problemsetQuestionList($categorySlug: String!, $limit: Int!, $filters: QuestionListFilterInput) {
		problemsetQuestionList: questionList(
			categorySlug: $categorySlug
			limit: $limit
			filters: $filters
		) {
			questions: data {
				questionId
				title
				titleSlug
				difficulty
				topicTags { name }
			}
		}
	}`

	vars := map[string]interface{}{
		"categorySlug": "all-code-essentials",
		"limit":        limit,
		"filters":      map[string]interface{}{"tags": []string{topic}},
	}

	var result struct {
		ProblemsetQuestionList *struct {
			Questions []question `json:"questions"`
		} `json:"problemsetQuestionList"`
	}
	if err := c.query(ctx, q, vars, &result); err != nil {
		return nil, err
	}
	if result.ProblemsetQuestionList == nil {
		return nil, fmt.Errorf("%w: empty question list", models.ErrUnavailable)
	}

	problems := make([]models.Problem, 0, len(result.ProblemsetQuestionList.Questions))
	for _, qn := range result.ProblemsetQuestionList.Questions {
		problems = append(problems, qn.toProblem())
	}
	return problems, nil
}

// ProblemURL formats the canonical problem link.
func ProblemURL(titleSlug string) string {
	return fmt.Sprintf("%s/problems/%s/", siteURL, titleSlug)
}

// difficultyRating maps LeetCode difficulty tiers onto the shared rating
// scale so the selector's rating window works across platforms.
func difficultyRating(difficulty string) *int {
	var r int
	switch difficulty {
	case "Easy":
		r = 1000
	case "Medium":
		r = 1600
	case "Hard":
		r = 2200
	default:
		return nil
	}
	return &r
}
