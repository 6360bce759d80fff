package codeforces

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shajidul-sobuj/cp-master-bot/internal/logger"
	"github.com/shajidul-sobuj/cp-master-bot/internal/models"
	"github.com/shajidul-sobuj/cp-master-bot/internal/platform"
)

func stubServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			t.Errorf("Unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestGetUserInfo(t *testing.T) {
	server := stubServer(t, map[string]string{
		"/user.info": `{"status":"OK","result":[{"handle":"tourist","rating":3850,"maxRating":4009,"rank":"legendary grandmaster"}]}`,
	})
	defer server.Close()

	client := NewWithBaseURL(server.URL, logger.New("error"))
	info, err := client.GetUserInfo(context.Background(), "tourist")
	if err != nil {
		t.Fatalf("GetUserInfo failed: %v", err)
	}
	if info.Handle != "tourist" {
		t.Errorf("Expected handle tourist, got %s", info.Handle)
	}
	if info.Rating != 3850 || info.MaxRating != 4009 {
		t.Errorf("Unexpected ratings: %d/%d", info.Rating, info.MaxRating)
	}
	if info.Rank != "legendary grandmaster" {
		t.Errorf("Unexpected rank: %s", info.Rank)
	}
	if info.Platform != models.PlatformCodeforces {
		t.Errorf("Unexpected platform: %s", info.Platform)
	}
}

func TestGetUserInfoUnratedDefault(t *testing.T) {
	server := stubServer(t, map[string]string{
		"/user.info": `{"status":"OK","result":[{"handle":"newcomer","rating":0,"maxRating":0}]}`,
	})
	defer server.Close()

	client := NewWithBaseURL(server.URL, logger.New("error"))
	info, err := client.GetUserInfo(context.Background(), "newcomer")
	if err != nil {
		t.Fatalf("GetUserInfo failed: %v", err)
	}
	if info.Rank != "unrated" {
		t.Errorf("Expected rank unrated, got %s", info.Rank)
	}
}

func TestGetUserInfoMissingHandle(t *testing.T) {
	server := stubServer(t, map[string]string{
		"/user.info": `{"status":"OK","result":[]}`,
	})
	defer server.Close()

	client := NewWithBaseURL(server.URL, logger.New("error"))
	_, err := client.GetUserInfo(context.Background(), "nobody")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAPIFailureWrapsUnavailable(t *testing.T) {
	server := stubServer(t, map[string]string{
		"/user.info": `{"status":"FAILED","comment":"handles: Field should not be empty"}`,
	})
	defer server.Close()

	client := NewWithBaseURL(server.URL, logger.New("error"))
	_, err := client.GetUserInfo(context.Background(), "")
	if !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestGetUserSubmissions(t *testing.T) {
	server := stubServer(t, map[string]string{
		"/user.status": `{"status":"OK","result":[
			{"id":1,"creationTimeSeconds":1749556800,"verdict":"OK","problem":{"contestId":2000,"index":"A","name":"Easy One","rating":900,"tags":["implementation"]}},
			{"id":2,"creationTimeSeconds":1749560400,"verdict":"WRONG_ANSWER","problem":{"contestId":2000,"index":"B","name":"Tricky One","rating":1200,"tags":["dp"]}}
		]}`,
	})
	defer server.Close()

	client := NewWithBaseURL(server.URL, logger.New("error"))
	subs, err := client.GetUserSubmissions(context.Background(), "someone", 100)
	if err != nil {
		t.Fatalf("GetUserSubmissions failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("Expected 2 submissions, got %d", len(subs))
	}
	if subs[0].ProblemID != "2000-A" {
		t.Errorf("Expected problem id 2000-A, got %s", subs[0].ProblemID)
	}
	if !subs[0].Accepted() {
		t.Error("OK verdict should count as accepted")
	}
	if subs[1].Accepted() {
		t.Error("WRONG_ANSWER should not count as accepted")
	}
	if subs[0].Verdict != platform.VerdictAccepted {
		t.Errorf("Expected normalized accepted verdict, got %s", subs[0].Verdict)
	}
}

func TestGetProblemsSkipsMalformed(t *testing.T) {
	server := stubServer(t, map[string]string{
		"/problemset.problems": `{"status":"OK","result":{"problems":[
			{"contestId":2000,"index":"A","name":"Good","rating":1500,"tags":["dp"]},
			{"contestId":0,"index":"","name":"Orphan"}
		]}}`,
	})
	defer server.Close()

	client := NewWithBaseURL(server.URL, logger.New("error"))
	problems, err := client.GetProblems(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetProblems failed: %v", err)
	}
	if len(problems) != 1 {
		t.Fatalf("Expected 1 problem after filtering, got %d", len(problems))
	}
	p := problems[0]
	if p.ProblemID != "2000-A" {
		t.Errorf("Expected problem id 2000-A, got %s", p.ProblemID)
	}
	if p.URL != "https://codeforces.com/problemset/problem/2000/A" {
		t.Errorf("Unexpected URL: %s", p.URL)
	}
	if p.Rating == nil || *p.Rating != 1500 {
		t.Errorf("Unexpected rating: %v", p.Rating)
	}
}

func TestGetContestsOnlyUpcoming(t *testing.T) {
	server := stubServer(t, map[string]string{
		"/contest.list": `{"status":"OK","result":[
			{"id":2100,"name":"Round 999","phase":"BEFORE","startTimeSeconds":1760000000,"durationSeconds":7200},
			{"id":2099,"name":"Round 998","phase":"FINISHED","startTimeSeconds":1740000000,"durationSeconds":7200}
		]}`,
	})
	defer server.Close()

	client := NewWithBaseURL(server.URL, logger.New("error"))
	contests, err := client.GetContests(context.Background())
	if err != nil {
		t.Fatalf("GetContests failed: %v", err)
	}
	if len(contests) != 1 {
		t.Fatalf("Expected 1 upcoming contest, got %d", len(contests))
	}
	c := contests[0]
	if c.ContestID != "cf-2100" {
		t.Errorf("Expected contest id cf-2100, got %s", c.ContestID)
	}
	if c.Duration != 120 {
		t.Errorf("Expected duration 120 minutes, got %d", c.Duration)
	}
}

func TestRankEmoji(t *testing.T) {
	if got := RankEmoji("legendary grandmaster"); got != "🔴" {
		t.Errorf("Expected red for legendary grandmaster, got %s", got)
	}
	if got := RankEmoji("something unknown"); got != "⚪" {
		t.Errorf("Expected fallback white, got %s", got)
	}
}
