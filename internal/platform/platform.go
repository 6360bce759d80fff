// Package platform defines the normalized records returned by the
// competitive programming platform clients.
package platform

import (
	"time"
)

// VerdictAccepted is the normalized verdict for an accepted submission.
// Each client maps its platform's verdict vocabulary onto this value.
const VerdictAccepted = "OK"

// UserInfo is a profile snapshot for a platform handle.
type UserInfo struct {
	Handle      string
	Platform    string
	Rating      int
	MaxRating   int
	Rank        string
	SolvedCount int
}

// Submission is one submission from a user's history.
type Submission struct {
	ProblemID   string
	ProblemName string
	Platform    string
	Verdict     string
	Rating      *int
	SubmittedAt time.Time
}

// Accepted reports whether the submission passed.
func (s Submission) Accepted() bool {
	return s.Verdict == VerdictAccepted
}
