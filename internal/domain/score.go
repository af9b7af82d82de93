// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// ScoreDecimals is the number of decimal places a size score is rounded to.
const ScoreDecimals = 6

// PullRequestMetadata is the subset of pull request data needed to score it.
type PullRequestMetadata struct {
	Additions    int
	Deletions    int
	ChangedFiles int
	// MergedAt is kept in the string form the API returned it in. Nil if not merged.
	MergedAt    *string
	AuthorLogin string
}

// Validate reports whether the metadata can be scored.
// Negative counts are rejected rather than clamped.
func (m PullRequestMetadata) Validate() error {
	switch {
	case m.Additions < 0:
		return fmt.Errorf("%w: additions is negative (%d)", ErrMalformedMetadata, m.Additions)
	case m.Deletions < 0:
		return fmt.Errorf("%w: deletions is negative (%d)", ErrMalformedMetadata, m.Deletions)
	case m.ChangedFiles < 0:
		return fmt.Errorf("%w: changed_files is negative (%d)", ErrMalformedMetadata, m.ChangedFiles)
	case m.AuthorLogin == "":
		return fmt.Errorf("%w: user.login is missing", ErrMalformedMetadata)
	}
	return nil
}

// SizeScoreRecord is one line of the score log.
// Field order matches the serialized JSON object.
type SizeScoreRecord struct {
	Repo         string  `json:"repo"`
	PRNumber     int     `json:"pr_number"`
	MergedAt     *string `json:"merged_at"`
	Author       string  `json:"author"`
	Additions    int     `json:"additions"`
	Deletions    int     `json:"deletions"`
	LOC          int     `json:"loc"`
	ChangedFiles int     `json:"changed_files"`
	SizeScore    float64 `json:"size_score"`
}

// LOC returns the number of touched lines.
func LOC(additions, deletions int) int {
	return additions + deletions
}

// ScoredFiles returns the file count used by the score. A pull request is
// always attributed at least one file.
func ScoredFiles(changedFiles int) int {
	return max(changedFiles, 1)
}

// SizeScore computes ln(loc + 1) * sqrt(files), rounded to ScoreDecimals places.
func SizeScore(loc, changedFiles int) (float64, error) {
	raw := math.Log(float64(loc)+1) * math.Sqrt(float64(ScoredFiles(changedFiles)))
	rounded, err := stats.Round(raw, ScoreDecimals)
	if err != nil {
		return 0, fmt.Errorf("failed to round size score %v: %w", raw, err)
	}
	return rounded, nil
}

// NewSizeScoreRecord validates meta and builds the record for it.
func NewSizeScoreRecord(repo string, prNumber int, meta PullRequestMetadata) (SizeScoreRecord, error) {
	if err := meta.Validate(); err != nil {
		return SizeScoreRecord{}, err
	}
	loc := LOC(meta.Additions, meta.Deletions)
	score, err := SizeScore(loc, meta.ChangedFiles)
	if err != nil {
		return SizeScoreRecord{}, err
	}
	return SizeScoreRecord{
		Repo:         repo,
		PRNumber:     prNumber,
		MergedAt:     meta.MergedAt,
		Author:       meta.AuthorLogin,
		Additions:    meta.Additions,
		Deletions:    meta.Deletions,
		LOC:          loc,
		ChangedFiles: meta.ChangedFiles,
		SizeScore:    score,
	}, nil
}
