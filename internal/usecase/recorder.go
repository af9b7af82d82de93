// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/naka-gawa/pr-size-score/internal/domain"
	"github.com/naka-gawa/pr-size-score/internal/gateway"
	"github.com/naka-gawa/pr-size-score/internal/storage"
)

// ScoreRecorder is the use case for scoring a single pull request.
// It fetches the pull request, scores it and appends the record to the log.
type ScoreRecorder struct {
	fetcher  gateway.Fetcher
	appender storage.Appender
	logger   *log.Logger
}

// NewScoreRecorder creates a new ScoreRecorder instance.
func NewScoreRecorder(fetcher gateway.Fetcher, appender storage.Appender, logger *log.Logger) *ScoreRecorder {
	return &ScoreRecorder{
		fetcher:  fetcher,
		appender: appender,
		logger:   logger,
	}
}

// RecordScore performs the main business logic.
// Nothing is appended unless the record was fully computed.
func (r *ScoreRecorder) RecordScore(ctx context.Context, repo string, prNumber int) (domain.SizeScoreRecord, error) {
	owner, name, err := domain.SplitRepo(repo)
	if err != nil {
		return domain.SizeScoreRecord{}, err
	}
	if prNumber <= 0 {
		return domain.SizeScoreRecord{}, fmt.Errorf("%w: pull request number must be positive, got %d", domain.ErrInvalidInput, prNumber)
	}

	r.logger.Printf("Usecase: Scoring %s#%d...\n", repo, prNumber)
	meta, err := r.fetcher.FetchPullRequest(ctx, owner, name, prNumber)
	if err != nil {
		return domain.SizeScoreRecord{}, fmt.Errorf("failed to fetch %s#%d: %w", repo, prNumber, err)
	}

	record, err := domain.NewSizeScoreRecord(repo, prNumber, *meta)
	if err != nil {
		return domain.SizeScoreRecord{}, fmt.Errorf("failed to score %s#%d: %w", repo, prNumber, err)
	}
	r.logger.Printf("Usecase: loc=%d files=%d size_score=%v\n", record.LOC, domain.ScoredFiles(record.ChangedFiles), record.SizeScore)

	if err := r.appender.Append(record); err != nil {
		return domain.SizeScoreRecord{}, fmt.Errorf("failed to record %s#%d: %w", repo, prNumber, err)
	}
	r.logger.Println("Usecase: Record appended.")
	return record, nil
}
