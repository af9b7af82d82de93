package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrExternalLookup means the pull request could not be fetched.
	ErrExternalLookup = errors.New("external lookup failed")
	// ErrMalformedMetadata means the fetched pull request lacks a field or has an unexpected value.
	ErrMalformedMetadata = errors.New("malformed pull request metadata")
	// ErrInvalidInput means the repository or pull request number given by the caller is unusable.
	ErrInvalidInput = errors.New("invalid input")
)

// SplitRepo splits an "owner/name" repository identifier.
func SplitRepo(repo string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: repository %q is not in owner/name form", ErrInvalidInput, repo)
	}
	return owner, name, nil
}

// ParsePRNumber converts a decimal pull request number to a positive int.
func ParsePRNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: pull request number %q is not an integer", ErrInvalidInput, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: pull request number must be positive, got %d", ErrInvalidInput, n)
	}
	return n, nil
}
