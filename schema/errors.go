package schema

import "errors"

// Error kinds surfaced by the analysis engine.
var (
	ErrInvalidPeriodSyntax   = errors.New("invalid period syntax")
	ErrInvalidWindow         = errors.New("invalid analysis window")
	ErrInvalidWorkingTime    = errors.New("invalid working time")
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	ErrCommitParse           = errors.New("malformed commit")
)
