package util

import "errors"

var (
	ErrNoCitations       = errors.New("no citation candidates found in document")
	ErrNoExtractableText = errors.New("no extractable text found in document")

	ErrRateLimited = errors.New("remote rate limited")
	ErrPermanent   = errors.New("permanent remote error")
	ErrBatchFailed = errors.New("batch job failed")
)
