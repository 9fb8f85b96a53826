package domain

import "errors"

var (
	ErrTranscriptionFailure = errors.New("transcription failure")
	ErrExtractionFailure    = errors.New("extraction failure")
	ErrMalformedExtraction  = errors.New("malformed extraction")
	ErrMissingCredentials   = errors.New("missing credentials")
)
