package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidIdentity indicates a plugin or tool without a usable name
	// or description.
	ErrInvalidIdentity = errors.New("invalid identity")

	// ErrPluginMismatch indicates a tool declared for one plugin was
	// registered into another.
	ErrPluginMismatch = errors.New("plugin mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIngestionCancelled indicates ingestion stopped at a chunk boundary
	// because shutdown was requested. Chunks inserted before the stop remain
	// persisted; a later ingestion of the same chunks resumes.
	ErrIngestionCancelled = errors.New("ingestion cancelled")
)
