package media

import "errors"

var (
	// ErrProviderUnavailable indicates the storage provider is not configured.
	ErrProviderUnavailable = errors.New("storage provider unavailable")
	// ErrImageTooLarge indicates the payload exceeds the configured max size.
	ErrImageTooLarge = errors.New("image too large")
	// ErrEmptyContent indicates the content stream produced no bytes.
	ErrEmptyContent = errors.New("image payload is empty")
	// ErrInvalidMessageID indicates a message id that cannot be used in a file name.
	ErrInvalidMessageID = errors.New("invalid message id")
	// ErrPathTraversal indicates a storage key attempted directory traversal.
	ErrPathTraversal = errors.New("path traversal is forbidden")
)
