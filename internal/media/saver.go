package media

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/memohai/imgkeeper/internal/channel"
)

const fileTimeLayout = "2006-01-02_15-04-05"

// FolderResolver maps a conversation to its storage folder.
type FolderResolver interface {
	Resolve(ctx context.Context, source channel.Source) string
}

// SaverOptions tunes a Saver.
type SaverOptions struct {
	// MaxBytes caps one image. Zero uses MaxImageBytes.
	MaxBytes int64
	// FetchTimeout bounds the content download and write. Zero disables it.
	FetchTimeout time.Duration
	// Now is the wall clock used for file names. Nil uses time.Now.
	Now func() time.Time
}

// Saver persists image messages: it resolves the folder, downloads the
// content, and writes it under a timestamped file name.
type Saver struct {
	resolver FolderResolver
	content  channel.ContentAPI
	provider StorageProvider
	opts     SaverOptions
	logger   *slog.Logger
}

// NewSaver creates a Saver.
func NewSaver(log *slog.Logger, resolver FolderResolver, content channel.ContentAPI, provider StorageProvider, opts SaverOptions) *Saver {
	if log == nil {
		log = slog.Default()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = MaxImageBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Saver{
		resolver: resolver,
		content:  content,
		provider: provider,
		opts:     opts,
		logger:   log.With(slog.String("service", "media")),
	}
}

// FileName builds "<date>_<time>_<messageID><ext>" from t.
func FileName(t time.Time, messageID, ext string) string {
	return t.Format(fileTimeLayout) + "_" + messageID + ext
}

// Save downloads the content of messageID and stores it in the folder
// resolved for source. The returned error wraps the failing step; on error
// no file exists at the destination path.
func (s *Saver) Save(ctx context.Context, messageID string, source channel.Source) (SavedImage, error) {
	if s.provider == nil {
		return SavedImage{}, ErrProviderUnavailable
	}
	if s.content == nil {
		return SavedImage{}, fmt.Errorf("content api not configured")
	}
	messageID = strings.TrimSpace(messageID)
	if err := validateMessageID(messageID); err != nil {
		return SavedImage{}, err
	}

	folder := s.resolver.Resolve(ctx, source)
	if err := s.provider.EnsureDir(ctx, folder); err != nil {
		return SavedImage{}, fmt.Errorf("ensure folder %s: %w", folder, err)
	}

	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}

	content, err := s.content.GetMessageContent(ctx, messageID)
	if err != nil {
		return SavedImage{}, fmt.Errorf("fetch content: %w", err)
	}
	if content.Reader == nil {
		return SavedImage{}, fmt.Errorf("fetch content: %w", ErrEmptyContent)
	}
	defer func() {
		_ = content.Reader.Close()
	}()
	if content.Size > s.opts.MaxBytes {
		return SavedImage{}, fmt.Errorf("%w: %d bytes exceeds max %d", ErrImageTooLarge, content.Size, s.opts.MaxBytes)
	}

	fileName := FileName(s.opts.Now(), messageID, extensionFromMime(content.ContentType))
	key := path.Join(folder, fileName)
	written, err := s.provider.Put(ctx, key, content.Reader, s.opts.MaxBytes)
	if err != nil {
		return SavedImage{}, fmt.Errorf("store %s: %w", key, err)
	}
	hostPath, err := s.provider.HostPath(key)
	if err != nil {
		return SavedImage{}, err
	}

	s.logger.Info("image saved",
		slog.String("message_id", messageID),
		slog.String("folder", folder),
		slog.String("file", fileName),
		slog.Int64("bytes", written),
	)
	return SavedImage{
		Folder:      folder,
		FileName:    fileName,
		Key:         key,
		Path:        hostPath,
		ContentType: content.ContentType,
		SizeBytes:   written,
	}, nil
}

func validateMessageID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidMessageID)
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidMessageID, id)
	}
	return nil
}
