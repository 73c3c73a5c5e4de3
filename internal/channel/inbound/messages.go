package inbound

import (
	"fmt"

	"github.com/memohai/imgkeeper/internal/channel"
	"github.com/memohai/imgkeeper/internal/media"
)

const (
	followText     = "Thanks for adding me! Send a photo and I will keep it safe."
	savedReplyText = "Photo saved."
	helpText       = "Send me a photo to save it.\n/id shows your user id."
)

func idText(userID string) string {
	return "Your user id: " + userID
}

func savedAdminText(source channel.Source, saved media.SavedImage) string {
	return fmt.Sprintf("Saved image from %s\nfolder: %s\nfile: %s", source.Kind, saved.Folder, saved.FileName)
}

func joinText(source channel.Source, folder string) string {
	return fmt.Sprintf("Joined %s %s\nimages go to: %s", source.Kind, source.ID(), folder)
}

func failureText(ev channel.Event, err error) string {
	return fmt.Sprintf("Failed to process %s event from %s %s: %v", ev.Kind, ev.Source.Kind, ev.Source.ID(), err)
}
