package models

import (
	"fmt"
	"time"
)

// MediaKind is the media category of an indexed item.
type MediaKind string

const (
	KindDocument  MediaKind = "document"
	KindVideo     MediaKind = "video"
	KindAudio     MediaKind = "audio"
	KindPhoto     MediaKind = "photo"
	KindAnimation MediaKind = "animation"

	// KindAny means no kind filter.
	KindAny MediaKind = ""
)

// ParseMediaKind returns the MediaKind for s, or false if s is not a
// supported kind.
func ParseMediaKind(s string) (MediaKind, bool) {
	switch MediaKind(s) {
	case KindDocument, KindVideo, KindAudio, KindPhoto, KindAnimation:
		return MediaKind(s), true
	}
	return KindAny, false
}

// MediaRecord represents one indexed media file. Key is the stable identity
// derived from the originating message and doubles as the Mongo document id.
type MediaRecord struct {
	Key        string    `bson:"_id" json:"key"`
	Name       string    `bson:"file_name" json:"file_name"`
	Caption    string    `bson:"caption,omitempty" json:"caption,omitempty"`
	Size       int64     `bson:"file_size" json:"file_size"`
	Kind       MediaKind `bson:"file_type" json:"file_type"`
	ChannelID  int64     `bson:"channel_id" json:"channel_id"`
	MessageID  int       `bson:"message_id" json:"message_id"`
	FileID     string    `bson:"file_id" json:"file_id"`
	IngestedAt time.Time `bson:"indexed_at" json:"indexed_at"`
}

// RecordKey builds the catalog identity for a message. The same message is
// always mapped to the same key, so re-delivery overwrites instead of
// duplicating.
func RecordKey(channelID int64, messageID int) string {
	return fmt.Sprintf("%d:%d", channelID, messageID)
}

// MediaEvent is an inbound media-bearing message before normalization.
type MediaEvent struct {
	ChannelID int64
	MessageID int
	Kind      MediaKind
	Name      string
	Caption   string
	Size      int64
	FileID    string
}
