package domain

// FileType is the attachment type code used by the feed.
type FileType int

const (
	FileTypeNone    FileType = 0
	FileTypeJPG     FileType = 1
	FileTypePNG     FileType = 2
	FileTypeAPNG    FileType = 3
	FileTypeGIF     FileType = 4
	FileTypeBMP     FileType = 5
	FileTypeWebM    FileType = 6
	FileTypeMP3     FileType = 7
	FileTypeOGG     FileType = 8
	FileTypeMP4     FileType = 10
	FileTypeSticker FileType = 100
)

// MediaKind groups file types by how they are presented.
type MediaKind string

const (
	KindUnknown MediaKind = "unknown"
	KindImage   MediaKind = "image"
	KindVideo   MediaKind = "video"
	KindAudio   MediaKind = "audio"
	KindSticker MediaKind = "sticker"
)

// Kind maps the type code to a media kind.
func (t FileType) Kind() MediaKind {
	switch t {
	case FileTypeJPG, FileTypePNG, FileTypeAPNG, FileTypeGIF, FileTypeBMP:
		return KindImage
	case FileTypeWebM, FileTypeMP4:
		return KindVideo
	case FileTypeMP3, FileTypeOGG:
		return KindAudio
	case FileTypeSticker:
		return KindSticker
	default:
		return KindUnknown
	}
}

// File is a post attachment as declared by the feed.
type File struct {
	Name         string
	FullName     string
	DisplayName  string
	Path         string // Full-size media, relative to the board host
	Thumbnail    string // Thumbnail, relative to the board host
	Type         FileType
	Size         int // KiB
	Width        int
	Height       int
	TnWidth      int
	TnHeight     int
	MD5          string
	Duration     string
	DurationSecs int
	Sticker      string
}

// HasThumbnail reports whether the file declares a drawable thumbnail.
func (f File) HasThumbnail() bool {
	return f.Thumbnail != "" && f.TnWidth > 0 && f.TnHeight > 0
}

// ThumbHeight scales the declared thumbnail size to width, keeping the aspect ratio.
// Returns 0 when the thumbnail size is unusable.
func (f File) ThumbHeight(width int) int {
	if !f.HasThumbnail() || width <= 0 {
		return 0
	}
	coef := float64(f.TnHeight) / float64(f.TnWidth)
	return int(float64(width) * coef)
}
