package dvach

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/unicode/norm"

	"github.com/CrestNiraj12/boardhud/domain"
)

// flexInt accepts numbers, numeric strings and null. The API is not consistent
// about which one it sends.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	switch string(b) {
	case "true":
		*f = 1
		return nil
	case "false":
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		b = []byte(s)
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = flexInt(n)
	return nil
}

type apiPost struct {
	Num       flexInt   `json:"num"`
	Parent    flexInt   `json:"parent"`
	Board     string    `json:"board"`
	Timestamp int64     `json:"timestamp"`
	Date      string    `json:"date"`
	Subject   string    `json:"subject"`
	Name      string    `json:"name"`
	Trip      string    `json:"trip"`
	Email     string    `json:"email"`
	Tags      string    `json:"tags"`
	Comment   string    `json:"comment"`
	OP        flexInt   `json:"op"`
	Sticky    flexInt   `json:"sticky"`
	Closed    flexInt   `json:"closed"`
	Banned    flexInt   `json:"banned"`
	Likes     flexInt   `json:"likes"`
	Dislikes  flexInt   `json:"dislikes"`
	Views     flexInt   `json:"views"`
	Files     []apiFile `json:"files"`
}

type apiFile struct {
	Name         string  `json:"name"`
	FullName     string  `json:"fullname"`
	DisplayName  string  `json:"displayname"`
	Path         string  `json:"path"`
	Thumbnail    string  `json:"thumbnail"`
	Type         flexInt `json:"type"`
	Size         flexInt `json:"size"`
	Width        flexInt `json:"width"`
	Height       flexInt `json:"height"`
	TnWidth      flexInt `json:"tn_width"`
	TnHeight     flexInt `json:"tn_height"`
	MD5          string  `json:"md5"`
	Duration     string  `json:"duration"`
	DurationSecs flexInt `json:"duration_secs"`
	Sticker      string  `json:"sticker"`
}

func (s *threadService) decodePost(raw json.RawMessage) (*domain.Post, error) {
	var ap apiPost
	if err := json.Unmarshal(raw, &ap); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPost, err)
	}
	if ap.Num <= 0 {
		return nil, fmt.Errorf("%w: missing num", domain.ErrMalformedPost)
	}

	p := &domain.Post{
		Num:       int(ap.Num),
		Parent:    int(ap.Parent),
		Board:     ap.Board,
		Timestamp: ap.Timestamp,
		Date:      sanitizeForTerminal(ap.Date),
		Subject:   plainText(ap.Subject),
		Name:      plainText(ap.Name),
		Trip:      plainText(ap.Trip),
		Email:     ap.Email,
		Tags:      ap.Tags,
		OP:        ap.OP != 0,
		Sticky:    ap.Sticky != 0,
		Closed:    ap.Closed != 0,
		Banned:    ap.Banned != 0,
		Likes:     int(ap.Likes),
		Dislikes:  int(ap.Dislikes),
		Views:     int(ap.Views),
		Comment:   norm.NFC.String(sanitizeForTerminal(ap.Comment)),
	}
	for _, f := range ap.Files {
		p.Files = append(p.Files, domain.File{
			Name:         f.Name,
			FullName:     f.FullName,
			DisplayName:  f.DisplayName,
			Path:         s.absolute(f.Path),
			Thumbnail:    s.absolute(f.Thumbnail),
			Type:         domain.FileType(f.Type),
			Size:         int(f.Size),
			Width:        int(f.Width),
			Height:       int(f.Height),
			TnWidth:      int(f.TnWidth),
			TnHeight:     int(f.TnHeight),
			MD5:          f.MD5,
			Duration:     f.Duration,
			DurationSecs: int(f.DurationSecs),
			Sticker:      f.Sticker,
		})
	}
	return p, nil
}

// absolute resolves a host-relative media path against the base URL.
func (s *threadService) absolute(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.baseURL + path
}

// plainText extracts the text of a markup fragment, such as a subject with
// highlighting spans or a name wrapped in a mailto link.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return sanitizeForTerminal(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return sanitizeForTerminal(s)
	}
	return strings.TrimSpace(sanitizeForTerminal(doc.Text()))
}

// sanitizeForTerminal drops escape sequences and control characters other than
// newlines and tabs, so feed text cannot drive the terminal.
func sanitizeForTerminal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
