package osuapi

import (
	"errors"
	"regexp"
	"strconv"
)

var formatVersionRe = regexp.MustCompile(`(?i)osu file format v(\d+)`)

// ErrNoFormatHeader is returned when a downloaded file does not open with
// the "osu file format" header line.
var ErrNoFormatHeader = errors.New("osu file format header not found")

// BeatmapFile is the raw .osu text for a single difficulty, downloaded
// from the site rather than the API endpoint.
type BeatmapFile struct {
	BeatmapID int64
	Content   string
}

// FormatVersion extracts the file format version from the header line.
func (f *BeatmapFile) FormatVersion() (int, error) {
	m := formatVersionRe.FindStringSubmatch(f.Content)
	if m == nil {
		return 0, ErrNoFormatHeader
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, ErrNoFormatHeader
	}
	return v, nil
}
