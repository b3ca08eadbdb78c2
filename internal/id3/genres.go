package id3

import (
	"strconv"
	"strings"
)

// genres is the ID3v1 genre list, including the Winamp extensions up to 125.
var genres = [...]string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel",
	"Noise", "AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic",
	"Darkwave", "Techno-Industrial", "Electronic", "Pop-Folk",
	"Eurodance", "Dream", "Southern Rock", "Comedy", "Cult", "Gangsta",
	"Top 40", "Christian Rap", "Pop/Funk", "Jungle", "Native American",
	"Cabaret", "New Wave", "Psychedelic", "Rave", "Showtunes", "Trailer",
	"Lo-Fi", "Tribal", "Acid Punk", "Acid Jazz", "Polka", "Retro",
	"Musical", "Rock & Roll", "Hard Rock", "Folk", "Folk-Rock",
	"National Folk", "Swing", "Fast Fusion", "Bebob", "Latin", "Revival",
	"Celtic", "Bluegrass", "Avantgarde", "Gothic Rock", "Progressive Rock",
	"Psychedelic Rock", "Symphonic Rock", "Slow Rock", "Big Band",
	"Chorus", "Easy Listening", "Acoustic", "Humour", "Speech", "Chanson",
	"Opera", "Chamber Music", "Sonata", "Symphony", "Booty Bass", "Primus",
	"Porn Groove", "Satire", "Slow Jam", "Club", "Tango", "Samba",
	"Folklore", "Ballad", "Power Ballad", "Rhythmic Soul", "Freestyle",
	"Duet", "Punk Rock", "Drum Solo", "A capella", "Euro-House", "Dance Hall",
}

// genreRef resolves one reference from a TCON value: a genre number, or
// RX and CR for remix and cover.
func genreRef(ref string) (string, bool) {
	switch ref {
	case "RX":
		return "Remix", true
	case "CR":
		return "Cover", true
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 0 || n >= len(genres) {
		return "", false
	}
	return genres[n], true
}

// resolveGenre expands the numeric references in a TCON value.
//
// Leading "(n)" references are replaced by genre names and any text that
// follows is kept as a refinement. "((" escapes a literal parenthesis. A
// reference that does not resolve leaves the value as written, so "(999)"
// stays "(999)".
func resolveGenre(s string) string {
	var names []string
	for strings.HasPrefix(s, "(") && !strings.HasPrefix(s, "((") {
		end := strings.IndexByte(s, ')')
		if end < 0 {
			break
		}
		name, ok := genreRef(s[1:end])
		if !ok {
			break
		}
		names = append(names, name)
		s = s[end+1:]
	}

	switch {
	case strings.HasPrefix(s, "(("):
		s = s[1:]
	case len(names) == 0:
		// ID3v2.4 writes bare numbers
		if name, ok := genreRef(s); ok {
			return name
		}
	}

	// A refinement repeating the last resolved name adds nothing
	if s != "" && (len(names) == 0 || !strings.EqualFold(s, names[len(names)-1])) {
		names = append(names, s)
	}
	return strings.Join(names, " / ")
}
