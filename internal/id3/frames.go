package id3

// frameKind selects how a frame body is laid out.
type frameKind int

const (
	kindUnknown  frameKind = iota
	kindText               // T*: encoding, text
	kindURL                // W*: Latin-1 URL, no encoding byte
	kindUserText           // TXXX: encoding, description, value
	kindUserURL            // WXXX: encoding, description, Latin-1 URL
	kindGenre              // TCON: text with (n) genre references
	kindComment            // COMM, USLT: encoding, language, description, text
	kindPrivate            // PRIV, UFID: Latin-1 owner, binary data
	kindPicture            // APIC: encoding, MIME type, picture type, description, data
)

// kindOf returns the layout of frame id.
func kindOf(id string) frameKind {
	switch id {
	case "TXXX":
		return kindUserText
	case "WXXX":
		return kindUserURL
	case "TCON":
		return kindGenre
	case "COMM", "USLT":
		return kindComment
	case "PRIV", "UFID":
		return kindPrivate
	case "APIC":
		return kindPicture
	}
	switch id[0] {
	case 'T':
		return kindText
	case 'W':
		return kindURL
	}
	return kindUnknown
}

// frameInfo is the static description of a known frame id.
type frameInfo struct {
	name        string
	hasEncoding bool // body starts with a text encoding byte
}

// frameTable covers the ID3v2.3 and ID3v2.4 frame ids.
var frameTable = map[string]frameInfo{
	"AENC": {"Audio encryption", false},
	"APIC": {"Attached picture", true},
	"ASPI": {"Audio seek point index", false},
	"COMM": {"Comments", true},
	"COMR": {"Commercial frame", true},
	"ENCR": {"Encryption method registration", false},
	"EQU2": {"Equalisation (2)", false},
	"EQUA": {"Equalisation", false},
	"ETCO": {"Event timing codes", false},
	"GEOB": {"General encapsulated object", true},
	"GRID": {"Group identification registration", false},
	"IPLS": {"Involved people list", true},
	"LINK": {"Linked information", false},
	"MCDI": {"Music CD identifier", false},
	"MLLT": {"MPEG location lookup table", false},
	"OWNE": {"Ownership frame", true},
	"PCNT": {"Play counter", false},
	"POPM": {"Popularimeter", false},
	"POSS": {"Position synchronisation frame", false},
	"PRIV": {"Private frame", false},
	"RBUF": {"Recommended buffer size", false},
	"RVA2": {"Relative volume adjustment (2)", false},
	"RVAD": {"Relative volume adjustment", false},
	"RVRB": {"Reverb", false},
	"SEEK": {"Seek frame", false},
	"SIGN": {"Signature frame", false},
	"SYLT": {"Synchronised lyric/text", true},
	"SYTC": {"Synchronised tempo codes", false},
	"TALB": {"Album/Movie/Show title", true},
	"TBPM": {"BPM (beats per minute)", true},
	"TCOM": {"Composer", true},
	"TCON": {"Content type", true},
	"TCOP": {"Copyright message", true},
	"TDAT": {"Date", true},
	"TDEN": {"Encoding time", true},
	"TDLY": {"Playlist delay", true},
	"TDOR": {"Original release time", true},
	"TDRC": {"Recording time", true},
	"TDRL": {"Release time", true},
	"TDTG": {"Tagging time", true},
	"TENC": {"Encoded by", true},
	"TEXT": {"Lyricist/Text writer", true},
	"TFLT": {"File type", true},
	"TIME": {"Time", true},
	"TIPL": {"Involved people list", true},
	"TIT1": {"Content group description", true},
	"TIT2": {"Title/songname/content description", true},
	"TIT3": {"Subtitle/Description refinement", true},
	"TKEY": {"Initial key", true},
	"TLAN": {"Language(s)", true},
	"TLEN": {"Length", true},
	"TMCL": {"Musician credits list", true},
	"TMED": {"Media type", true},
	"TMOO": {"Mood", true},
	"TOAL": {"Original album/movie/show title", true},
	"TOFN": {"Original filename", true},
	"TOLY": {"Original lyricist(s)/text writer(s)", true},
	"TOPE": {"Original artist(s)/performer(s)", true},
	"TORY": {"Original release year", true},
	"TOWN": {"File owner/licensee", true},
	"TPE1": {"Lead performer(s)/Soloist(s)", true},
	"TPE2": {"Band/orchestra/accompaniment", true},
	"TPE3": {"Conductor/performer refinement", true},
	"TPE4": {"Interpreted, remixed, or otherwise modified by", true},
	"TPOS": {"Part of a set", true},
	"TPRO": {"Produced notice", true},
	"TPUB": {"Publisher", true},
	"TRCK": {"Track number/Position in set", true},
	"TRDA": {"Recording dates", true},
	"TRSN": {"Internet radio station name", true},
	"TRSO": {"Internet radio station owner", true},
	"TSIZ": {"Size", true},
	"TSO2": {"Album Artist sort order", true},
	"TSOA": {"Album sort order", true},
	"TSOC": {"Composer sort order", true},
	"TSOP": {"Performer sort order", true},
	"TSOT": {"Title sort order", true},
	"TSRC": {"ISRC (international standard recording code)", true},
	"TSSE": {"Software/Hardware and settings used for encoding", true},
	"TSST": {"Set subtitle", true},
	"TXXX": {"User defined text information frame", true},
	"TYER": {"Year", true},
	"UFID": {"Unique file identifier", false},
	"USER": {"Terms of use", true},
	"USLT": {"Unsynchronised lyric/text transcription", true},
	"WCOM": {"Commercial information", false},
	"WCOP": {"Copyright/Legal information", false},
	"WOAF": {"Official audio file webpage", false},
	"WOAR": {"Official artist/performer webpage", false},
	"WOAS": {"Official audio source webpage", false},
	"WORS": {"Official Internet radio station homepage", false},
	"WPAY": {"Payment", false},
	"WPUB": {"Publishers official webpage", false},
	"WXXX": {"User defined URL link frame", true},
}

// lookupFrame returns the table entry for id. Ids missing from the table
// are shown literally; a T prefix still implies an encoding byte.
func lookupFrame(id string) (frameInfo, bool) {
	if info, ok := frameTable[id]; ok {
		return info, true
	}
	return frameInfo{hasEncoding: id[0] == 'T'}, false
}

// pictureTypes names the APIC picture type byte.
var pictureTypes = [...]string{
	"Other",
	"32x32 pixels 'file icon' (PNG only)",
	"Other file icon",
	"Cover (front)",
	"Cover (back)",
	"Leaflet page",
	"Media (e.g. label side of CD)",
	"Lead artist/lead performer/soloist",
	"Artist/performer",
	"Conductor",
	"Band/Orchestra",
	"Composer",
	"Lyricist/text writer",
	"Recording Location",
	"During recording",
	"During performance",
	"Movie/video screen capture",
	"A bright coloured fish",
	"Illustration",
	"Band/artist logotype",
	"Publisher/Studio logotype",
}

func pictureType(b byte) string {
	if int(b) < len(pictureTypes) {
		return pictureTypes[b]
	}
	return "Unknown"
}
