package schema

import "strings"

const (
	FlagBulgarian = "🇧🇬"
)

// Flags are the secondary signals scraped next to a listing.
type Flags struct {
	LocalizedAudio bool `json:"bg_audio"`
	LocalizedSubs  bool `json:"bg_subs"`
	Is3D           bool `json:"is_3d"`
}

// Merge sets every flag that is set in other and left unset in f.
func (f Flags) Merge(other Flags) Flags {
	f.LocalizedAudio = f.LocalizedAudio || other.LocalizedAudio
	f.LocalizedSubs = f.LocalizedSubs || other.LocalizedSubs
	f.Is3D = f.Is3D || other.Is3D
	return f
}

// Annotation renders the flags as a display suffix, starting with a space
// when not empty.
func (f Flags) Annotation() string {
	var b strings.Builder
	if f.LocalizedAudio {
		b.WriteString(" " + FlagBulgarian)
	}
	if f.LocalizedSubs {
		b.WriteString(" " + FlagBulgarian + " subs")
	}
	return b.String()
}
