package genre

// canonicalAliases maps common tag variations to a canonical slug so
// "Hip Hop", "hip-hop" and "Rap" all land in one bucket.
var canonicalAliases = map[string]string{
	// Hip hop variations
	"rap":          "hip-hop",
	"hiphop":       "hip-hop",
	"hip-hop-rap":  "hip-hop",
	"trap":         "hip-hop",
	"boom-bap":     "hip-hop",
	"gangsta-rap":  "hip-hop",
	"conscious":    "hip-hop",
	"grime":        "hip-hop",
	"drill":        "hip-hop",
	"mumble-rap":   "hip-hop",
	"alt-hip-hop":  "hip-hop",
	"abstract-rap": "hip-hop",

	// R&B variations
	"r-b":        "rnb",
	"r-b-soul":   "rnb",
	"rhythm-and-blues": "rnb",
	"neo-soul":   "rnb",
	"soul":       "rnb",
	"contemporary-r-b": "rnb",

	// Electronic variations
	"edm":             "electronic",
	"electronica":     "electronic",
	"dance":           "electronic",
	"dance-electronic": "electronic",
	"house":           "electronic",
	"deep-house":      "electronic",
	"techno":          "electronic",
	"trance":          "electronic",
	"dubstep":         "electronic",
	"drum-bass":       "electronic",
	"drum-and-bass":   "electronic",
	"dnb":             "electronic",
	"idm":             "electronic",
	"synthwave":       "electronic",
	"ambient":         "electronic",
	"downtempo":       "electronic",
	"lo-fi":           "electronic",
	"lofi":            "electronic",

	// Rock variations
	"classic-rock":     "rock",
	"hard-rock":        "rock",
	"soft-rock":        "rock",
	"prog-rock":        "rock",
	"progressive-rock": "rock",
	"psychedelic-rock": "rock",
	"garage-rock":      "rock",
	"grunge":           "rock",
	"post-rock":        "rock",
	"shoegaze":         "rock",

	// Metal variations
	"heavy-metal":  "metal",
	"death-metal":  "metal",
	"black-metal":  "metal",
	"doom-metal":   "metal",
	"thrash-metal": "metal",
	"metalcore":    "metal",
	"nu-metal":     "metal",

	// Indie / alternative variations
	"indie":            "alternative",
	"indie-rock":       "alternative",
	"indie-pop":        "alternative",
	"alt-rock":         "alternative",
	"alternative-rock": "alternative",
	"dream-pop":        "alternative",

	// Pop variations
	"synth-pop":   "pop",
	"synthpop":    "pop",
	"electropop":  "pop",
	"k-pop":       "pop",
	"j-pop":       "pop",
	"dance-pop":   "pop",
	"art-pop":     "pop",

	// Jazz variations
	"bebop":       "jazz",
	"swing":       "jazz",
	"fusion":      "jazz",
	"jazz-fusion": "jazz",
	"smooth-jazz": "jazz",
	"free-jazz":   "jazz",

	// Classical variations
	"orchestral":    "classical",
	"baroque":       "classical",
	"romantic-era":  "classical",
	"chamber-music": "classical",
	"opera":         "classical",
	"symphony":      "classical",

	// Folk / country variations
	"folk-rock":    "folk",
	"singer-songwriter": "folk",
	"americana":    "country",
	"bluegrass":    "country",
	"alt-country":  "country",

	// Latin variations
	"reggaeton": "latin",
	"salsa":     "latin",
	"bachata":   "latin",
	"cumbia":    "latin",
	"bossa-nova": "latin",

	// Blues variations
	"delta-blues":   "blues",
	"chicago-blues": "blues",
	"blues-rock":    "blues",

	// Punk variations
	"pop-punk":  "punk",
	"hardcore":  "punk",
	"post-punk": "punk",
	"emo":       "punk",

	// Reggae variations
	"ska":       "reggae",
	"dub":       "reggae",
	"dancehall": "reggae",
}

// Canonical maps a raw genre tag to its canonical slug. Unknown tags keep
// their own slug so nothing gets lost, just left ungrouped.
func Canonical(raw string) string {
	slug := Slugify(raw)
	if canonical, ok := canonicalAliases[slug]; ok {
		return canonical
	}
	return slug
}
