package model

// Languages a song's vocals may be declared in. "instrumental" doubles as the
// no-vocals marker.
var Languages = []string{
	"instrumental",
	"japanese",
	"english",
	"korean",
	"chinese",
	"spanish",
	"french",
	"german",
	"italian",
	"portuguese",
	"russian",
	"arabic",
	"hindi",
	"bengali",
	"punjabi",
	"javanese",
	"vietnamese",
	"thai",
	"turkish",
	"persian",
}

// Genres accepted per song.
var Genres = []string{
	"pop", "rock", "hiphop", "rnb", "jazz", "classical", "electronic",
	"folk", "country", "metal", "punk", "reggae", "soul", "blues",
	"jpop", "kpop", "anime", "soundtrack", "world", "other",
}

// Platforms is the union of distribution targets across deployments.
var Platforms = []string{
	"spotify", "appleMusic", "amazonMusic", "youtubeMusic",
	"lineMusic", "awa", "anghami", "TIDAL", "JOOX",
}

// Countries that can be excluded from distribution.
var Countries = []string{
	"JP", "US", "CN", "KR", "GB", "DE", "FR", "IN", "BR", "ID",
}

var (
	languageSet = toSet(Languages)
	genreSet    = toSet(Genres)
	platformSet = toSet(Platforms)
	countrySet  = toSet(Countries)
)

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func IsValidLanguage(v string) bool {
	_, ok := languageSet[v]
	return ok
}

func IsValidGenre(v string) bool {
	_, ok := genreSet[v]
	return ok
}

func IsValidPlatform(v string) bool {
	_, ok := platformSet[v]
	return ok
}

func IsValidCountry(v string) bool {
	_, ok := countrySet[v]
	return ok
}
