package form

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"OtoDist/core/apperr"
	"OtoDist/model"

	"github.com/h2non/filetype"
)

// Multipart field names, fixed by the submission form.
const (
	FieldCover = "albumCover"
	FieldAudio = "audioFiles"
)

const (
	maxCoverBytes = 10 << 20
	maxAudioFiles = 10
	// filetype needs at most 261 bytes to classify a file.
	sniffLen = 261
)

var requiredFields = []string{
	"email",
	"password",
	"memberKey",
	"albumNameDomestic",
	"albumNameInternational",
	"artistNameKana",
	"artistNameEnglish",
	"versionInfo",
	"releaseDate",
}

var coverExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// FileInput is a validated file part with its sniffed content type.
type FileInput struct {
	Header      *multipart.FileHeader
	ContentType string
}

// SongInput carries one song's metadata with its audio file.
type SongInput struct {
	TrackNo              int
	Title                string
	TitleEn              string
	DurationMin          int
	DurationSec          int
	Genre                string
	Language             string
	MainArtists          []string
	ParticipatingArtists []string
	FeaturingArtists     []string
	MixingEngineers      []string
	RecordingEngineers   []string
	Producers            []string
	Lyricists            []string
	Composers            []string
	Arrangers            []string
	IsRemake             bool
	UsesExternalBeat     bool
	HasExplicitContent   bool
	Lyrics               string
	Audio                *FileInput
}

// SubmissionInput is the validated form, ready for the submission writer.
type SubmissionInput struct {
	Email           string
	Password        string
	ReservationCode string

	AlbumNameDomestic      string
	AlbumNameInternational string
	ArtistNameKana         string
	ArtistNameEnglish      string
	VersionInfo            string
	ReleaseDate            time.Time

	Platforms         []string
	ExcludedCountries []string

	RightsAgreement    bool
	ReReleaseAgreement bool
	PlatformAgreement  bool
	AllAgreement       bool

	ServiceType string
	PayLater    bool

	Cover *FileInput
	Songs []SongInput
}

// Validator checks a parsed multipart form against the intake rules. It has
// no side effects beyond reading the buffered file headers.
type Validator struct {
	maxAudioBytes int64
	now           func() time.Time
}

func NewValidator(maxAudioMB int) *Validator {
	return &Validator{
		maxAudioBytes: int64(maxAudioMB) << 20,
		now:           time.Now,
	}
}

// Validate runs the intake checks in contract order: required fields, file
// presence, file type, file size, then value parsing.
func (v *Validator) Validate(mf *multipart.Form) (*SubmissionInput, error) {
	value := func(name string) string {
		vs := mf.Value[name]
		if len(vs) == 0 {
			return ""
		}
		return strings.TrimSpace(vs[0])
	}

	// (a) required fields
	var missing []string
	for _, name := range requiredFields {
		if value(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing)
	}

	// (b) file presence
	covers := mf.File[FieldCover]
	if len(covers) == 0 {
		return nil, apperr.FileRequired(FieldCover)
	}
	if len(covers) > 1 {
		return nil, apperr.Validation("Exactly one cover image is allowed")
	}
	audios := mf.File[FieldAudio]
	if len(audios) == 0 {
		return nil, apperr.FileRequired(FieldAudio)
	}
	if len(audios) > maxAudioFiles {
		return nil, apperr.Validation(fmt.Sprintf("At most %d audio files are allowed", maxAudioFiles))
	}

	// (c)(d) per-file type and size
	cover, err := v.checkCover(covers[0])
	if err != nil {
		return nil, err
	}
	audioInputs := make([]*FileInput, 0, len(audios))
	for _, fh := range audios {
		in, err := v.checkAudio(fh)
		if err != nil {
			return nil, err
		}
		audioInputs = append(audioInputs, in)
	}

	// (e) date
	releaseDate, err := ParseReleaseDate(value("releaseDate"))
	if err != nil {
		return nil, err
	}
	if err := CheckReleaseLead(releaseDate, v.now()); err != nil {
		return nil, err
	}

	platforms := parseArrayField(mf.Value["platforms"])
	for _, p := range platforms {
		if !model.IsValidPlatform(p) {
			return nil, apperr.Validation("Unknown platform: " + p)
		}
	}
	excluded := parseArrayField(mf.Value["excludedCountries"])
	for _, c := range excluded {
		if !model.IsValidCountry(c) {
			return nil, apperr.Validation("Unknown country code: " + c)
		}
	}

	serviceType := value("serviceType")
	if serviceType == "" {
		serviceType = string(model.ServiceAudioOnly)
	}
	if serviceType != string(model.ServiceAudioOnly) && serviceType != string(model.ServiceFullService) {
		return nil, apperr.Validation("Unknown service type: " + serviceType)
	}

	in := &SubmissionInput{
		Email:           strings.ToLower(value("email")),
		Password:        value("password"),
		ReservationCode: value("memberKey"),

		AlbumNameDomestic:      value("albumNameDomestic"),
		AlbumNameInternational: value("albumNameInternational"),
		ArtistNameKana:         value("artistNameKana"),
		ArtistNameEnglish:      value("artistNameEnglish"),
		VersionInfo:            value("versionInfo"),
		ReleaseDate:            releaseDate,

		Platforms:         platforms,
		ExcludedCountries: excluded,

		RightsAgreement:    formBool(value("rightsAgreement")),
		ReReleaseAgreement: formBool(value("reReleaseAgreement")),
		PlatformAgreement:  formBool(value("platformAgreement")),

		ServiceType: serviceType,
		PayLater:    formBool(value("payLater")),

		Cover: cover,
	}
	in.AllAgreement = in.RightsAgreement && in.ReReleaseAgreement && in.PlatformAgreement
	if !in.AllAgreement {
		return nil, apperr.Validation("All agreements must be accepted")
	}

	for i, audio := range audioInputs {
		song, err := v.songAt(mf.Value, i)
		if err != nil {
			return nil, err
		}
		song.Audio = audio
		in.Songs = append(in.Songs, *song)
	}

	return in, nil
}

// songAt reads the per-index song fields (title_0, duration_min_0, ...)
// matching the audio file at the same position.
func (v *Validator) songAt(values map[string][]string, i int) (*SongInput, error) {
	value := func(prefix string) string {
		vs := values[fmt.Sprintf("%s_%d", prefix, i)]
		if len(vs) == 0 {
			return ""
		}
		return strings.TrimSpace(vs[0])
	}
	array := func(prefix string) []string {
		return parseArrayField(values[fmt.Sprintf("%s_%d", prefix, i)])
	}

	minutes, err := formInt(value("duration_min"))
	if err != nil || minutes < 0 {
		return nil, apperr.Validation(fmt.Sprintf("Invalid duration for song %d", i+1))
	}
	seconds, err := formInt(value("duration_sec"))
	if err != nil || seconds < 0 || seconds > 59 {
		return nil, apperr.Validation(fmt.Sprintf("Invalid duration for song %d", i+1))
	}

	language := value("language")
	if language == "" {
		language = "instrumental"
	}
	if !model.IsValidLanguage(language) {
		return nil, apperr.Validation("Unknown language: " + language)
	}

	genre := value("genre")
	if genre == "" {
		genre = "other"
	}
	if !model.IsValidGenre(genre) {
		return nil, apperr.Validation("Unknown genre: " + genre)
	}

	return &SongInput{
		TrackNo:              i + 1,
		Title:                value("title"),
		TitleEn:              value("titleEn"),
		DurationMin:          minutes,
		DurationSec:          seconds,
		Genre:                genre,
		Language:             language,
		MainArtists:          array("mainArtist"),
		ParticipatingArtists: array("participatingArtist"),
		FeaturingArtists:     array("featuring"),
		MixingEngineers:      array("mixingEngineer"),
		RecordingEngineers:   array("recordingEngineer"),
		Producers:            array("producer"),
		Lyricists:            array("lyricist"),
		Composers:            array("composer"),
		Arrangers:            array("arranger"),
		IsRemake:             formBool(value("isRemake")),
		UsesExternalBeat:     formBool(value("usesExternalBeat")),
		HasExplicitContent:   formBool(value("hasExplicitContent")),
		Lyrics:               value("lyrics"),
	}, nil
}

func formInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (v *Validator) checkCover(fh *multipart.FileHeader) (*FileInput, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !coverExtensions[ext] {
		return nil, apperr.InvalidFileType(FieldCover, "only JPG/PNG images are accepted")
	}
	if fh.Size > maxCoverBytes {
		return nil, apperr.FileTooLarge(FieldCover, fh.Size, maxCoverBytes)
	}

	kind, err := sniff(fh)
	if err != nil {
		return nil, err
	}
	if kind != "jpg" && kind != "png" {
		return nil, apperr.InvalidFileType(FieldCover, "content is not a JPG/PNG image")
	}

	contentType := "image/jpeg"
	if kind == "png" {
		contentType = "image/png"
	}
	return &FileInput{Header: fh, ContentType: contentType}, nil
}

func (v *Validator) checkAudio(fh *multipart.FileHeader) (*FileInput, error) {
	if strings.ToLower(filepath.Ext(fh.Filename)) != ".wav" {
		return nil, apperr.InvalidFileType(FieldAudio, "only WAV masters are accepted")
	}
	if fh.Size > v.maxAudioBytes {
		return nil, apperr.FileTooLarge(FieldAudio, fh.Size, v.maxAudioBytes)
	}

	kind, err := sniff(fh)
	if err != nil {
		return nil, err
	}
	if kind != "wav" {
		return nil, apperr.InvalidFileType(FieldAudio, "content is not a WAV file")
	}

	return &FileInput{Header: fh, ContentType: "audio/wav"}, nil
}

// sniff classifies a file part by its magic bytes.
func sniff(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Validation("Failed to read uploaded file " + fh.Filename)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apperr.Validation("Failed to read uploaded file " + fh.Filename)
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return "", apperr.InvalidFileType(fh.Filename, "unrecognized file content")
	}
	return kind.Extension, nil
}
