package model

import "time"

// SubmissionStatus 表示投稿的处理状态
type SubmissionStatus string

const (
	StatusPending    SubmissionStatus = "pending"
	StatusProcessing SubmissionStatus = "processing"
	StatusCompleted  SubmissionStatus = "completed"
	StatusCancelled  SubmissionStatus = "cancelled"
	StatusError      SubmissionStatus = "error"
)

// ServiceType 表示投稿选择的服务套餐
type ServiceType string

const (
	ServiceAudioOnly   ServiceType = "audioOnly"
	ServiceFullService ServiceType = "fullService"
)

// DefaultPaymentAmount is the flat distribution fee in JPY. Payment
// processing itself lives outside this system.
const DefaultPaymentAmount = 20000

// Submission 表示一次专辑发行申请（专辑 + 内嵌歌曲）
type Submission struct {
	ID              int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ReservationCode string `gorm:"size:64;index" json:"reservationCode"`
	Email           string `gorm:"size:255;index" json:"email"`
	PasswordHash    string `gorm:"size:255" json:"-"`

	AlbumNameDomestic      string    `gorm:"size:255" json:"albumNameDomestic"`
	AlbumNameInternational string    `gorm:"size:255" json:"albumNameInternational"`
	ArtistNameKana         string    `gorm:"size:255" json:"artistNameKana"`
	ArtistNameEnglish      string    `gorm:"size:255" json:"artistNameEnglish"`
	VersionInfo            string    `gorm:"size:255" json:"versionInfo"`
	ReleaseDate            time.Time `json:"releaseDate"`

	CoverURL string `gorm:"size:767" json:"albumCover"`

	Platforms         []string `gorm:"serializer:json" json:"platforms"`
	ExcludedCountries []string `gorm:"serializer:json" json:"excludedCountries"`

	RightsAgreement    bool `json:"rightsAgreement"`
	ReReleaseAgreement bool `json:"reReleaseAgreement"`
	PlatformAgreement  bool `json:"platformAgreement"`
	AllAgreement       bool `json:"allAgreement"`

	ServiceType   ServiceType      `gorm:"size:32" json:"serviceType"`
	PaymentStatus string           `gorm:"size:32" json:"paymentStatus"`
	PaymentAmount int              `json:"paymentAmount"`
	PayLater      bool             `json:"payLater"`
	Status        SubmissionStatus `gorm:"size:32;index" json:"status"`

	Songs []Song `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"songs"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}

// Song 表示投稿专辑中的一首歌曲，完全归属于其 Submission
type Song struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	SubmissionID int64 `gorm:"index" json:"-"`
	TrackNo      int   `json:"trackNo"`

	Title       string `gorm:"size:255" json:"title"`
	TitleEn     string `gorm:"size:255" json:"titleEn"`
	DurationMin int    `json:"durationMin"`
	DurationSec int    `json:"durationSec"`
	Genre       string `gorm:"size:64" json:"genre"`
	Language    string `gorm:"size:32" json:"language"`

	MainArtists          []string `gorm:"serializer:json" json:"mainArtists"`
	ParticipatingArtists []string `gorm:"serializer:json" json:"participatingArtists"`
	FeaturingArtists     []string `gorm:"serializer:json" json:"featuringArtists"`
	MixingEngineers      []string `gorm:"serializer:json" json:"mixingEngineers"`
	RecordingEngineers   []string `gorm:"serializer:json" json:"recordingEngineers"`
	Producers            []string `gorm:"serializer:json" json:"producers"`
	Lyricists            []string `gorm:"serializer:json" json:"lyricists"`
	Composers            []string `gorm:"serializer:json" json:"composers"`
	Arrangers            []string `gorm:"serializer:json" json:"arrangers"`

	IsRemake           bool   `json:"isRemake"`
	UsesExternalBeat   bool   `json:"usesExternalBeat"`
	HasExplicitContent bool   `json:"hasExplicitContent"`
	Lyrics             string `gorm:"type:text" json:"lyrics"`

	AudioURL string `gorm:"size:767" json:"audioUrl"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Song) TableName() string {
	return "submission_songs"
}

// SubmissionStats 管理端列表附带的汇总信息
type SubmissionStats struct {
	Total       int64 `json:"total"`
	AudioOnly   int64 `json:"audioOnly"`
	FullService int64 `json:"fullService"`
	PayLater    int64 `json:"payLater"`
}
