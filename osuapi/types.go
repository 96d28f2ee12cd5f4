package osuapi

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/guregu/null/v6"
)

// GameMode identifies one of the four rulesets.
type GameMode int

const (
	ModeOsu GameMode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

func (m GameMode) String() string {
	switch m {
	case ModeOsu:
		return "osu!"
	case ModeTaiko:
		return "taiko"
	case ModeCatch:
		return "catch"
	case ModeMania:
		return "mania"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Null returns the mode as a nullable query value.
func (m GameMode) Null() null.Int {
	return null.IntFrom(int64(m))
}

// ParseGameMode resolves a mode from its common names or its numeric form.
func ParseGameMode(s string) (GameMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "osu", "osu!", "std", "standard", "0":
		return ModeOsu, nil
	case "taiko", "1":
		return ModeTaiko, nil
	case "catch", "ctb", "fruits", "2":
		return ModeCatch, nil
	case "mania", "3":
		return ModeMania, nil
	default:
		return ModeOsu, fmt.Errorf("unknown game mode %q", s)
	}
}

// ApprovalStatus is a beatmap's ranking state.
type ApprovalStatus int

const (
	StatusGraveyard ApprovalStatus = -2
	StatusWIP       ApprovalStatus = -1
	StatusPending   ApprovalStatus = 0
	StatusRanked    ApprovalStatus = 1
	StatusApproved  ApprovalStatus = 2
	StatusQualified ApprovalStatus = 3
	StatusLoved     ApprovalStatus = 4
)

func (s ApprovalStatus) String() string {
	switch s {
	case StatusGraveyard:
		return "graveyard"
	case StatusWIP:
		return "wip"
	case StatusPending:
		return "pending"
	case StatusRanked:
		return "ranked"
	case StatusApproved:
		return "approved"
	case StatusQualified:
		return "qualified"
	case StatusLoved:
		return "loved"
	default:
		return "unknown"
	}
}

// Mods is the bitmask of gameplay modifiers attached to a score.
type Mods uint32

const (
	ModNoFail Mods = 1 << iota
	ModEasy
	ModTouchDevice
	ModHidden
	ModHardRock
	ModSuddenDeath
	ModDoubleTime
	ModRelax
	ModHalfTime
	ModNightcore
	ModFlashlight
	ModAutoplay
	ModSpunOut
	ModAutopilot
	ModPerfect
	ModKey4
	ModKey5
	ModKey6
	ModKey7
	ModKey8
	ModFadeIn
	ModRandom
	ModCinema
	ModTarget
	ModKey9
	ModKeyCoop
	ModKey1
	ModKey3
	ModKey2
	ModScoreV2
	ModMirror
)

// ModNone is the empty mod set.
const ModNone Mods = 0

var modNames = []struct {
	mod  Mods
	name string
}{
	{ModNoFail, "NF"},
	{ModEasy, "EZ"},
	{ModTouchDevice, "TD"},
	{ModHidden, "HD"},
	{ModHardRock, "HR"},
	{ModSuddenDeath, "SD"},
	{ModDoubleTime, "DT"},
	{ModRelax, "RX"},
	{ModHalfTime, "HT"},
	{ModNightcore, "NC"},
	{ModFlashlight, "FL"},
	{ModAutoplay, "AT"},
	{ModSpunOut, "SO"},
	{ModAutopilot, "AP"},
	{ModPerfect, "PF"},
	{ModKey4, "K4"},
	{ModKey5, "K5"},
	{ModKey6, "K6"},
	{ModKey7, "K7"},
	{ModKey8, "K8"},
	{ModFadeIn, "FI"},
	{ModRandom, "RD"},
	{ModCinema, "CN"},
	{ModTarget, "TP"},
	{ModKey9, "K9"},
	{ModKeyCoop, "CO"},
	{ModKey1, "K1"},
	{ModKey3, "K3"},
	{ModKey2, "K2"},
	{ModScoreV2, "V2"},
	{ModMirror, "MR"},
}

// Has reports whether every bit of mod is set.
func (m Mods) Has(mod Mods) bool {
	return m&mod == mod
}

// Null returns the mod set as a nullable query value.
func (m Mods) Null() null.Int {
	return null.IntFrom(int64(m))
}

// String renders the mod set in the usual short form ("HDDT"). Nightcore
// implies DoubleTime and Perfect implies SuddenDeath, so the implied bits
// are not repeated. The empty set renders as "NM".
func (m Mods) String() string {
	if m == ModNone {
		return "NM"
	}
	display := m
	if display.Has(ModNightcore) {
		display &^= ModDoubleTime
	}
	if display.Has(ModPerfect) {
		display &^= ModSuddenDeath
	}
	var sb strings.Builder
	for _, entry := range modNames {
		if display&entry.mod != 0 {
			sb.WriteString(entry.name)
		}
	}
	return sb.String()
}

// ParseMods reads the "HDDT" short form back into a bitmask. An empty
// string or "NM" is the empty set.
func ParseMods(s string) (Mods, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "NM" {
		return ModNone, nil
	}
	if len(s)%2 != 0 {
		return ModNone, fmt.Errorf("invalid mod string %q", s)
	}
	var mods Mods
	for i := 0; i < len(s); i += 2 {
		chunk := s[i : i+2]
		found := false
		for _, entry := range modNames {
			if entry.name == chunk {
				mods |= entry.mod
				found = true
				break
			}
		}
		if !found {
			return ModNone, fmt.Errorf("unknown mod %q in %q", chunk, s)
		}
	}
	if mods.Has(ModNightcore) {
		mods |= ModDoubleTime
	}
	if mods.Has(ModPerfect) {
		mods |= ModSuddenDeath
	}
	return mods, nil
}

// UnmarshalJSON accepts the string-encoded bitmask the API sends, a bare
// number, or null (which reads as no mods).
func (m *Mods) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, nullLiteral) {
		*m = ModNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*m = ModNone
			return nil
		}
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return fmt.Errorf("failed to parse mods %q: %w", s, err)
		}
		*m = Mods(n)
		return nil
	}
	var n uint32
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to parse mods: %w", err)
	}
	*m = Mods(n)
	return nil
}

// User is a player profile as returned by get_user.
type User struct {
	UserID             Int       `json:"user_id"`
	Username           string    `json:"username"`
	JoinDate           Timestamp `json:"join_date"`
	Count300           Int       `json:"count300"`
	Count100           Int       `json:"count100"`
	Count50            Int       `json:"count50"`
	Playcount          Int       `json:"playcount"`
	RankedScore        Int       `json:"ranked_score"`
	TotalScore         Int       `json:"total_score"`
	PPRank             Int       `json:"pp_rank"`
	Level              Float     `json:"level"`
	PPRaw              Float     `json:"pp_raw"`
	Accuracy           Float     `json:"accuracy"`
	CountRankSSH       Int       `json:"count_rank_ssh"`
	CountRankSS        Int       `json:"count_rank_ss"`
	CountRankSH        Int       `json:"count_rank_sh"`
	CountRankS         Int       `json:"count_rank_s"`
	CountRankA         Int       `json:"count_rank_a"`
	Country            string    `json:"country"`
	TotalSecondsPlayed Int       `json:"total_seconds_played"`
	PPCountryRank      Int       `json:"pp_country_rank"`
	Events             []Event   `json:"events"`
}

// Event is a single recent-activity entry on a user profile.
type Event struct {
	DisplayHTML  string    `json:"display_html"`
	BeatmapID    Int       `json:"beatmap_id"`
	BeatmapsetID Int       `json:"beatmapset_id"`
	Date         Timestamp `json:"date"`
	EpicFactor   Int       `json:"epicfactor"`
}

// Beatmap is one difficulty's metadata as returned by get_beatmaps. The
// raw .osu file behind it is a separate, much heavier download; see
// Client.GetBeatmapFile.
type Beatmap struct {
	Approved         ApprovalStatus `json:"approved,string"`
	SubmitDate       Timestamp      `json:"submit_date"`
	ApprovedDate     Timestamp      `json:"approved_date"`
	LastUpdate       Timestamp      `json:"last_update"`
	Artist           string         `json:"artist"`
	BeatmapID        Int            `json:"beatmap_id"`
	BeatmapsetID     Int            `json:"beatmapset_id"`
	BPM              Float          `json:"bpm"`
	Creator          string         `json:"creator"`
	CreatorID        Int            `json:"creator_id"`
	DifficultyRating Float          `json:"difficultyrating"`
	DiffAim          Float          `json:"diff_aim"`
	DiffSpeed        Float          `json:"diff_speed"`
	DiffSize         Float          `json:"diff_size"`
	DiffOverall      Float          `json:"diff_overall"`
	DiffApproach     Float          `json:"diff_approach"`
	DiffDrain        Float          `json:"diff_drain"`
	HitLength        Int            `json:"hit_length"`
	Source           string         `json:"source"`
	GenreID          Int            `json:"genre_id"`
	LanguageID       Int            `json:"language_id"`
	Title            string         `json:"title"`
	TotalLength      Int            `json:"total_length"`
	Version          string         `json:"version"`
	FileMD5          string         `json:"file_md5"`
	Mode             GameMode       `json:"mode,string"`
	Tags             string         `json:"tags"`
	FavouriteCount   Int            `json:"favourite_count"`
	Rating           Float          `json:"rating"`
	Playcount        Int            `json:"playcount"`
	Passcount        Int            `json:"passcount"`
	CountNormal      Int            `json:"count_normal"`
	CountSlider      Int            `json:"count_slider"`
	CountSpinner     Int            `json:"count_spinner"`
	MaxCombo         Int            `json:"max_combo"`
	Storyboard       Bool           `json:"storyboard"`
	Video            Bool           `json:"video"`
	DownloadUnavail  Bool           `json:"download_unavailable"`
	AudioUnavail     Bool           `json:"audio_unavailable"`
}

// DisplayTitle renders the conventional "Artist - Title [Version]" form.
func (b *Beatmap) DisplayTitle() string {
	return fmt.Sprintf("%s - %s [%s]", b.Artist, b.Title, b.Version)
}

// Score is one leaderboard entry as returned by get_scores.
type Score struct {
	ScoreID         Int       `json:"score_id"`
	Score           Int       `json:"score"`
	Username        string    `json:"username"`
	Count300        Int       `json:"count300"`
	Count100        Int       `json:"count100"`
	Count50         Int       `json:"count50"`
	CountMiss       Int       `json:"countmiss"`
	MaxCombo        Int       `json:"maxcombo"`
	CountKatu       Int       `json:"countkatu"`
	CountGeki       Int       `json:"countgeki"`
	Perfect         Bool      `json:"perfect"`
	EnabledMods     Mods      `json:"enabled_mods"`
	UserID          Int       `json:"user_id"`
	Date            Timestamp `json:"date"`
	Rank            string    `json:"rank"`
	PP              Float     `json:"pp"`
	ReplayAvailable Bool      `json:"replay_available"`
}

// Accuracy computes the score's accuracy percentage under mode's rules.
func (s *Score) Accuracy(mode GameMode) float64 {
	return accuracy(mode,
		s.Count300.ValueOrZero(), s.Count100.ValueOrZero(), s.Count50.ValueOrZero(),
		s.CountMiss.ValueOrZero(), s.CountKatu.ValueOrZero(), s.CountGeki.ValueOrZero())
}

// UserScore is one play from get_user_best or get_user_recent. Recent plays
// carry no pp or replay information, so those fields read as absent.
type UserScore struct {
	BeatmapID       Int       `json:"beatmap_id"`
	ScoreID         Int       `json:"score_id"`
	Score           Int       `json:"score"`
	MaxCombo        Int       `json:"maxcombo"`
	Count300        Int       `json:"count300"`
	Count100        Int       `json:"count100"`
	Count50         Int       `json:"count50"`
	CountMiss       Int       `json:"countmiss"`
	CountKatu       Int       `json:"countkatu"`
	CountGeki       Int       `json:"countgeki"`
	Perfect         Bool      `json:"perfect"`
	EnabledMods     Mods      `json:"enabled_mods"`
	UserID          Int       `json:"user_id"`
	Date            Timestamp `json:"date"`
	Rank            string    `json:"rank"`
	PP              Float     `json:"pp"`
	ReplayAvailable Bool      `json:"replay_available"`
}

// Accuracy computes the play's accuracy percentage under mode's rules.
func (s *UserScore) Accuracy(mode GameMode) float64 {
	return accuracy(mode,
		s.Count300.ValueOrZero(), s.Count100.ValueOrZero(), s.Count50.ValueOrZero(),
		s.CountMiss.ValueOrZero(), s.CountKatu.ValueOrZero(), s.CountGeki.ValueOrZero())
}

// accuracy implements the per-ruleset hit weighting. Results are percent,
// 0 when the score has no judgements at all.
func accuracy(mode GameMode, c300, c100, c50, miss, katu, geki int64) float64 {
	var earned, possible float64
	switch mode {
	case ModeTaiko:
		earned = float64(c300) + 0.5*float64(c100)
		possible = float64(c300 + c100 + miss)
	case ModeCatch:
		earned = float64(c300 + c100 + c50)
		possible = float64(c300 + c100 + c50 + miss + katu)
	case ModeMania:
		earned = 300*float64(geki+c300) + 200*float64(katu) + 100*float64(c100) + 50*float64(c50)
		possible = 300 * float64(geki+c300+katu+c100+c50+miss)
	default:
		earned = 300*float64(c300) + 100*float64(c100) + 50*float64(c50)
		possible = 300 * float64(c300+c100+c50+miss)
	}
	if possible == 0 {
		return 0
	}
	return earned / possible * 100
}

// MatchInfo is the header of a multiplayer match.
type MatchInfo struct {
	MatchID   Int       `json:"match_id"`
	Name      string    `json:"name"`
	StartTime Timestamp `json:"start_time"`
	EndTime   Timestamp `json:"end_time"`
}

// MatchScore is one player's result within a match game.
type MatchScore struct {
	Slot        Int  `json:"slot"`
	Team        Int  `json:"team"`
	UserID      Int  `json:"user_id"`
	Score       Int  `json:"score"`
	MaxCombo    Int  `json:"maxcombo"`
	Count300    Int  `json:"count300"`
	Count100    Int  `json:"count100"`
	Count50     Int  `json:"count50"`
	CountMiss   Int  `json:"countmiss"`
	CountKatu   Int  `json:"countkatu"`
	CountGeki   Int  `json:"countgeki"`
	Perfect     Bool `json:"perfect"`
	Pass        Bool `json:"pass"`
	EnabledMods Mods `json:"enabled_mods"`
}

// MatchGame is one map played within a multiplayer match.
type MatchGame struct {
	GameID      Int          `json:"game_id"`
	StartTime   Timestamp    `json:"start_time"`
	EndTime     Timestamp    `json:"end_time"`
	BeatmapID   Int          `json:"beatmap_id"`
	PlayMode    GameMode     `json:"play_mode,string"`
	MatchType   Int          `json:"match_type"`
	ScoringType Int          `json:"scoring_type"`
	TeamType    Int          `json:"team_type"`
	Mods        Mods         `json:"mods"`
	Scores      []MatchScore `json:"scores"`
}

// Match is a full multiplayer match: header plus the games played in it.
// A missing match decodes with a nil Info, because the API answers those
// requests with a 0 in place of the header object.
type Match struct {
	Info  *MatchInfo
	Games []MatchGame
}

func (m *Match) UnmarshalJSON(data []byte) error {
	var raw struct {
		Info  json.RawMessage `json:"match"`
		Games []MatchGame     `json:"games"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Games = raw.Games
	trimmed := bytes.TrimSpace(raw.Info)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("0")) || bytes.Equal(trimmed, nullLiteral) {
		m.Info = nil
		return nil
	}
	var info MatchInfo
	if err := json.Unmarshal(raw.Info, &info); err != nil {
		return err
	}
	m.Info = &info
	return nil
}

// Replay is the base64 payload of a score's replay data. This is the raw
// LZMA-compressed input stream, not a playable .osr container.
type Replay struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Bytes decodes the replay content.
func (r *Replay) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode replay content: %w", err)
	}
	return data, nil
}
