package tracker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kodayn/osukit/osuapi"
)

// ConsoleFormatter provides console output formatting for tracker results
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatProfile formats a profile with its best and recent plays
func (f *ConsoleFormatter) FormatProfile(profile *Profile, options FormatOptions) string {
	user := profile.User
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s (%s)\n", user.Username, user.Country)
	fmt.Fprintf(&sb, "Mode: %s | Rank: #%d (%s #%d)\n",
		profile.Mode, user.PPRank.ValueOrZero(), user.Country, user.PPCountryRank.ValueOrZero())
	fmt.Fprintf(&sb, "PP: %.2f | Accuracy: %.2f%% | Playcount: %d\n",
		user.PPRaw.ValueOrZero(), user.Accuracy.ValueOrZero(), user.Playcount.ValueOrZero())
	fmt.Fprintf(&sb, "Level: %.1f | Playtime: %dh\n",
		user.Level.ValueOrZero(), user.TotalSecondsPlayed.ValueOrZero()/3600)

	if len(profile.Best) > 0 {
		fmt.Fprintf(&sb, "\nBest plays (%d):\n\n", len(profile.Best))
		f.writeScores(&sb, profile.Best, options)
	}

	if len(profile.Recent) > 0 {
		fmt.Fprintf(&sb, "\nRecent plays (%d):\n\n", len(profile.Recent))
		f.writeScores(&sb, profile.Recent, options)
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatScores formats a list of plays for console display
func (f *ConsoleFormatter) FormatScores(scores []ScoreInfo, options FormatOptions) string {
	if len(scores) == 0 {
		return "No plays found"
	}

	var sb strings.Builder

	// Header
	sb.WriteString("\nPlay")
	if len(scores) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(scores))

	f.writeScores(&sb, scores, options)

	sb.WriteString("\n")
	return sb.String()
}

func (f *ConsoleFormatter) writeScores(sb *strings.Builder, scores []ScoreInfo, options FormatOptions) {
	for i, score := range scores {
		isLast := i == len(scores)-1
		f.formatScore(sb, score, isLast, options)

		if !isLast {
			sb.WriteString("│\n")
		}
	}
}

func (f *ConsoleFormatter) formatScore(sb *strings.Builder, score ScoreInfo, isLast bool, options FormatOptions) {
	prefix := "├"
	if isLast {
		prefix = "╰"
	}

	fmt.Fprintf(sb, "%s── #%d %s\n", prefix, score.Position, score.DisplayTitle())

	indent := "│   "
	if isLast {
		indent = "    "
	}

	// Core result line
	var parts []string
	if score.PP > 0 {
		parts = append(parts, fmt.Sprintf("%.2fpp", score.PP))
	}
	parts = append(parts, fmt.Sprintf("%.2f%%", score.Accuracy))
	parts = append(parts, score.Mods.String())
	if score.Rank != "" {
		parts = append(parts, score.Rank)
	}
	fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(parts, " | "))

	if options.ShowDetails {
		var details []string
		if score.Stars > 0 {
			details = append(details, fmt.Sprintf("%.2f stars", score.Stars))
		}
		if score.BPM > 0 {
			details = append(details, fmt.Sprintf("%.0f BPM", score.BPM))
		}
		if score.Beatmap != nil {
			details = append(details, score.Status.String())
		}

		combo := fmt.Sprintf("%dx", score.MaxCombo)
		if score.FullCombo {
			combo += " FC"
		} else if score.Misses > 0 {
			combo = fmt.Sprintf("%s, %d miss", combo, score.Misses)
		}
		details = append(details, combo)

		fmt.Fprintf(sb, "%s%s\n", indent, strings.Join(details, " | "))
	}

	if options.ShowDate && !score.Date.IsZero() {
		fmt.Fprintf(sb, "%sSet: %s\n", indent, score.Date.Format("2006-01-02 15:04"))
	}
}

// FormatLeaderboard formats a beatmap's top scores
func (f *ConsoleFormatter) FormatLeaderboard(beatmap *osuapi.Beatmap, scores osuapi.Scores) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s\n", beatmap.DisplayTitle())
	fmt.Fprintf(&sb, "Mapped by %s | %.2f stars | %s\n",
		beatmap.Creator, beatmap.DifficultyRating.ValueOrZero(), beatmap.Approved)

	if len(scores) == 0 {
		sb.WriteString("\nNo scores found\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "\nTop scores (%d):\n\n", len(scores))

	for i, score := range scores {
		isLast := i == len(scores)-1
		prefix := "├"
		if isLast {
			prefix = "╰"
		}

		fmt.Fprintf(&sb, "%s── #%d %s\n", prefix, i+1, score.Username)

		indent := "│   "
		if isLast {
			indent = "    "
		}

		parts := []string{
			fmt.Sprintf("%d", score.Score.ValueOrZero()),
			fmt.Sprintf("%dx", score.MaxCombo.ValueOrZero()),
			fmt.Sprintf("%.2f%%", score.Accuracy(beatmap.Mode)),
			score.EnabledMods.String(),
		}
		if score.Rank != "" {
			parts = append(parts, score.Rank)
		}
		if score.PP.Valid {
			parts = append(parts, fmt.Sprintf("%.2fpp", score.PP.Float64))
		}
		fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(parts, " | "))

		if score.Date.Valid {
			fmt.Fprintf(&sb, "%sSet: %s\n", indent, score.Date.ValueOrZero().Format("2006-01-02 15:04"))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatBeatmaps formats a list of beatmaps for console display
func (f *ConsoleFormatter) FormatBeatmaps(beatmaps []osuapi.Beatmap) string {
	if len(beatmaps) == 0 {
		return "No beatmaps found"
	}

	var sb strings.Builder

	sb.WriteString("\nBeatmap")
	if len(beatmaps) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(beatmaps))

	for i, beatmap := range beatmaps {
		isLast := i == len(beatmaps)-1
		prefix := "├"
		if isLast {
			prefix = "╰"
		}

		fmt.Fprintf(&sb, "%s── %s\n", prefix, beatmap.DisplayTitle())

		indent := "│   "
		if isLast {
			indent = "    "
		}

		fmt.Fprintf(&sb, "%sMapped by %s | %.2f stars | %s | %s\n",
			indent, beatmap.Creator, beatmap.DifficultyRating.ValueOrZero(), beatmap.Mode, beatmap.Approved)

		length := beatmap.TotalLength.ValueOrZero()
		fmt.Fprintf(&sb, "%sLength: %dm%02ds | BPM: %.0f | Max combo: %dx\n",
			indent, length/60, length%60, beatmap.BPM.ValueOrZero(), beatmap.MaxCombo.ValueOrZero())

		if beatmap.Playcount.ValueOrZero() > 0 {
			fmt.Fprintf(&sb, "%sPlays: %d | Favourites: %d\n",
				indent, beatmap.Playcount.ValueOrZero(), beatmap.FavouriteCount.ValueOrZero())
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatMatch formats a multiplayer match with its games
func (f *ConsoleFormatter) FormatMatch(match *osuapi.Match) string {
	info := match.Info
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s (match %d)\n", info.Name, info.MatchID.ValueOrZero())
	if info.StartTime.Valid {
		fmt.Fprintf(&sb, "Started: %s", info.StartTime.ValueOrZero().Format("2006-01-02 15:04"))
		if info.EndTime.Valid {
			fmt.Fprintf(&sb, " | Ended: %s", info.EndTime.ValueOrZero().Format("2006-01-02 15:04"))
		} else {
			sb.WriteString(" | In progress")
		}
		sb.WriteString("\n")
	}

	if len(match.Games) == 0 {
		sb.WriteString("\nNo games played\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "\nGames (%d):\n\n", len(match.Games))

	for i, game := range match.Games {
		isLast := i == len(match.Games)-1
		prefix := "├"
		if isLast {
			prefix = "╰"
		}

		fmt.Fprintf(&sb, "%s── Game %d: beatmap %d (%s, %s)\n",
			prefix, i+1, game.BeatmapID.ValueOrZero(), game.PlayMode, game.Mods)

		indent := "│   "
		if isLast {
			indent = "    "
		}

		for _, score := range game.Scores {
			result := "passed"
			if !score.Pass.ValueOrZero() {
				result = "failed"
			}
			fmt.Fprintf(&sb, "%suser %d: %d (%dx, %s)\n",
				indent, score.UserID.ValueOrZero(), score.Score.ValueOrZero(),
				score.MaxCombo.ValueOrZero(), result)
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatSummary formats aggregate statistics over a set of plays
func (f *ConsoleFormatter) FormatSummary(summary Summary) string {
	if summary.Count == 0 {
		return "No plays to summarize"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\nSummary of %d plays:\n\n", summary.Count)
	fmt.Fprintf(&sb, "  PP: %.2f weighted | mean %.2f | min %.2f | max %.2f\n",
		summary.TotalPP, summary.MeanPP, summary.MinPP, summary.MaxPP)
	if summary.StdDevPP > 0 {
		fmt.Fprintf(&sb, "  PP spread: %.2f\n", summary.StdDevPP)
	}
	fmt.Fprintf(&sb, "  Accuracy: %.2f%% mean\n", summary.MeanAccuracy)
	if summary.MeanStars > 0 {
		fmt.Fprintf(&sb, "  Stars: %.2f mean\n", summary.MeanStars)
	}

	if len(summary.ModCounts) > 0 {
		type modCount struct {
			mods  string
			count int
		}
		counts := make([]modCount, 0, len(summary.ModCounts))
		for mods, count := range summary.ModCounts {
			counts = append(counts, modCount{mods, count})
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].mods < counts[j].mods
		})

		parts := make([]string, 0, len(counts))
		for _, mc := range counts {
			parts = append(parts, fmt.Sprintf("%s x%d", mc.mods, mc.count))
		}
		fmt.Fprintf(&sb, "  Mods: %s\n", strings.Join(parts, ", "))
	}

	return sb.String()
}
