package domain

// LevelTier is one band of the experience ladder. A reader belongs to the
// tier whose MinXP is the highest floor not above their XP.
type LevelTier struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	MinXP int    `json:"min_xp"`
	MaxXP int    `json:"max_xp"`
}

// levelTiers is ordered ascending, starts at 0, and each MaxXP equals the
// next tier's MinXP.
var levelTiers = []LevelTier{
	{Level: 1, Title: "Beginner Reader", MinXP: 0, MaxXP: 100},
	{Level: 2, Title: "Apprentice Reader", MinXP: 100, MaxXP: 500},
	{Level: 3, Title: "Adept Reader", MinXP: 500, MaxXP: 1000},
	{Level: 4, Title: "Expert Reader", MinXP: 1000, MaxXP: 2500},
	{Level: 5, Title: "Master Reader", MinXP: 2500, MaxXP: 5000},
	{Level: 6, Title: "Legend Reader", MinXP: 5000, MaxXP: 10000},
}

// LevelTiers returns a copy of the tier table.
func LevelTiers() []LevelTier {
	out := make([]LevelTier, len(levelTiers))
	copy(out, levelTiers)
	return out
}

// MaxLevel is the top tier's level number.
func MaxLevel() int {
	return levelTiers[len(levelTiers)-1].Level
}

// LevelInfo is the resolved standing for an XP total.
type LevelInfo struct {
	XP              int     `json:"xp"`
	Level           int     `json:"level"`
	Title           string  `json:"title"`
	MinXP           int     `json:"min_xp"`
	MaxXP           int     `json:"max_xp"`
	NextLevelXP     *int    `json:"next_level_xp,omitempty"`
	XPToNextLevel   int     `json:"xp_to_next_level"`
	ProgressPercent float64 `json:"progress_percent"`
	IsMaxLevel      bool    `json:"is_max_level"`
}

// ResolveLevel maps an XP total to its tier. Negative XP is treated as 0.
// XP beyond the top tier stays at the top tier with progress pinned at 100.
func ResolveLevel(xp int) LevelInfo {
	if xp < 0 {
		xp = 0
	}

	idx := 0
	for i, tier := range levelTiers {
		if tier.MinXP <= xp {
			idx = i
		}
	}
	tier := levelTiers[idx]

	info := LevelInfo{
		XP:              xp,
		Level:           tier.Level,
		Title:           tier.Title,
		MinXP:           tier.MinXP,
		MaxXP:           tier.MaxXP,
		ProgressPercent: tierProgress(xp, tier),
	}

	if idx == len(levelTiers)-1 {
		info.IsMaxLevel = true
		return info
	}

	next := levelTiers[idx+1].MinXP
	info.NextLevelXP = &next
	info.XPToNextLevel = next - xp
	return info
}

// tierProgress is (xp-min)/(max-min) as a percentage clamped to [0, 100].
func tierProgress(xp int, tier LevelTier) float64 {
	span := tier.MaxXP - tier.MinXP
	if span <= 0 {
		return 100
	}
	pct := float64(xp-tier.MinXP) / float64(span) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
