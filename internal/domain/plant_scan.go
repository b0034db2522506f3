package domain

import (
	"strings"
	"time"
)

// UnknownHealthStatus is recorded when the analysis is empty.
const UnknownHealthStatus = "Unknown"

// PlantScan is a stored plant photo with its health analysis.
type PlantScan struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ImagePath    string    `json:"-"`
	BlurHash     string    `json:"blur_hash,omitempty"`
	HealthStatus string    `json:"health_status"`
	Tips         string    `json:"tips"`
	CreatedAt    time.Time `json:"created_at"`
}

// ParseAnalysis splits analyzer output into a one-line health status and the
// full text kept as tips.
func ParseAnalysis(analysis string) (healthStatus, tips string) {
	tips = strings.TrimSpace(analysis)
	for line := range strings.SplitSeq(tips, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#*- "))
		line = strings.TrimSpace(strings.TrimRight(line, "*"))
		if line != "" {
			return line, tips
		}
	}
	return UnknownHealthStatus, tips
}
