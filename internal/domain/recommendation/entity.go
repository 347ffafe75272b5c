package recommendation

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound  = errors.New("seeker profile not found")
	ErrIndexUnavailable = errors.New("search index unavailable")
)

// Level is the seniority bucket of a job posting.
type Level int

const (
	LevelUnknown Level = iota
	LevelInternship
	LevelEntry
	LevelMid
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelInternship:
		return "Internship"
	case LevelEntry:
		return "Entry Level"
	case LevelMid:
		return "Mid Level"
	case LevelHigh:
		return "High Level"
	default:
		return ""
	}
}

// ParseLevel maps a catalog level name onto a Level. Spacing, case,
// underscores and dashes are ignored.
func ParseLevel(name string) Level {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(n)
	switch n {
	case "internship", "intern":
		return LevelInternship
	case "entrylevel", "entry", "junior":
		return LevelEntry
	case "midlevel", "mid", "middle":
		return LevelMid
	case "highlevel", "high", "senior":
		return LevelHigh
	default:
		return LevelUnknown
	}
}

type SeekerProfile struct {
	SeekerID        uuid.UUID
	Location        *string
	YearsExperience *int
	Bio             *string
}

type JobPosting struct {
	ID          uuid.UUID
	Title       string
	Description string
	Location    string
	Category    string
	Level       Level
	JobType     string
	EmployerID  uuid.UUID
	CreatedAt   time.Time
}

type InteractionKind string

const (
	InteractionView        InteractionKind = "view"
	InteractionApplication InteractionKind = "application"
)

type InteractionRecord struct {
	SeekerID   uuid.UUID
	JobID      uuid.UUID
	EmployerID uuid.UUID
	Kind       InteractionKind
	Timestamp  time.Time
}

type Recommendation struct {
	SeekerID   uuid.UUID
	JobID      uuid.UUID
	Score      float64
	Rank       int
	ComputedAt time.Time
}

// RecommendedJob is a stored recommendation joined with the job it points to.
type RecommendedJob struct {
	JobID      uuid.UUID `json:"job_id"`
	Title      string    `json:"title"`
	Location   string    `json:"location"`
	Category   string    `json:"category"`
	JobLevel   string    `json:"job_level"`
	JobType    string    `json:"job_type"`
	Score      float64   `json:"score"`
	ComputedAt time.Time `json:"computed_at"`
}
