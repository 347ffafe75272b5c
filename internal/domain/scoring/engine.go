package scoring

import (
	"math"
	"strings"

	"jobfinder/internal/domain/recommendation"

	"github.com/google/uuid"
)

// History is the behavioural signal of one seeker, pre-split by kind.
type History struct {
	ViewedJobIDs      map[uuid.UUID]struct{}
	ViewedEmployerIDs map[uuid.UUID]struct{}
	AppliedJobs       []recommendation.JobPosting
}

// Breakdown holds every sub-score in [0,1] and the clamped weighted Total.
type Breakdown struct {
	Experience     float64
	Location       float64
	Category       float64
	TextOverlap    float64
	PriorView      float64
	ApplicationFit float64
	EmployerView   float64
	Relevance      float64
	Total          float64
}

// Scorer is a pure function of its inputs; it holds no mutable state and is
// safe for concurrent use.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

func (s *Scorer) Config() Config {
	return s.cfg
}

func (s *Scorer) Score(p recommendation.SeekerProfile, job recommendation.JobPosting, h History, relevance float64) float64 {
	return s.Breakdown(p, job, h, relevance).Total
}

func (s *Scorer) Breakdown(p recommendation.SeekerProfile, job recommendation.JobPosting, h History, relevance float64) Breakdown {
	bio := deref(p.Bio)

	b := Breakdown{
		Experience:     s.experienceFit(p.YearsExperience, job.Level),
		Location:       locationMatch(deref(p.Location), job.Location),
		Category:       s.categoryAffinity(bio, job.Category),
		TextOverlap:    textOverlap(bio, job.Description),
		PriorView:      membership(h.ViewedJobIDs, job.ID),
		ApplicationFit: applicationFit(h.AppliedJobs, job),
		EmployerView:   membership(h.ViewedEmployerIDs, job.EmployerID),
		Relevance:      s.normalizeRelevance(relevance),
	}

	w := s.cfg.Weights
	total := b.Experience*w.Experience +
		b.Location*w.Location +
		b.Category*w.Category +
		b.TextOverlap*w.TextOverlap +
		b.PriorView*w.PriorView +
		b.ApplicationFit*w.ApplicationFit +
		b.EmployerView*w.EmployerView +
		b.Relevance*w.Relevance

	// default weights add up to 1.10
	b.Total = clamp01(total)
	return b
}

// LevelForYears maps years of experience onto a seniority bucket.
func (s *Scorer) LevelForYears(years int) recommendation.Level {
	bk := s.cfg.Buckets
	switch {
	case years <= bk.InternshipMaxYears:
		return recommendation.LevelInternship
	case years <= bk.EntryMaxYears:
		return recommendation.LevelEntry
	case years <= bk.MidMaxYears:
		return recommendation.LevelMid
	default:
		return recommendation.LevelHigh
	}
}

func (s *Scorer) experienceFit(years *int, jobLevel recommendation.Level) float64 {
	if years == nil || *years < 0 {
		return 0
	}
	if jobLevel == recommendation.LevelUnknown {
		return s.cfg.DistantLevelCredit
	}

	diff := int(s.LevelForYears(*years)) - int(jobLevel)
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return 1
	case 1:
		return s.cfg.AdjacentLevelCredit
	default:
		return s.cfg.DistantLevelCredit
	}
}

func (s *Scorer) categoryAffinity(bio, category string) float64 {
	bio = strings.ToLower(strings.TrimSpace(bio))
	category = strings.ToLower(strings.TrimSpace(category))
	if bio == "" || category == "" {
		return s.cfg.CategoryDefaultCredit
	}
	if strings.Contains(bio, category) {
		return 1
	}
	return s.cfg.CategoryDefaultCredit
}

func (s *Scorer) normalizeRelevance(relevance float64) float64 {
	if math.IsNaN(relevance) || relevance <= 0 {
		return 0
	}
	return clamp01(relevance / s.cfg.RelevanceScale)
}

func locationMatch(seeker, job string) float64 {
	seeker = strings.TrimSpace(seeker)
	job = strings.TrimSpace(job)
	if seeker == "" || job == "" {
		return 0
	}
	if strings.EqualFold(seeker, job) {
		return 1
	}
	return 0
}

// textOverlap is the share of distinct job-description tokens that also
// occur in the bio.
func textOverlap(bio, description string) float64 {
	bioTokens := tokenSet(bio)
	jobTokens := tokenSet(description)
	if len(bioTokens) == 0 || len(jobTokens) == 0 {
		return 0
	}

	shared := 0
	for tok := range jobTokens {
		if _, ok := bioTokens[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(jobTokens))
}

func applicationFit(applied []recommendation.JobPosting, job recommendation.JobPosting) float64 {
	if len(applied) == 0 {
		return 0
	}

	var sameCategory, sameLocation bool
	for _, a := range applied {
		if !sameCategory && nonEmptyEqualFold(a.Category, job.Category) {
			sameCategory = true
		}
		if !sameLocation && nonEmptyEqualFold(a.Location, job.Location) {
			sameLocation = true
		}
		if sameCategory && sameLocation {
			break
		}
	}

	score := 0.0
	if sameCategory {
		score += 0.5
	}
	if sameLocation {
		score += 0.5
	}
	return score
}

func membership(set map[uuid.UUID]struct{}, id uuid.UUID) float64 {
	if len(set) == 0 || id == uuid.Nil {
		return 0
	}
	if _, ok := set[id]; ok {
		return 1
	}
	return 0
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

func nonEmptyEqualFold(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
