package githook

import (
	"sort"
	"time"

	"github.com/jackwu/vibetrail/model"
)

// graceAfter tolerates session files touched moments after the commit
// (the agent writing its log while the hook runs).
const graceAfter = time.Minute

// Match selects the sessions whose last activity falls within window
// before the commit time. Candidates are returned most recent first;
// the caller decides whether to link all of them or just the best one.
func Match(commit Commit, sessions []model.Session, window time.Duration) []model.Session {
	earliest := commit.Time.Add(-window)
	latest := commit.Time.Add(graceAfter)

	var matched []model.Session
	for _, session := range sessions {
		if session.Time.Before(earliest) || session.Time.After(latest) {
			continue
		}
		matched = append(matched, session)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Time.Equal(matched[j].Time) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Time.After(matched[j].Time)
	})
	return matched
}
