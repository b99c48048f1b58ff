package training

import (
	"errors"
	"sort"
	"time"

	"pharmtrain_backend/internal/model"
)

var ErrModuleLocked = errors.New("module is locked until the previous module is completed")

type ModuleState struct {
	ModuleID           uint       `json:"moduleId"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	OrderIndex         int        `json:"orderIndex"`
	DurationMinutes    int        `json:"durationMinutes"`
	Completed          bool       `json:"completed"`
	ProgressPercentage int        `json:"progressPercentage"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	Unlocked           bool       `json:"unlocked"`
}

// SortModules returns a copy ordered by OrderIndex, ties broken by ID.
func SortModules(modules []model.TrainingModule) []model.TrainingModule {
	sorted := make([]model.TrainingModule, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].OrderIndex != sorted[j].OrderIndex {
			return sorted[i].OrderIndex < sorted[j].OrderIndex
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// UnlockedSet returns the indices a user may start: index 0, plus every index whose
// predecessor is completed. With override every index is unlocked.
func UnlockedSet(completed []bool, override bool) []int {
	unlocked := make([]int, 0, len(completed))
	for i := range completed {
		if override || i == 0 || completed[i-1] {
			unlocked = append(unlocked, i)
		}
	}
	return unlocked
}

// BuildModuleStates joins one user's progress rows onto the ordered module list.
// Rows for unknown modules are ignored; modules without a row default to not started.
func BuildModuleStates(modules []model.TrainingModule, rows []model.ModuleProgress, session Session) []ModuleState {
	sorted := SortModules(modules)

	byModule := make(map[uint]model.ModuleProgress, len(rows))
	for _, row := range rows {
		if session.UserID != 0 && row.UserID != session.UserID {
			continue
		}
		byModule[row.ModuleID] = row
	}

	states := make([]ModuleState, len(sorted))
	completed := make([]bool, len(sorted))
	for i, m := range sorted {
		state := ModuleState{
			ModuleID:        m.ID,
			Title:           m.Title,
			Description:     m.Description,
			Category:        m.Category,
			OrderIndex:      m.OrderIndex,
			DurationMinutes: m.DurationMinutes,
		}
		if row, ok := byModule[m.ID]; ok {
			state.Completed = row.Completed
			state.ProgressPercentage = row.CompletionPercentage
			state.CompletedAt = row.CompletedAt
			if row.Completed {
				state.ProgressPercentage = 100
			}
		}
		states[i] = state
		completed[i] = state.Completed
	}

	for _, idx := range UnlockedSet(completed, session.OverrideActive()) {
		states[idx].Unlocked = true
	}
	return states
}

func FindState(states []ModuleState, moduleID uint) (ModuleState, bool) {
	for _, s := range states {
		if s.ModuleID == moduleID {
			return s, true
		}
	}
	return ModuleState{}, false
}

// CanStart returns ErrModuleLocked when the module exists but is not unlocked.
func CanStart(states []ModuleState, moduleID uint) error {
	state, ok := FindState(states, moduleID)
	if !ok {
		return errors.New("module not found")
	}
	if !state.Unlocked {
		return ErrModuleLocked
	}
	return nil
}

type ProgressUpdate struct {
	Percentage int
	Completed  bool
}

// ApplyProgress merges an update into the stored row. The percentage never decreases while
// the module is incomplete, and a completed row stays completed and pinned at 100.
func ApplyProgress(current model.ModuleProgress, update ProgressUpdate, now time.Time) model.ModuleProgress {
	next := current
	if next.Completed {
		next.CompletionPercentage = 100
		return next
	}

	pct := clampPercentage(update.Percentage)
	if pct > next.CompletionPercentage {
		next.CompletionPercentage = pct
	}

	if update.Completed {
		next.Completed = true
		next.CompletionPercentage = 100
		if next.CompletedAt == nil {
			ts := now
			next.CompletedAt = &ts
		}
	}
	return next
}

func clampPercentage(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
