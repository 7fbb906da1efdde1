package gamedata

import "github.com/antonk9218/skdesk/internal/client/api"

// SlotState classifies one recruitment slot.
type SlotState int

const (
	SlotUnavailable SlotState = iota
	SlotIdle
	SlotRecruiting
	SlotComplete
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "idle"
	case SlotRecruiting:
		return "recruiting"
	case SlotComplete:
		return "complete"
	default:
		return "unavailable"
	}
}

// RecruitSlotState is one classified slot with its live countdown.
type RecruitSlotState struct {
	Index      int
	State      SlotState
	RemainSecs int64
	FinishTs   int64
}

// RecruitSummary is the per-classification census of the hire slots.
// LastFinish is the furthest completion instant among slots still
// recruiting, -1 when none are.
type RecruitSummary struct {
	Slots       []RecruitSlotState
	Unavailable int
	Idle        int
	Recruiting  int
	Complete    int
	LastFinish  int64
}

// DeriveRecruits classifies the hire slots. A slot the service reported as
// recruiting is promoted to complete once its finish instant has passed.
func DeriveRecruits(slots []api.RecruitSlot, now int64) RecruitSummary {
	sum := RecruitSummary{LastFinish: -1}
	for i, slot := range slots {
		st := RecruitSlotState{Index: i, FinishTs: slot.FinishTs}
		switch slot.State {
		case 1:
			st.State = SlotIdle
		case 2:
			if slot.FinishTs > 0 && slot.FinishTs <= now {
				st.State = SlotComplete
			} else {
				st.State = SlotRecruiting
				st.RemainSecs = slot.FinishTs - now
			}
		case 3:
			st.State = SlotComplete
		default:
			st.State = SlotUnavailable
		}

		switch st.State {
		case SlotIdle:
			sum.Idle++
		case SlotRecruiting:
			sum.Recruiting++
			if slot.FinishTs > sum.LastFinish {
				sum.LastFinish = slot.FinishTs
			}
		case SlotComplete:
			sum.Complete++
		default:
			sum.Unavailable++
		}
		sum.Slots = append(sum.Slots, st)
	}
	return sum
}

// dormBedCount is the fixed per-dormitory bed count in the game.
const dormBedCount = 5

// DormSummary is the base-wide rest census.
type DormSummary struct {
	Resting  int
	Capacity int
}

// DeriveDorms sums resting operators across dormitories. RestCount is
// preferred; a missing count falls back to the assigned roster length.
func DeriveDorms(dorms []api.Dormitory) DormSummary {
	sum := DormSummary{}
	for _, d := range dorms {
		n := d.RestCount
		if n == 0 {
			n = len(d.Chars)
		}
		sum.Resting += n
		sum.Capacity += dormBedCount
	}
	return sum
}

// TrainingState is the live view of the training room.
type TrainingState struct {
	Active      bool
	TraineeID   string
	TrainerID   string
	TargetSkill int
	RemainSecs  int64
}

// DeriveTraining projects the training room. An absent room or a service
// RemainSecs of -1 reports idle. A countdown is clamped at zero once the
// session has finished.
func DeriveTraining(tr *api.Training, now int64, fetchedAt int64) TrainingState {
	if tr == nil || tr.Trainee == nil || tr.RemainSecs < 0 {
		return TrainingState{RemainSecs: -1}
	}

	remain := tr.RemainSecs - (now - fetchedAt)
	if remain < 0 {
		remain = 0
	}
	st := TrainingState{
		Active:      remain > 0,
		TraineeID:   tr.Trainee.CharID,
		TargetSkill: tr.Trainee.TargetSkill,
		RemainSecs:  remain,
	}
	if tr.Trainer != nil {
		st.TrainerID = tr.Trainer.CharID
	}
	return st
}

// MeetingSummary is the clue census of the meeting room.
type MeetingSummary struct {
	OwnClues   int
	ClueLimit  int
	SharedClue int
}

// DeriveMeeting reports clue holdings; the limit defaults to 7 when the
// service omits it.
func DeriveMeeting(m *api.Meeting) MeetingSummary {
	if m == nil {
		return MeetingSummary{ClueLimit: 7}
	}
	limit := m.ClueLimit
	if limit <= 0 {
		limit = 7
	}
	return MeetingSummary{OwnClues: m.OwnClues, ClueLimit: limit, SharedClue: m.SharedClue}
}

// HireState is the HR office view: remaining free refreshes and the
// countdown until the next one.
type HireState struct {
	RefreshCount int
	RemainSecs   int64
}

// DeriveHire projects the HR refresh countdown; -1 when no refresh is
// pending.
func DeriveHire(h *api.Hire, now int64) HireState {
	if h == nil {
		return HireState{RemainSecs: -1}
	}
	st := HireState{RefreshCount: h.RefreshCount, RemainSecs: -1}
	if h.CompleteWorkTime > now {
		st.RemainSecs = h.CompleteWorkTime - now
	}
	return st
}

// TiredCount reports how many operators need rest.
func TiredCount(b *api.Building) int {
	if b == nil {
		return 0
	}
	return len(b.TiredChars)
}

// Progress is a bounded counter with a nil-safe constructor.
type Progress struct {
	Current int
	Total   int
}

func progressOf(tp *api.TaskProgress) Progress {
	if tp == nil {
		return Progress{}
	}
	return Progress{Current: tp.Current, Total: tp.Total}
}

// RoutineSummary carries the daily/weekly task counters.
type RoutineSummary struct {
	Daily  Progress
	Weekly Progress
}

// DeriveRoutine reports task progress; absent blocks read as 0/0.
func DeriveRoutine(r *api.Routine) RoutineSummary {
	if r == nil {
		return RoutineSummary{}
	}
	return RoutineSummary{Daily: progressOf(r.Daily), Weekly: progressOf(r.Weekly)}
}

// DeriveCampaign reports the weekly annihilation reward progress.
func DeriveCampaign(c *api.Campaign) Progress {
	if c == nil {
		return Progress{}
	}
	return progressOf(c.Reward)
}

// TowerSummary carries both reward tracks of the tower climb.
type TowerSummary struct {
	Lower  Progress
	Higher Progress
}

// DeriveTower reports tower reward progress; absent blocks read as 0/0.
func DeriveTower(t *api.Tower) TowerSummary {
	if t == nil || t.Reward == nil {
		return TowerSummary{}
	}
	return TowerSummary{
		Lower:  progressOf(t.Reward.LowerItem),
		Higher: progressOf(t.Reward.HigherItem),
	}
}
