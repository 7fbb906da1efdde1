package gamedata

import (
	"testing"

	"github.com/antonk9218/skdesk/internal/client/api"
	"github.com/stretchr/testify/require"
)

func TestDeriveRecruits_Classification(t *testing.T) {
	slots := []api.RecruitSlot{
		{State: 0},
		{State: 1},
		{State: 2, FinishTs: testNow + 3600},
		{State: 2, FinishTs: testNow - 5}, // finished while we were away
		{State: 3},
	}

	got := DeriveRecruits(slots, testNow)
	require.Equal(t, 1, got.Unavailable)
	require.Equal(t, 1, got.Idle)
	require.Equal(t, 1, got.Recruiting)
	require.Equal(t, 2, got.Complete, "overdue in-progress slot counts as complete")
	require.Equal(t, testNow+3600, got.LastFinish)

	require.Equal(t, SlotComplete, got.Slots[3].State)
	require.Equal(t, int64(3600), got.Slots[2].RemainSecs)
}

func TestDeriveRecruits_Empty(t *testing.T) {
	got := DeriveRecruits(nil, testNow)
	require.Empty(t, got.Slots)
	require.Equal(t, int64(-1), got.LastFinish)
}

func TestDeriveDorms(t *testing.T) {
	dorms := []api.Dormitory{
		{RestCount: 3},
		{Chars: []api.BuildingChar{{CharID: "a"}, {CharID: "b"}}}, // count from roster
		{RestCount: 5},
	}

	got := DeriveDorms(dorms)
	require.Equal(t, 10, got.Resting)
	require.Equal(t, 15, got.Capacity)
}

func TestDeriveTraining(t *testing.T) {
	tr := &api.Training{
		Trainee:    &api.TrainingChar{CharID: "char_002_amiya", TargetSkill: 2},
		Trainer:    &api.TrainingChar{CharID: "char_112_siege"},
		RemainSecs: 600,
	}

	got := DeriveTraining(tr, testNow+100, testNow)
	require.True(t, got.Active)
	require.Equal(t, int64(500), got.RemainSecs)
	require.Equal(t, "char_002_amiya", got.TraineeID)
	require.Equal(t, "char_112_siege", got.TrainerID)

	done := DeriveTraining(tr, testNow+10_000, testNow)
	require.False(t, done.Active)
	require.Equal(t, int64(0), done.RemainSecs)
}

func TestDeriveTraining_Idle(t *testing.T) {
	require.Equal(t, int64(-1), DeriveTraining(nil, testNow, testNow).RemainSecs)
	require.Equal(t, int64(-1), DeriveTraining(&api.Training{RemainSecs: -1}, testNow, testNow).RemainSecs)
}

func TestDeriveMeeting_Defaults(t *testing.T) {
	require.Equal(t, 7, DeriveMeeting(nil).ClueLimit)

	got := DeriveMeeting(&api.Meeting{OwnClues: 4, SharedClue: 1})
	require.Equal(t, 4, got.OwnClues)
	require.Equal(t, 7, got.ClueLimit, "missing limit falls back to 7")
}

func TestDeriveHire(t *testing.T) {
	require.Equal(t, int64(-1), DeriveHire(nil, testNow).RemainSecs)

	got := DeriveHire(&api.Hire{RefreshCount: 2, CompleteWorkTime: testNow + 300}, testNow)
	require.Equal(t, 2, got.RefreshCount)
	require.Equal(t, int64(300), got.RemainSecs)

	settled := DeriveHire(&api.Hire{RefreshCount: 3, CompleteWorkTime: testNow - 1}, testNow)
	require.Equal(t, int64(-1), settled.RemainSecs)
}

func TestDeriveRoutineAndRewards_NilSafe(t *testing.T) {
	require.Equal(t, RoutineSummary{}, DeriveRoutine(nil))
	require.Equal(t, Progress{}, DeriveCampaign(nil))
	require.Equal(t, TowerSummary{}, DeriveTower(nil))

	r := DeriveRoutine(&api.Routine{
		Daily:  &api.TaskProgress{Current: 5, Total: 10},
		Weekly: nil,
	})
	require.Equal(t, Progress{Current: 5, Total: 10}, r.Daily)
	require.Equal(t, Progress{}, r.Weekly)

	tw := DeriveTower(&api.Tower{Reward: &api.TowerReward{
		HigherItem: &api.TaskProgress{Current: 1, Total: 2},
	}})
	require.Equal(t, Progress{Current: 1, Total: 2}, tw.Higher)
}

func TestTiredCount(t *testing.T) {
	require.Equal(t, 0, TiredCount(nil))
	require.Equal(t, 2, TiredCount(&api.Building{
		TiredChars: []api.BuildingChar{{CharID: "a"}, {CharID: "b"}},
	}))
}
