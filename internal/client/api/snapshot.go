package api

// Snapshot is one fetched, immutable point-in-time copy of remote account
// and game state. Subsystems the service omitted are nil pointers or empty
// slices; the derivation layer must treat both as "absent" and return its
// documented sentinel values.
//
// Timestamps are unix seconds throughout, as delivered by the service.
type Snapshot struct {
	Status     *PlayerStatus       `json:"status"`
	Building   *Building           `json:"building"`
	Recruit    []RecruitSlot       `json:"recruit"`
	Routine    *Routine            `json:"routine"`
	Campaign   *Campaign           `json:"campaign"`
	Tower      *Tower              `json:"tower"`
	Chars      []Char              `json:"chars"`
	AssistChar []AssistChar        `json:"assistChars"`
	CharInfo   map[string]CharInfo `json:"charInfoMap"`
	Rogue      *Rogue              `json:"rogue"`
}

// PlayerStatus is the account-level block: identity plus the regenerating
// AP gauge.
type PlayerStatus struct {
	Name              string  `json:"name"`
	Level             int     `json:"level"`
	Avatar            *Avatar `json:"avatar"`
	MainStageProgress string  `json:"mainStageProgress"`
	AP                *APInfo `json:"ap"`
	RegisterTs        int64   `json:"registerTs"`
	LastOnlineTs      int64   `json:"lastOnlineTs"`
}

// APInfo is the regenerating gauge. CompleteRecoveryTime is the instant the
// gauge reaches Max at the fixed per-unit interval.
type APInfo struct {
	Current              int   `json:"current"`
	Max                  int   `json:"max"`
	LastApAddTime        int64 `json:"lastApAddTime"`
	CompleteRecoveryTime int64 `json:"completeRecoveryTime"`
}

type Avatar struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	URL  string `json:"url"`
}

// Building groups the base-infrastructure subsystems.
type Building struct {
	Labor        *Labor               `json:"labor"`
	Manufactures []ManufactureStation `json:"manufactures"`
	Tradings     []TradingStation     `json:"tradings"`
	Dormitories  []Dormitory          `json:"dormitories"`
	Meeting      *Meeting             `json:"meeting"`
	Hire         *Hire                `json:"hire"`
	Training     *Training            `json:"training"`
	TiredChars   []BuildingChar       `json:"tiredChars"`
}

// Labor is the linear-charge drone pool: Value drones at LastUpdateTime,
// reaching Max after RemainSecs more seconds.
type Labor struct {
	Value          int   `json:"value"`
	MaxValue       int   `json:"maxValue"`
	RemainSecs     int64 `json:"remainSecs"`
	LastUpdateTime int64 `json:"lastUpdateTime"`
}

// ManufactureStation is one production line. Complete units were done at
// LastUpdateTime; Capacity bounds the output buffer.
type ManufactureStation struct {
	SlotID           string         `json:"slotId"`
	Level            int            `json:"level"`
	FormulaID        string         `json:"formulaId"`
	Capacity         int            `json:"capacity"`
	Complete         int            `json:"complete"`
	WeightComplete   int            `json:"weight"`
	CompleteWorkTime int64          `json:"completeWorkTime"`
	LastUpdateTime   int64          `json:"lastUpdateTime"`
	Workers          []BuildingChar `json:"chars"`
}

// TradingStation is one order desk: StockCount orders ready out of
// StockLimit slots, as of LastUpdateTime.
type TradingStation struct {
	SlotID           string         `json:"slotId"`
	Level            int            `json:"level"`
	StockLimit       int            `json:"stockLimit"`
	StockCount       int            `json:"stock"`
	CompleteWorkTime int64          `json:"completeWorkTime"`
	LastUpdateTime   int64          `json:"lastUpdateTime"`
	Workers          []BuildingChar `json:"chars"`
}

// BuildingChar is a worker assigned to a station, dormitory, or listed as
// fatigued.
type BuildingChar struct {
	CharID  string `json:"charId"`
	SkillID string `json:"skillId"`
	AP      int    `json:"ap"`
}

type Dormitory struct {
	Level     int            `json:"level"`
	Comfort   int            `json:"comfort"`
	RestCount int            `json:"restCount"`
	Chars     []BuildingChar `json:"chars"`
}

type Meeting struct {
	OwnClues   int `json:"ownClues"`
	ClueLimit  int `json:"clueLimit"`
	SharedClue int `json:"sharedClue"`
}

type Hire struct {
	RefreshCount     int   `json:"refreshCount"`
	CompleteWorkTime int64 `json:"completeWorkTime"`
}

type Training struct {
	Trainee *TrainingChar `json:"trainee"`
	Trainer *TrainingChar `json:"trainer"`
	// RemainSecs is the time left on the current training session;
	// -1 when the room is idle.
	RemainSecs int64 `json:"remainSecs"`
}

type TrainingChar struct {
	CharID      string `json:"charId"`
	TargetSkill int    `json:"targetSkill"`
}

// RecruitSlot is one hire slot. State values follow the service:
// 0 unavailable, 1 idle, 2 recruiting, 3 complete.
type RecruitSlot struct {
	State    int   `json:"state"`
	StartTs  int64 `json:"startTs"`
	FinishTs int64 `json:"finishTs"`
}

// Routine carries the daily/weekly task counters.
type Routine struct {
	Daily  *TaskProgress `json:"daily"`
	Weekly *TaskProgress `json:"weekly"`
}

type TaskProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type Campaign struct {
	Reward *TaskProgress `json:"reward"`
}

type Tower struct {
	Reward *TowerReward `json:"reward"`
}

type TowerReward struct {
	LowerItem  *TaskProgress `json:"lowerItem"`
	HigherItem *TaskProgress `json:"higherItem"`
}

type Char struct {
	CharID      string `json:"charId"`
	Level       int    `json:"level"`
	EvolvePhase int    `json:"evolvePhase"`
}

type AssistChar struct {
	CharID          string `json:"charId"`
	Level           int    `json:"level"`
	EvolvePhase     int    `json:"evolvePhase"`
	SkillID         string `json:"skillId"`
	MainSkillLvl    int    `json:"mainSkillLvl"`
	PotentialRank   int    `json:"potentialRank"`
	SpecializeLevel int    `json:"specializeLevel"`
}

type CharInfo struct {
	Name   string `json:"name"`
	Rarity int    `json:"rarity"`
}

type Rogue struct {
	RelicCnt int `json:"relicCnt"`
}

// CompactStatus is the projection of a snapshot persisted alongside the
// session so the UI has something to show before the first fresh fetch.
// Everything else is deliberately dropped to keep the blob small.
type CompactStatus struct {
	Name              string  `json:"name"`
	Level             int     `json:"level"`
	Avatar            *Avatar `json:"avatar,omitempty"`
	MainStageProgress string  `json:"mainStageProgress"`
	AP                *APInfo `json:"ap,omitempty"`
}

// Compact extracts the persistable projection. Returns nil for a nil
// snapshot or one with no status block.
func (s *Snapshot) Compact() *CompactStatus {
	if s == nil || s.Status == nil {
		return nil
	}
	return &CompactStatus{
		Name:              s.Status.Name,
		Level:             s.Status.Level,
		Avatar:            s.Status.Avatar,
		MainStageProgress: s.Status.MainStageProgress,
		AP:                s.Status.AP,
	}
}
