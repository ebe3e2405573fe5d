// Package mhw decodes hunt state out of the game's memory.
package mhw

// Session and player-name layout, relative to the lobby and player-name bases
const (
	IDLength         = 12
	PlayerNameLength = 32
	FirstPlayerName  = 0x53305
	NextPlayerName   = PlayerNameLength + 1 // names are NUL terminated back to back

	SessionID              = FirstPlayerName + 0xF43
	SessionHostName        = SessionID + 0x3F
	ExpeditionStatusOffset = 0x38
	MissionStatusOffset    = 0x54
)

// Damage collection layout, relative to the dereferenced PlayerDamage anchor
const (
	MaxPlayers     = 4
	FirstPlayerPtr = 0x48
	NextPlayerPtr  = 0x58
	PlayerDamage   = 0x48
)

// Monster record layout
const (
	MaxMonsters = 3

	PreviousMonster      = 0x10
	NextMonster          = 0x18
	MonsterStartOfStruct = 0x40

	MonsterHealthComponent = 0x7670
	MonsterHealthMax       = 0x60
	MonsterHealthCurrent   = 0x64

	MonsterID            = 0x12280
	MonsterModelIDOffset = 0x179
	MonsterModelIDLength = 32

	MonsterSizeScale     = 0x188
	MonsterScaleModifier = 0x7730
)

// MonsterListChain leads from the Monsters anchor to a node of the monster list
var MonsterListChain = []int64{0x0, 0x698, 0x0, 0x138, 0x0}

// walk bounds
const (
	maxMonsterLinks  = 64
	maxPlausibleHP   = 1_000_000
	maxPlausibleSize = 3.0
)
