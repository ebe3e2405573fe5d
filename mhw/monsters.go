package mhw

// MonsterInfo is the static metadata of one large monster
type MonsterInfo struct {
	StrID    string
	ID       uint32
	BaseSize float64
	Crowns   CrownType
	Name     string
}

var monsterTable = []MonsterInfo{
	{"em001_00", 9, 1754.37, CrownStandard, "Rathian"},
	{"em001_01", 10, 1754.37, CrownStandard, "Pink Rathian"},
	{"em001_02", 88, 1754.37, CrownStandard, "Gold Rathian"},
	{"em002_00", 1, 1704.22, CrownStandard, "Rathalos"},
	{"em002_01", 11, 1704.22, CrownStandard, "Azure Rathalos"},
	{"em002_02", 89, 1704.22, CrownStandard, "Silver Rathalos"},
	{"em007_00", 12, 2096.25, CrownStandard, "Diablos"},
	{"em007_01", 13, 2096.25, CrownStandard, "Black Diablos"},
	{"em011_00", 14, 536.26, CrownStandard, "Kirin"},
	{"em018_00", 90, 1389.01, CrownStandard, "Yian Garuga"},
	{"em018_05", 99, 1389.01, CrownStandard, "Scarred Yian Garuga"},
	{"em023_00", 91, 829.11, CrownRajang, "Rajang"},
	{"em023_05", 92, 829.11, CrownRajang, "Furious Rajang"},
	{"em024_00", 16, 1913.13, CrownStandard, "Kushala Daora"},
	{"em026_00", 17, 1828.69, CrownStandard, "Lunastra"},
	{"em027_00", 18, 1790.15, CrownStandard, "Teostra"},
	{"em032_00", 61, 1943.20, CrownStandard, "Tigrex"},
	{"em032_01", 93, 1943.20, CrownStandard, "Brute Tigrex"},
	{"em036_00", 19, 1797.24, CrownStandard, "Lavasioth"},
	{"em037_00", 62, 1914.74, CrownStandard, "Nargacuga"},
	{"em042_00", 63, 2098.30, CrownStandard, "Barioth"},
	{"em043_00", 20, 2063.82, CrownAlternate, "Deviljho"},
	{"em043_05", 64, 2063.82, CrownSavage, "Savage Deviljho"},
	{"em044_00", 21, 1383.07, CrownStandard, "Barroth"},
	{"em045_00", 22, 2058.63, CrownAlternate, "Uragaan"},
	{"em057_00", 94, 1743.49, CrownStandard, "Zinogre"},
	{"em063_00", 65, 1630.55, CrownStandard, "Brachydios"},
	{"em063_05", 96, 2282.77, CrownStandard, "Raging Brachydios"},
	{"em057_01", 95, 1743.49, CrownStandard, "Stygian Zinogre"},
	{"em080_00", 66, 2461.50, CrownAlternate, "Glavenus"},
	{"em080_01", 67, 2372.44, CrownAlternate, "Acidic Glavenus"},
	{"em100_00", 0, 1646.46, CrownAlternate, "Anjanath"},
	{"em100_01", 68, 1646.46, CrownAlternate, "Fulgur Anjanath"},
	{"em101_00", 7, 1109.66, CrownStandard, "Great Jagras"},
	{"em102_00", 24, 1102.45, CrownAlternate, "Pukei Pukei"},
	{"em102_01", 69, 1102.45, CrownAlternate, "Coral Pukei Pukei"},
	{"em103_00", 25, 1848.12, CrownStandard, "Nergigante"},
	{"em103_05", 70, 1848.12, CrownStandard, "Ruiner Nergigante"},
	{"em104_00", 97, 4799.78, CrownStandard, "Safi Jiiva"},
	{"em105_00", 26, 4509.10, CrownUndefined, "Xeno Jiiva"},
	{"em106_00", 4, 25764.59, CrownUndefined, "Zorah Magdaros"},
	{"em107_00", 27, 901.24, CrownStandard, "Kulu Ya Ku"},
	{"em108_00", 29, 1508.71, CrownStandard, "Jyuratodus"},
	{"em109_00", 30, 1300.52, CrownAlternate, "Tobi Kadachi"},
	{"em109_01", 71, 1300.52, CrownAlternate, "Viper Tobi Kadachi"},
	{"em110_00", 31, 1143.36, CrownStandard, "Paolumu"},
	{"em110_01", 72, 1143.36, CrownStandard, "Nightshade Paolumu"},
	{"em111_00", 32, 1699.75, CrownStandard, "Legiana"},
	{"em111_05", 73, 1831.69, CrownStandard, "Shrieking Legiana"},
	{"em112_00", 33, 1053.15, CrownStandard, "Great Girros"},
	{"em113_00", 34, 1388.75, CrownStandard, "Odogaron"},
	{"em113_01", 74, 1388.75, CrownStandard, "Ebony Odogaron"},
	{"em114_00", 35, 1803.47, CrownAlternate, "Radobaan"},
	{"em115_00", 36, 2095.40, CrownStandard, "Vaal Hazak"},
	{"em115_05", 75, 2095.40, CrownStandard, "Blackveil Vaal Hazak"},
	{"em116_00", 37, 1111.11, CrownStandard, "Dodogama"},
	{"em117_00", 38, 4573.25, CrownUndefined, "Kulve Taroth"},
	{"em118_00", 39, 1928.38, CrownStandard, "Bazelgeuse"},
	{"em118_05", 76, 1928.38, CrownStandard, "Seething Bazelgeuse"},
	{"em120_00", 28, 894.04, CrownStandard, "Tzitzi Ya Ku"},
	{"em121_00", 15, 3423.65, CrownUndefined, "Behemoth"},
	{"em122_00", 77, 1661.99, CrownStandard, "Beotodus"},
	{"em123_00", 78, 2404.84, CrownStandard, "Banbaro"},
	{"em124_00", 79, 2596.05, CrownStandard, "Velkhana"},
	{"em125_00", 80, 2048.25, CrownStandard, "Namielle"},
	{"em126_00", 81, 2910.91, CrownUndefined, "Shara Ishvalda"},
	{"em127_00", 23, 549.70, CrownUndefined, "Leshen"},
	{"em127_01", 51, 633.81, CrownUndefined, "Ancient Leshen"},
	{"em050_00", 87, 2969.63, CrownUndefined, "Alatreon"},
	{"em042_05", 100, 2098.30, CrownUndefined, "Frostfang Barioth"},
	{"em013_00", 101, 4137.17, CrownUndefined, "Fatalis"},
}

var (
	monstersByID    = make(map[uint32]MonsterInfo, len(monsterTable))
	monstersByStrID = make(map[string]MonsterInfo, len(monsterTable))
)

func init() {
	for _, m := range monsterTable {
		monstersByID[m.ID] = m
		monstersByStrID[m.StrID] = m
	}
}

// LookupMonster returns the metadata for a numeric monster id
func LookupMonster(id uint32) (MonsterInfo, bool) {
	m, ok := monstersByID[id]
	return m, ok
}

// LookupMonsterModel returns the metadata for a model string id such as "em002_00"
func LookupMonsterModel(strID string) (MonsterInfo, bool) {
	m, ok := monstersByStrID[strID]
	return m, ok
}

// Monsters returns a copy of the whole table
func Monsters() []MonsterInfo {
	out := make([]MonsterInfo, len(monsterTable))
	copy(out, monsterTable)
	return out
}
