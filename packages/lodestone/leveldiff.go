package lodestone

import "fmt"

// levelDiff maps a recipe's base level to its effective-level adjustment,
// indexed by star count. The 50/60/70/80 rows were verified in game; the
// between-expansion rows come from desynthesis results.
var levelDiff = map[int][]int{
	50: {0, 5, 20, 40, 60},        // 50, 55, 70, 90, 110
	51: {69},                      // 120
	52: {73},                      // 125
	53: {77},                      // 130
	54: {79},                      // 133
	55: {81},                      // 136
	56: {83},                      // 139
	57: {85},                      // 142
	58: {87},                      // 145
	59: {89},                      // 148
	60: {90, 100, 120, 150, 190},  // 150, 160, 180, 210, 250
	61: {199},                     // 260
	62: {203},                     // 265
	63: {207},                     // 270
	64: {209},                     // 273
	65: {211},                     // 276
	66: {213},                     // 279
	67: {215},                     // 282
	68: {217},                     // 285
	69: {219},                     // 288
	70: {220, 230, 250, 280, 310}, // 290, 300, 320, 350, 380
	71: {319},                     // 390
	72: {323},                     // 395
	73: {327},                     // 400
	74: {329},                     // 403
	75: {331},                     // 406
	76: {333},                     // 409
	77: {335},                     // 412
	78: {337},                     // 415
	79: {339},                     // 418
	80: {340, 350},                // 420, 430
}

// effectiveLevel applies the star adjustment plus the handful of recipes
// whose in-game level deviates from the table, identified by their
// difficulty values.
func effectiveLevel(baseLevel, stars, difficulty int) (int, error) {
	adjustment := 0
	if diffs, ok := levelDiff[baseLevel]; ok {
		if stars >= len(diffs) {
			return 0, fmt.Errorf("unsupported number of stars (%d) for level %d", stars, baseLevel)
		}
		adjustment = diffs[stars]
	}
	level := baseLevel + adjustment

	// Base level 51 recipes of difficulty 169 or 339 sit at level 115
	// instead of the 120 other level 51 recipes are adjusted to; level 61
	// has the same quirk.
	if (baseLevel == 51 && (difficulty == 169 || difficulty == 339)) ||
		(baseLevel == 61 && (difficulty == 1116 || difficulty == 558)) {
		level -= 5
	}
	if baseLevel == 60 && stars == 3 && difficulty == 1764 {
		level += 10
	}
	return level, nil
}
