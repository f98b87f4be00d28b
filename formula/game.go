package formula

import (
	"math"
	"strings"
)

// Invalid is the sentinel marker returned by the game-balance functions
// for out-of-domain arguments. It flows through formulas as ordinary text
// instead of aborting evaluation.
const Invalid = "#VALUE!"

// rarityMultipliers maps rarity tier names to stat multipliers. Unknown
// names fall back to 1.0.
var rarityMultipliers = map[string]float64{
	"common":    1.0,
	"uncommon":  1.2,
	"rare":      1.5,
	"epic":      2.0,
	"legendary": 3.0,
	"mythic":    5.0,
}

// gachaTierRates are the default per-rarity pull rates, in percent,
// indexed by rarity tier 1 through 6.
var gachaTierRates = [...]float64{50, 25, 15, 7, 2.5, 0.5}

// fnDamageCalc computes attack damage reduced by defense:
// floor(atk * 100 / (100 + def)).
func fnDamageCalc(args []Value) (Value, error) {
	if len(args) != 2 {
		return Null, errArgCount("DAMAGE_CALC", "2", len(args))
	}

	atk := args[0].NumberOr(0)
	def := args[1].NumberOr(0)

	return Number(math.Floor(atk * 100 / (100 + def))), nil
}

// fnRarityBonus maps a rarity tier name to its stat multiplier. Unknown
// tiers return the neutral multiplier 1.0.
func fnRarityBonus(args []Value) (Value, error) {
	if len(args) != 1 {
		return Null, errArgCount("RARITY_BONUS", "1", len(args))
	}

	name := strings.ToLower(strings.TrimSpace(args[0].AsText()))

	if mult, ok := rarityMultipliers[name]; ok {
		return Number(mult), nil
	}

	return Number(1.0), nil
}

// fnStatScale scales a base stat by level along a named growth curve.
//
//	linear:       base + growth*(level-1)
//	exponential:  base * (1 + growth/100)^(level-1)
//	logarithmic:  base + growth*ln(level)
//	quadratic:    base + growth*(level-1)^2
//
// A level below 1 or an unknown curve name yields the invalid marker.
func fnStatScale(args []Value) (Value, error) {
	if len(args) < 2 || len(args) > 4 {
		return Null, errArgCount("STAT_SCALE", "2..4", len(args))
	}

	level := args[0].NumberOr(0)
	base := args[1].NumberOr(0)

	growth := 10.0
	if len(args) >= 3 {
		growth = args[2].NumberOr(0)
	}

	mode := "linear"
	if len(args) == 4 {
		mode = strings.ToLower(strings.TrimSpace(args[3].AsText()))
	}

	if level < 1 {
		return Text(Invalid), nil
	}

	switch mode {
	case "linear":
		return Number(math.Round(base + growth*(level-1))), nil

	case "exponential":
		return Number(math.Round(base * math.Pow(1+growth/100, level-1))), nil

	case "logarithmic":
		return Number(math.Round(base + growth*math.Log(level))), nil

	case "quadratic":
		return Number(math.Round(base + growth*(level-1)*(level-1))), nil

	default:
		return Text(Invalid), nil
	}
}

// fnDropRate computes an item drop chance: base rate plus a luck bonus of
// 0.1 per point, plus 2.5 per level the player is above the enemy when
// both levels are supplied. The result is capped at 100.
func fnDropRate(args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 4 {
		return Null, errArgCount("DROP_RATE", "1..4", len(args))
	}

	rate := args[0].NumberOr(0)

	if len(args) >= 2 {
		rate += args[1].NumberOr(0) * 0.1
	}

	if len(args) == 4 {
		enemy := args[2].NumberOr(0)
		player := args[3].NumberOr(0)

		if player > enemy {
			rate += (player - enemy) * 2.5
		}
	}

	return Number(math.Min(rate, 100)), nil
}

// fnExpCurve computes the experience required to reach a level:
// round(base * mult * level^exp).
func fnExpCurve(args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 4 {
		return Null, errArgCount("EXP_CURVE", "1..4", len(args))
	}

	level := args[0].NumberOr(0)

	base := 100.0
	if len(args) >= 2 {
		base = args[1].NumberOr(0)
	}

	mult := 1.5
	if len(args) >= 3 {
		mult = args[2].NumberOr(0)
	}

	exp := 1.5
	if len(args) == 4 {
		exp = args[3].NumberOr(0)
	}

	return Number(math.Round(base * mult * math.Pow(level, exp))), nil
}

// fnGachaRate computes the pull rate for a rarity tier under a pity
// system. At or past the pity threshold the pull is guaranteed. Across
// the final quarter before the threshold ("soft pity") the rate ramps
// linearly up to ten times its base value.
func fnGachaRate(args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 4 {
		return Null, errArgCount("GACHA_RATE", "1..4", len(args))
	}

	rarity := int(args[0].NumberOr(0))
	if rarity < 1 || rarity > len(gachaTierRates) {
		return Text(Invalid), nil
	}

	pity := 0.0
	if len(args) >= 2 {
		pity = args[1].NumberOr(0)
	}

	rate := gachaTierRates[rarity-1]
	if len(args) >= 3 && !args[2].IsEmpty() {
		rate = args[2].NumberOr(0)
	}

	threshold := 90.0
	if len(args) == 4 {
		threshold = args[3].NumberOr(0)
	}

	if threshold <= 0 || pity >= threshold {
		return Number(100), nil
	}

	softStart := threshold * 0.75
	if pity >= softStart {
		ramp := (pity - softStart) / (threshold - softStart)

		return Number(math.Min(rate*(1+9*ramp), 100)), nil
	}

	return Number(rate), nil
}
