// Package level computes the user progression projection from the number of
// indexed NFTs a wallet holds. The projection is a pure function of the
// count so that stored aggregates can always be recomputed from scratch.
package level

// MaxLevel is the cap of the progression curve
const MaxLevel = 10

// thresholds[i] is the minimum NFT count required to reach level i+1.
// Level 1 starts at zero, each step roughly doubles.
var thresholds = [MaxLevel]int64{0, 2, 5, 10, 20, 35, 55, 80, 115, 160}

// Aggregate is the computed progression state for one wallet
type Aggregate struct {
	// Level is the current progression level, 1..MaxLevel
	Level int
	// Experience is the raw NFT count feeding the curve
	Experience int64
	// NextLevelAt is the NFT count required for the next level,
	// zero when the wallet is already at MaxLevel
	NextLevelAt int64
}

// Compute derives the progression state from an NFT count.
// Negative counts are treated as zero.
func Compute(count int64) Aggregate {
	if count < 0 {
		count = 0
	}

	lvl := 1
	for i := MaxLevel - 1; i >= 0; i-- {
		if count >= thresholds[i] {
			lvl = i + 1
			break
		}
	}

	agg := Aggregate{Level: lvl, Experience: count}
	if lvl < MaxLevel {
		agg.NextLevelAt = thresholds[lvl]
	}
	return agg
}
