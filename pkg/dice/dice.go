// Package dice resolves the outcome of a timed choice ("golden dice").
//
// ResolveProbability turns a choice's parameters and the player's response
// latency into a success probability. Resolve then settles it with a d20
// roll against thresholds derived from that probability.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Epsilon guards the time limit against zero or negative values.
const Epsilon = 1e-6

// Sides of the golden die.
const Sides = 20

// ResolveProbability computes
//
//	p = baseP * (1 - responseTime*timeFactor / max(timeLimit, Epsilon))
//
// clamped to [0,1]. Out-of-range inputs are not rejected; their effect is
// absorbed by the clamp.
func ResolveProbability(baseP, timeFactor, responseTime, timeLimit float64) float64 {
	limit := math.Max(timeLimit, Epsilon)
	p := baseP * (1 - (responseTime*timeFactor)/limit)
	return clamp01(p)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Category is the narrative class of a roll.
type Category string

const (
	CategoryHugeSuccess Category = "huge_success"
	CategorySuccess     Category = "success"
	CategoryFailure     Category = "failure"
	CategoryBigFailure  Category = "big_failure"
)

// Succeeded reports whether the category counts as a success.
func (c Category) Succeeded() bool {
	return c == CategoryHugeSuccess || c == CategorySuccess
}

// Thresholds split the d20 range into outcome categories. A threshold of
// Sides+1 can never be reached.
type Thresholds struct {
	BigSuccess   int `json:"big_success_threshold"`
	Success      int `json:"success_threshold"`
	SmallFailure int `json:"small_failure_threshold"`
}

var ErrInvalidThresholds = errors.New("invalid dice thresholds")

// Validate enforces 1 <= SmallFailure <= Success <= BigSuccess <= Sides+1.
func (th Thresholds) Validate() error {
	if th.SmallFailure < 1 || th.SmallFailure > th.Success || th.Success > th.BigSuccess || th.BigSuccess > Sides+1 {
		return fmt.Errorf("%w: small_failure=%d success=%d big_success=%d",
			ErrInvalidThresholds, th.SmallFailure, th.Success, th.BigSuccess)
	}
	return nil
}

// ThresholdsFor maps a success probability onto d20 thresholds. The success
// threshold leaves round(20p) winning faces; a natural 20 is a huge success
// and a natural 1 a big failure whenever success and failure are both
// possible.
func ThresholdsFor(p float64) Thresholds {
	winning := int(math.Round(clamp01(p) * Sides))
	th := Thresholds{
		Success:      Sides + 1 - winning,
		BigSuccess:   Sides + 1,
		SmallFailure: 1,
	}
	if th.Success <= Sides {
		th.BigSuccess = Sides
	}
	if th.Success > 1 {
		th.SmallFailure = 2
	}
	return th
}

// Classify places a roll into its category. Checks run from the best outcome
// down, so overlapping thresholds favour success.
func Classify(roll int, th Thresholds) Category {
	switch {
	case roll >= th.BigSuccess:
		return CategoryHugeSuccess
	case roll >= th.Success:
		return CategorySuccess
	case roll < th.SmallFailure:
		return CategoryBigFailure
	default:
		return CategoryFailure
	}
}

// Roller rolls d20s from a seeded source. It is deterministic per seed and
// not safe for concurrent use.
type Roller struct {
	seed int64
	rng  *rand.Rand
}

func NewRoller(seed int64) *Roller {
	return &Roller{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

func (r *Roller) Seed() int64 { return r.seed }

// RollD20 returns a value in [1, 20].
func (r *Roller) RollD20() int {
	return r.rng.Intn(Sides) + 1
}

// NewSeed draws a seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Outcome is a settled choice.
type Outcome struct {
	Probability float64    `json:"probability"`
	Roll        int        `json:"roll"`
	Thresholds  Thresholds `json:"thresholds"`
	Category    Category   `json:"category"`
	Success     bool       `json:"success"`
}

// Resolve rolls once against the thresholds for p.
func Resolve(p float64, r *Roller) Outcome {
	th := ThresholdsFor(p)
	roll := r.RollD20()
	cat := Classify(roll, th)
	return Outcome{
		Probability: clamp01(p),
		Roll:        roll,
		Thresholds:  th,
		Category:    cat,
		Success:     cat.Succeeded(),
	}
}
