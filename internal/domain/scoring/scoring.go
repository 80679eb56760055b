// Package scoring keeps score and combo for a round.
package scoring

// Default scoring configuration constants.
const (
	DefaultGoal           = 6
	DefaultComboThreshold = 3
	DefaultBasePoints     = 1
	DefaultComboPoints    = 2
)

// ComboRule maps the current combo count to the points a collect is worth.
type ComboRule func(combo int) int

// ThresholdRule awards base points until combo reaches threshold, then bonus.
func ThresholdRule(threshold, base, bonus int) ComboRule {
	return func(combo int) int {
		if combo >= threshold {
			return bonus
		}
		return base
	}
}

// DefaultRule is 1 point per heart, 2 once the combo reaches 3.
func DefaultRule() ComboRule {
	return ThresholdRule(DefaultComboThreshold, DefaultBasePoints, DefaultComboPoints)
}

// Option applies a configuration option to the Keeper.
type Option func(*Keeper)

// WithGoal sets the score that wins the round.
func WithGoal(goal int) Option {
	return func(k *Keeper) {
		if goal > 0 {
			k.goal = goal
		}
	}
}

// WithRule sets the combo rule.
func WithRule(rule ComboRule) Option {
	return func(k *Keeper) {
		if rule != nil {
			k.rule = rule
		}
	}
}

// Keeper owns score and combo. Score stays in [0, goal]; combo never goes
// negative. It is not safe for concurrent use; the owning session serializes
// access.
type Keeper struct {
	goal  int
	rule  ComboRule
	score int
	combo int
	won   bool
}

// NewKeeper creates a Keeper with the default goal and rule.
func NewKeeper(opts ...Option) *Keeper {
	k := &Keeper{
		goal: DefaultGoal,
		rule: DefaultRule(),
	}

	for _, opt := range opts {
		opt(k)
	}

	return k
}

// OnCollect extends the combo and awards points. It returns the points
// actually added after clamping and whether this call reached the goal for
// the first time since the last Reset.
func (k *Keeper) OnCollect() (points int, reached bool) {
	k.combo++
	award := k.rule(k.combo)
	if award < 0 {
		award = 0
	}

	next := clamp(k.score+award, 0, k.goal)
	points = next - k.score
	k.score = next

	if k.score >= k.goal && !k.won {
		k.won = true
		reached = true
	}
	return points, reached
}

// OnMiss breaks the combo.
func (k *Keeper) OnMiss() {
	k.combo = 0
}

// ResetCombo zeroes the combo only.
func (k *Keeper) ResetCombo() {
	k.combo = 0
}

// Reset zeroes score and combo and re-arms the goal signal.
func (k *Keeper) Reset() {
	k.score = 0
	k.combo = 0
	k.won = false
}

// Score returns the current score.
func (k *Keeper) Score() int { return k.score }

// Combo returns the current combo.
func (k *Keeper) Combo() int { return k.combo }

// Goal returns the winning score.
func (k *Keeper) Goal() int { return k.goal }

// Won reports whether the goal has been reached since the last Reset.
func (k *Keeper) Won() bool { return k.won }

// Progress returns score/goal in [0, 1].
func (k *Keeper) Progress() float64 {
	return float64(k.score) / float64(k.goal)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
