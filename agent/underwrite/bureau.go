package underwrite

import (
	"context"
	"math/rand"
	"sync"
	"time"

	contractx "github.com/arpitverma/loanflow/agent/contract"
	statex "github.com/arpitverma/loanflow/agent/state"
)

const (
	ScoreMin = 650
	ScoreMax = 850

	// DefaultScoreKey caches a score when no PAN has been captured yet.
	DefaultScoreKey = "default"
)

// ScoreKey returns the session score-cache key for a record: the PAN when
// present, the shared fallback otherwise.
func ScoreKey(rec *statex.ApplicantRecord) string {
	if rec != nil && rec.PANNumber != nil {
		return *rec.PANNumber
	}
	return DefaultScoreKey
}

// RandomBureau is the stand-in for an external credit bureau: it draws a
// uniform score in [ScoreMin, ScoreMax]. Determinism per applicant comes
// from the session's score cache, not from the provider.
type RandomBureau struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ contractx.ScoreProvider = (*RandomBureau)(nil)

// NewRandomBureau seeds the bureau; a non-positive seed uses the clock.
func NewRandomBureau(seed int64) *RandomBureau {
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomBureau{rng: rand.New(rand.NewSource(seed))}
}

func (b *RandomBureau) Lookup(_ context.Context, _ string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ScoreMin + b.rng.Intn(ScoreMax-ScoreMin+1), nil
}
