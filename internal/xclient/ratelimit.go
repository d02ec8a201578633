package xclient

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/time/rate"
)

// Tuning holds client pacing knobs resolved from the environment.
// The limiter is shared by every outbound call, so a concurrent pipeline
// cannot exceed the configured request rate.
type Tuning struct {
	RPS         float64       `envconfig:"X_API_RPS" default:"2"`
	Burst       int           `envconfig:"X_API_BURST" default:"10"`
	MaxAttempts int           `envconfig:"X_API_MAX_ATTEMPTS" default:"5"`
	BaseBackoff time.Duration `envconfig:"X_API_BASE_BACKOFF" default:"500ms"`
	Timeout     time.Duration `envconfig:"X_API_TIMEOUT" default:"15s"`
}

func tuningFromEnv() Tuning {
	var t Tuning
	if err := envconfig.Process("", &t); err != nil {
		return Tuning{RPS: 2, Burst: 10, MaxAttempts: 5, BaseBackoff: 500 * time.Millisecond, Timeout: 15 * time.Second}
	}
	return t
}

func newLimiter(t Tuning) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(t.RPS), t.Burst)
}
