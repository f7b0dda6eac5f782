package conflict

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/noteflow/syncserver/internal/domain"
)

// ErrUnknownStrategy is returned by Execute for a strategy value outside the
// closed set.
var ErrUnknownStrategy = errors.New("unknown resolution strategy")

// ErrManualRequired is returned (success=false) when the manual strategy is
// invoked; the conflict remains unresolved.
var ErrManualRequired = errors.New("manual-required")

// Resolution is the result of executing a strategy against a conflict.
type Resolution struct {
	ResolvedPayload domain.Payload
	NewVersion      int64
	Success         bool
}

// Execute runs strategy against conflict's server/client snapshots (spec
// §4.2 "Resolution execution"). now is injected for deterministic tests
// (append-suffix derives its disambiguator from it).
func Execute(c *domain.Conflict, strategy domain.Strategy, now time.Time) (Resolution, error) {
	switch strategy {
	case domain.StrategyServerWins:
		return Resolution{
			ResolvedPayload: clonePayload(c.Server.Payload),
			NewVersion:      c.Server.Version,
			Success:         true,
		}, nil

	case domain.StrategyClientWins:
		return Resolution{
			ResolvedPayload: clonePayload(c.Client.Payload),
			NewVersion:      c.Server.Version + 1,
			Success:         true,
		}, nil

	case domain.StrategyLatestWins:
		// Ties break to the client (spec §9 "Wall-clock ties").
		if c.Client.ModifiedAt.Before(c.Server.ModifiedAt) {
			return Resolution{
				ResolvedPayload: clonePayload(c.Server.Payload),
				NewVersion:      c.Server.Version,
				Success:         true,
			}, nil
		}
		return Resolution{
			ResolvedPayload: clonePayload(c.Client.Payload),
			NewVersion:      c.Server.Version + 1,
			Success:         true,
		}, nil

	case domain.StrategyMerge:
		return Resolution{
			ResolvedPayload: ResolveByMerge(c.Server.Payload, c.Client.Payload),
			NewVersion:      c.Server.Version + 1,
			Success:         true,
		}, nil

	case domain.StrategyAppendSuffix:
		payload := clonePayload(c.Client.Payload)
		title, _ := payload[domain.FieldTitle].(string)
		payload[domain.FieldTitle] = title + " (" + strconv.FormatInt(now.UnixMilli(), 10) + ")"
		return Resolution{
			ResolvedPayload: payload,
			NewVersion:      c.Server.Version + 1,
			Success:         true,
		}, nil

	case domain.StrategyManual:
		return Resolution{Success: false}, ErrManualRequired

	default:
		return Resolution{Success: false}, fmt.Errorf("%q: %w", strategy, ErrUnknownStrategy)
	}
}

// ResolveByMerge starts from the server payload and overwrites with every
// client key whose value differs (spec §4.2 "merge"). Nested objects and
// arrays are replaced wholesale, never recursively merged (spec §9).
func ResolveByMerge(server, client domain.Payload) domain.Payload {
	merged := clonePayload(server)
	if merged == nil {
		merged = domain.Payload{}
	}
	for k, cv := range client {
		if sv, ok := server[k]; !ok || !canonicalEqual(sv, cv) {
			merged[k] = cv
		}
	}
	return merged
}

func clonePayload(p domain.Payload) domain.Payload {
	if p == nil {
		return nil
	}
	out := make(domain.Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
