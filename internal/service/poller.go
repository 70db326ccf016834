// internal/service/poller.go
package service

import (
	"time"

	"github.com/adsofthq/adtrack-backend/internal/model"
	"github.com/adsofthq/adtrack-backend/internal/repository"
)

// DefaultPollInterval is the re-sample cadence of the long-poll wait loop.
const DefaultPollInterval = time.Second

// Poller backs the dashboard long-poll endpoints: it samples an aggregate
// signature over a record subset and blocks a caller until the signature
// moves or the wait budget runs out. One call occupies one serving slot for
// up to the full wait — acceptable at the client counts this runs at.
type Poller struct {
	AdRecordRepo repository.AdRecordRepositoryInterface
	Interval     time.Duration // 0 means DefaultPollInterval
}

type PollResult struct {
	Changed bool                 `json:"changed"`
	Token   string               `json:"token"`
	Total   int                  `json:"total"`
	Counts  map[model.Status]int `json:"counts"`
}

// SignatureOf samples the current aggregate signature for all records
// (userID nil) or for one user's records.
func (p *Poller) SignatureOf(userID *int) (*model.Signature, error) {
	return p.AdRecordRepo.AggregateSignature(userID)
}

// AwaitChange blocks until the subset's signature differs from knownToken or
// maxWait elapses. An empty or stale knownToken returns immediately with
// Changed=true. Two concurrent mutations that cancel out in every aggregate
// field are invisible here; that approximation is intentional. A read error
// aborts the call — the caller re-invokes.
func (p *Poller) AwaitChange(userID *int, knownToken string, maxWait time.Duration) (*PollResult, error) {
	sig, err := p.SignatureOf(userID)
	if err != nil {
		return nil, err
	}
	if knownToken == "" || knownToken != sig.Token() {
		return resultFrom(sig, true), nil
	}

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		time.Sleep(interval)

		sig, err = p.SignatureOf(userID)
		if err != nil {
			return nil, err
		}
		if knownToken != sig.Token() {
			return resultFrom(sig, true), nil
		}
	}
	return resultFrom(sig, false), nil
}

func resultFrom(sig *model.Signature, changed bool) *PollResult {
	return &PollResult{
		Changed: changed,
		Token:   sig.Token(),
		Total:   sig.Total,
		Counts:  sig.Counts,
	}
}
