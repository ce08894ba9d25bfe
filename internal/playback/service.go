package playback

import (
	"context"
	"time"
)

// Service coordinates a single audio output between ad-hoc requests,
// a FIFO queue and an announcement-suspended track.
//
// Decision table for Dispatch:
//
//	current  announcement  enqueue  action
//	idle     any           any      start the target
//	playing  false         false    stop current, start the target
//	playing  false         true     append to the queue tail
//	playing  true          any      suspend current, start the target
//
// When the current track completes, the queue head plays if there is
// one; otherwise the suspended track resumes at its saved position;
// otherwise the coordinator goes idle.
type Service interface {
	Dispatch(req Request) (Outcome, error)
	HandleFinished()

	Pause() error
	Resume() error
	Stop() error

	State() State
	Position() time.Duration
	Snapshot() Snapshot

	Subscribe() *Subscription

	// Run forwards driver completion signals to HandleFinished until ctx
	// ends or the service is closed.
	Run(ctx context.Context) error
	Close() error
}
