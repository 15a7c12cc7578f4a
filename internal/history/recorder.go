package history

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/mattjoyce/ghost/internal/events"
	"github.com/mattjoyce/ghost/internal/log"
	"github.com/mattjoyce/ghost/internal/supervisor"
)

const writeTimeout = 5 * time.Second

// Recorder persists every finished watchdog run published on a hub. Events
// the subscription dropped are recovered from the hub's backlog.
type Recorder struct {
	store   *Store
	hub     *events.Hub
	logger  *slog.Logger
	cancel  func()
	done    chan struct{}
	lastSeq int64
}

// StartRecorder subscribes to hub and records runs until Close.
func StartRecorder(store *Store, hub *events.Hub) *Recorder {
	ch, cancel := hub.Subscribe()
	r := newRecorder(store, hub, cancel)
	go r.loop(ch)
	return r
}

func newRecorder(store *Store, hub *events.Hub, cancel func()) *Recorder {
	return &Recorder{
		store:  store,
		hub:    hub,
		logger: log.WithComponent("history"),
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (r *Recorder) loop(ch <-chan events.Event) {
	defer close(r.done)
	for ev := range ch {
		if ev.Seq > r.lastSeq+1 {
			r.catchUp(ev.Seq)
		}
		r.handle(ev)
	}
	// Drops after the last delivered event.
	r.catchUp(math.MaxInt64)
}

// catchUp handles retained events newer than lastSeq and older than before.
func (r *Recorder) catchUp(before int64) {
	missed := r.hub.Recent(r.lastSeq)
	if len(missed) > 0 && missed[0].Seq > r.lastSeq+1 && missed[0].Seq < before {
		r.logger.Warn("run events lost beyond hub backlog", "from_seq", r.lastSeq+1, "to_seq", missed[0].Seq-1)
	}
	for _, ev := range missed {
		if ev.Seq >= before {
			break
		}
		r.handle(ev)
	}
}

func (r *Recorder) handle(ev events.Event) {
	if ev.Seq > r.lastSeq {
		r.lastSeq = ev.Seq
	}
	if ev.Type != events.TypeRunExited {
		return
	}
	var run supervisor.Run
	if err := ev.Decode(&run); err != nil {
		r.logger.Warn("undecodable run event", "seq", ev.Seq, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := r.store.RecordRun(ctx, run); err != nil {
		r.logger.Error("failed to record run", "run_id", run.ID, "error", err)
	}
}

// Close unsubscribes and waits until events already delivered are recorded.
func (r *Recorder) Close() {
	r.cancel()
	<-r.done
}
