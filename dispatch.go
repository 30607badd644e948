package blewatch

import (
	"sync"
	"sync/atomic"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
	"github.com/sirupsen/logrus"
)

// Stats counts what happened to received advertisements over the lifetime of
// a watcher.
type Stats struct {
	// Received counts events handed over by the native session.
	Received int64
	// Delivered counts callback invocations (or channel sends).
	Delivered int64
	// Dropped counts events overwritten because the queue was full.
	Dropped int64
	// Discarded counts events that arrived after the watcher was stopped.
	Discarded int64
}

type stats struct {
	received  atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	discarded atomic.Int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Received:  s.received.Load(),
		Delivered: s.delivered.Load(),
		Dropped:   s.dropped.Load(),
		Discarded: s.discarded.Load(),
	}
}

// dispatcher moves events from the native handler to the caller. The native
// side only enqueues; the callback runs on the dispatcher's own goroutine.
// One dispatcher serves exactly one armed period of a watcher.
type dispatcher struct {
	generation uint64
	queue      mpmc.RichOverlappedRingBuffer[AdvertisementEvent]
	wake       chan struct{}
	stop       chan struct{}
	done       chan struct{}
	halted     atomic.Bool
	haltOnce   sync.Once

	callback EventCallback
	out      chan AdvertisementEvent // set for the channel form, callback is nil then

	stats  *stats
	logger logrus.FieldLogger
}

func newDispatcher(generation uint64, size uint32, callback EventCallback, out chan AdvertisementEvent, st *stats, logger logrus.FieldLogger) *dispatcher {
	return &dispatcher{
		generation: generation,
		queue:      mpmc.NewOverlappedRingBuffer[AdvertisementEvent](size),
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		callback:   callback,
		out:        out,
		stats:      st,
		logger:     logger.WithField("generation", generation),
	}
}

// post is the native received handler. It must never block.
func (d *dispatcher) post(ev *AdvertisementEvent) {
	if ev == nil {
		return
	}
	d.stats.received.Add(1)
	if d.halted.Load() {
		d.stats.discarded.Add(1)
		return
	}
	overwrites, err := d.queue.EnqueueM(ev.Clone())
	if err != nil {
		d.stats.dropped.Add(1)
		d.logger.WithError(err).Warn("Advertisement queue rejected event")
		return
	}
	if overwrites > 0 {
		d.stats.dropped.Add(int64(overwrites))
		d.logger.WithField("dropped", overwrites).Debug("Advertisement queue full, oldest events dropped")
	}
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// run delivers queued events until the dispatcher is halted.
func (d *dispatcher) run() {
	defer func() {
		if d.out != nil {
			close(d.out)
		}
		close(d.done)
	}()
	for {
		select {
		case <-d.stop:
			return
		case <-d.wake:
		}
		for !d.queue.IsEmpty() {
			if d.halted.Load() {
				return
			}
			ev, err := d.queue.Dequeue()
			if err != nil {
				break
			}
			if !d.deliver(&ev) {
				return
			}
		}
	}
}

func (d *dispatcher) deliver(ev *AdvertisementEvent) bool {
	d.logger.WithFields(logrus.Fields{
		"address": ev.Address.String(),
		"rssi":    ev.RSSI,
	}).Debug("Advertisement received")
	if d.out == nil {
		d.callback(ev)
		d.stats.delivered.Add(1)
		return true
	}
	select {
	case d.out <- *ev:
		d.stats.delivered.Add(1)
		return true
	case <-d.stop:
		return false
	}
}

// halt stops delivery. It does not wait for a callback that is already
// running, so it is safe to call from within the callback.
func (d *dispatcher) halt() {
	d.haltOnce.Do(func() {
		d.halted.Store(true)
		close(d.stop)
	})
}
