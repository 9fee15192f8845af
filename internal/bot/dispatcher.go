package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Handler processes one inbound text
type Handler func(ctx context.Context, text string) string

// ErrStopped is returned for work offered after the dispatcher stopped
var ErrStopped = errors.New("dispatcher stopped")

type job struct {
	ctx   context.Context
	id    string
	text  string
	reply func(string)
}

// Dispatcher runs every message to completion on a single goroutine so
// configuration changes and order submissions never interleave.
type Dispatcher struct {
	jobs    chan job
	done    chan struct{}
	handler Handler
	logger  zerolog.Logger
}

func NewDispatcher(handler Handler, queueSize int, logger zerolog.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Dispatcher{
		jobs:    make(chan job, queueSize),
		done:    make(chan struct{}),
		handler: handler,
		logger:  logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Run processes queued messages until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			d.process(j)
		}
	}
}

// Enqueue queues text; reply is called from the dispatcher goroutine
func (d *Dispatcher) Enqueue(ctx context.Context, text string, reply func(string)) error {
	j := job{ctx: ctx, id: uuid.NewString(), text: text, reply: reply}
	select {
	case d.jobs <- j:
		return nil
	case <-d.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues text and waits for the reply
func (d *Dispatcher) Submit(ctx context.Context, text string) (string, error) {
	replies := make(chan string, 1)
	if err := d.Enqueue(ctx, text, func(s string) { replies <- s }); err != nil {
		return "", err
	}
	select {
	case r := <-replies:
		return r, nil
	case <-d.done:
		return "", ErrStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (d *Dispatcher) process(j job) {
	if j.ctx.Err() != nil {
		d.logger.Warn().Str("correlation_id", j.id).Msg("Dropping message, sender gave up")
		return
	}

	log := d.logger.With().Str("correlation_id", j.id).Logger()
	reply := func() (reply string) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic while handling message")
				reply = fmt.Sprintf("Unexpected error: %v", r)
			}
		}()
		return d.handler(log.WithContext(j.ctx), j.text)
	}()

	if reply != "" && j.reply != nil {
		j.reply(reply)
	}
}
