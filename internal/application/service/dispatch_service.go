package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sangkips/billdesk/internal/domain/enum"
	"github.com/sangkips/billdesk/pkg/apperror"
	"github.com/sangkips/billdesk/pkg/logger"
	"github.com/sangkips/billdesk/pkg/printer"
	"github.com/skratchdot/open-golang/open"
)

// DefaultDispatchTimeout bounds a single dispatch attempt.
const DefaultDispatchTimeout = 15 * time.Second

// Opener hands a file to the desktop's default viewer.
type Opener interface {
	Open(path string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) error

func (f OpenerFunc) Open(path string) error { return f(path) }

// SystemOpener opens files with the OS default application.
var SystemOpener Opener = OpenerFunc(open.Start)

// Attempt records one tier that was tried and failed.
type Attempt struct {
	Tier    enum.DispatchTier `json:"tier"`
	Channel string            `json:"channel"`
	Error   string            `json:"error"`
}

// Outcome reports where a document ended up.
type Outcome struct {
	Tier      enum.DispatchTier `json:"tier"`
	Channel   string            `json:"channel"`
	Delivered bool              `json:"delivered"`
	Path      string            `json:"path"`
	Attempts  []Attempt         `json:"attempts,omitempty"`
}

type dispatchTier struct {
	tier    enum.DispatchTier
	channel string
	attempt func(ctx context.Context, job printer.Job) error
}

// DispatchService delivers rendered bills through a fixed fallback order:
// the requested printer, the default printer, the desktop viewer, and
// finally leaving the file where it was saved.
type DispatchService struct {
	registry *printer.Registry
	opener   Opener
	timeout  time.Duration
	log      *logger.Logger
}

// NewDispatchService creates a dispatcher. A zero timeout uses
// DefaultDispatchTimeout; a nil opener uses SystemOpener.
func NewDispatchService(registry *printer.Registry, opener Opener, timeout time.Duration, log *logger.Logger) *DispatchService {
	if opener == nil {
		opener = SystemOpener
	}
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	return &DispatchService{
		registry: registry,
		opener:   opener,
		timeout:  timeout,
		log:      log.WithComponent("dispatch"),
	}
}

func (s *DispatchService) printerTier(tier enum.DispatchTier, name string) dispatchTier {
	return dispatchTier{
		tier:    tier,
		channel: name,
		attempt: func(ctx context.Context, job printer.Job) error {
			p, ok := s.registry.Get(name)
			if !ok {
				return fmt.Errorf("printer %q is not configured", name)
			}
			return p.Print(ctx, job)
		},
	}
}

func (s *DispatchService) tiers(requested string) []dispatchTier {
	var tiers []dispatchTier
	named := requested != "" && requested != printer.NoPrintersFound
	if named {
		tiers = append(tiers, s.printerTier(enum.DispatchTierNamed, requested))
	}
	if def, ok := s.registry.DefaultPrinter(); ok && !(named && def == requested) {
		tiers = append(tiers, s.printerTier(enum.DispatchTierDefault, def))
	}
	tiers = append(tiers, dispatchTier{
		tier:    enum.DispatchTierManualOpen,
		channel: "viewer",
		attempt: func(ctx context.Context, job printer.Job) error {
			if job.Path == "" {
				return errors.New("no file to open")
			}
			return s.opener.Open(job.Path)
		},
	})
	return tiers
}

// Dispatch tries each tier in order until one succeeds. When all fail the
// outcome is the saved tier and the error is an output error wrapping
// ErrNotDispatched; the file at job.Path is left in place either way.
func (s *DispatchService) Dispatch(ctx context.Context, job printer.Job, requested string) (*Outcome, error) {
	outcome := &Outcome{Path: job.Path}
	log := s.log.WithContext(ctx)

	for _, t := range s.tiers(requested) {
		err := s.try(ctx, t, job)
		if err == nil {
			outcome.Tier = t.tier
			outcome.Channel = t.channel
			outcome.Delivered = true
			DispatchOutcomes.WithLabelValues(t.tier.String()).Inc()
			log.Infow("document dispatched", "tier", t.tier.String(), "channel", t.channel, "path", job.Path)
			return outcome, nil
		}
		DispatchFailures.WithLabelValues(t.tier.String()).Inc()
		log.Warnw("dispatch attempt failed", "tier", t.tier.String(), "channel", t.channel, "error", err)
		outcome.Attempts = append(outcome.Attempts, Attempt{Tier: t.tier, Channel: t.channel, Error: err.Error()})
		if ctx.Err() != nil {
			break
		}
	}

	outcome.Tier = enum.DispatchTierSaved
	outcome.Channel = "file"
	DispatchOutcomes.WithLabelValues(enum.DispatchTierSaved.String()).Inc()
	log.Warnw("document saved but not dispatched", "path", job.Path, "attempts", len(outcome.Attempts))

	var cause error = apperror.ErrNotDispatched
	if last := lastAttemptError(outcome.Attempts); last != nil {
		cause = fmt.Errorf("%w: %v", apperror.ErrNotDispatched, last)
	}
	return outcome, apperror.NewOutputError(enum.DispatchTierSaved.String(), cause)
}

// try runs one attempt under the dispatch timeout. An attempt that ignores
// its context is abandoned when the timeout fires.
func (s *DispatchService) try(ctx context.Context, t dispatchTier, job printer.Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- t.attempt(ctx, job) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s timed out: %w", t.tier, ctx.Err())
	}
}

func lastAttemptError(attempts []Attempt) error {
	if len(attempts) == 0 {
		return nil
	}
	last := attempts[len(attempts)-1]
	return fmt.Errorf("%s (%s): %s", last.Tier, last.Channel, last.Error)
}
