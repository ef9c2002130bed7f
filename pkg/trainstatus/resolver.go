package trainstatus

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"railctl/pkg/logging"
)

// Fetcher supplies the two upstream feeds.
type Fetcher interface {
	FetchTimetable(ctx context.Context, originCode, destCode string, date time.Time) ([]ScheduledTrain, error)
	FetchLiveDelays(ctx context.Context) (DelayMap, error)
}

// Options configure a Resolver.
type Options struct {
	Commute  Commute
	Location *time.Location
	Logger   *slog.Logger
}

// Resolver turns a Request into a train status report.
type Resolver struct {
	fetcher   Fetcher
	directory *Directory
	commute   Commute
	loc       *time.Location
	logger    *slog.Logger
}

func NewResolver(fetcher Fetcher, directory *Directory, opts Options) *Resolver {
	r := &Resolver{
		fetcher:   fetcher,
		directory: directory,
		commute:   opts.Commute,
		loc:       opts.Location,
		logger:    logging.OrNop(opts.Logger),
	}
	if r.commute == (Commute{}) {
		r.commute = DefaultCommute()
	}
	if r.loc == nil {
		r.loc = time.Local
	}
	return r
}

// Directory returns the station directory the resolver validates against.
func (r *Resolver) Directory() *Directory {
	return r.directory
}

// Report compiles and renders. It always returns user-facing text.
func (r *Resolver) Report(ctx context.Context, req Request, now time.Time) string {
	rep, _ := r.Compile(ctx, req, now)
	return rep.Render()
}

// Compile resolves the query, fetches both feeds and reconciles them. The returned
// Report is never nil. The error is non-nil only for an unknown station, in which
// case no fetch is attempted; upstream failures are reported through the Outcome.
func (r *Resolver) Compile(ctx context.Context, req Request, now time.Time) (*Report, error) {
	now = now.In(r.loc)
	if (req.Origin == "") != (req.Destination == "") {
		r.logger.Warn("ignoring partial station override", "origin", req.Origin, "destination", req.Destination)
	}

	q := ResolveQuery(req, r.commute, now)
	rep := &Report{Query: q}

	origin, err := r.directory.Lookup(q.Origin)
	if err != nil {
		rep.Outcome, rep.Err = OutcomeUnknownStation, err
		return rep, err
	}
	dest, err := r.directory.Lookup(q.Destination)
	if err != nil {
		rep.Outcome, rep.Err = OutcomeUnknownStation, err
		return rep, err
	}
	rep.Origin, rep.Destination = origin, dest

	var (
		trains []ScheduledTrain
		delays DelayMap
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trains, err = r.fetcher.FetchTimetable(gctx, origin.Code, dest.Code, q.Start)
		return err
	})
	g.Go(func() error {
		d, err := r.fetcher.FetchLiveDelays(gctx)
		if err != nil {
			// Delays are optional; every train is then reported on time.
			if !errors.Is(err, context.Canceled) {
				r.logger.Warn("live delay feed unavailable", "error", err)
			}
			return nil
		}
		delays = d
		return nil
	})

	if err := g.Wait(); err != nil {
		r.logger.Warn("timetable unavailable", "origin", origin.Code, "destination", dest.Code, "error", err)
		rep.Outcome, rep.Err = OutcomeTimetableUnavailable, err
		return rep, nil
	}

	rep.DelaysAvailable = delays != nil
	rep.Trains = Reconcile(trains, delays, q.Start, q.End)
	rep.Outcome = decide(q.Mode, rep.Trains)

	r.logger.Debug("compiled train status",
		"mode", q.Mode.String(),
		"origin", origin.Code,
		"destination", dest.Code,
		"scheduled", len(trains),
		"in_window", len(rep.Trains),
	)

	return rep, nil
}
