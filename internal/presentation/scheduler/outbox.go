package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Builder-Lawyers/site-moderation/internal/application"
	"github.com/Builder-Lawyers/site-moderation/internal/application/consts"
	"github.com/Builder-Lawyers/site-moderation/internal/application/errs"
	"github.com/Builder-Lawyers/site-moderation/internal/application/events"
	"github.com/Builder-Lawyers/site-moderation/internal/infra/db"
	dbs "github.com/Builder-Lawyers/site-moderation/pkg/db"
	"github.com/Builder-Lawyers/site-moderation/pkg/interfaces"
	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5"
)

type OutboxPoller struct {
	processors *application.Processors
	uowFactory *dbs.UOWFactory
	cfg        *OutboxConfig
	stop       chan struct{}
	done       chan struct{}
}

type OutboxConfig struct {
	Limit    uint8         `env:"SCHEDULER_LIMIT" envDefault:"5"`
	Interval time.Duration `env:"SCHEDULER_INTERVAL" envDefault:"5s"`
}

func NewOutboxConfig() *OutboxConfig {
	var cfg OutboxConfig
	if err := env.Parse(&cfg); err != nil {
		slog.Error("err parsing outbox config, using defaults", "err", err)
		cfg = OutboxConfig{Limit: 5, Interval: 5 * time.Second}
	}
	return &cfg
}

func NewOutboxPoller(processors *application.Processors, uowFactory *dbs.UOWFactory, cfg *OutboxConfig) *OutboxPoller {
	return &OutboxPoller{
		processors: processors,
		uowFactory: uowFactory,
		cfg:        cfg,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start polls until Stop is called. A poll in progress is cancelled.
func (o *OutboxPoller) Start() {
	slog.Info("Starting outbox poller...")
	ctx, cancel := context.WithCancel(context.Background())
	defer close(o.done)
	go func() {
		<-o.stop
		slog.Info("Cancelling current execution")
		cancel()
	}()

	t := time.NewTimer(o.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			o.PollOnce(ctx)
			// wait after poll finishes
			t.Reset(o.cfg.Interval)
		case <-ctx.Done():
			return
		}
	}
}

// PollOnce claims a batch of unprocessed events and handles them in parallel.
func (o *OutboxPoller) PollOnce(ctx context.Context) {
	uow := o.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		slog.Error("error in poller", "err", err)
		return
	}

	query := "SELECT id, event, status, payload, created_at FROM platform.outbox WHERE status = $1 ORDER BY created_at, id LIMIT $2 FOR NO KEY UPDATE SKIP LOCKED"
	rows, err := tx.Query(ctx, query, consts.NotProcessed, int(o.cfg.Limit))
	if err != nil {
		_ = uow.Rollback()
		slog.Error("error in poller", "err", err)
		return
	}

	var eventsToProcess []db.Outbox
	var eventIDs []int64
	for rows.Next() {
		var event db.Outbox
		if err = rows.Scan(&event.ID, &event.Event, &event.Status, &event.Payload, &event.CreatedAt); err != nil {
			slog.Error("error in poller", "err", err)
			continue
		}
		eventIDs = append(eventIDs, int64(event.ID))
		eventsToProcess = append(eventsToProcess, event)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		slog.Error("error reading result sets", "err", err)
	}

	if len(eventsToProcess) == 0 {
		_ = uow.Rollback()
		slog.Debug("no events to process")
		return
	}

	_, err = tx.Exec(ctx, "UPDATE platform.outbox SET status = $1 WHERE id = ANY($2)", consts.Processing, eventIDs)
	if err != nil {
		_ = uow.Rollback()
		slog.Error("error setting events status to processing", "err", err)
		return
	}

	if err := uow.Commit(); err != nil {
		slog.Error("err committing", "err", err)
		return
	}

	var wg sync.WaitGroup
	for _, event := range eventsToProcess {
		wg.Add(1)
		go func(ev db.Outbox) {
			defer wg.Done()
			if err := o.handleEvent(ctx, ev); err != nil {
				slog.Error("handler error", "event", ev.ID, "err", err)
			}
		}(event)
	}

	wg.Wait()
	slog.Debug("Finished poller thread processing")
}

func (o *OutboxPoller) dispatch(ctx context.Context, outbox db.Outbox) (interfaces.UoW, error) {
	switch outbox.Event {
	case events.SendMail{}.GetType():
		event, err := db.MapOutboxModelToSendMail(outbox)
		if err != nil {
			return nil, err
		}
		return o.processors.SendMail.Handle(ctx, event)
	case events.PurgeSiteFiles{}.GetType():
		event, err := db.MapOutboxModelToPurgeSiteFiles(outbox)
		if err != nil {
			return nil, err
		}
		return o.processors.PurgeSiteFiles.Handle(ctx, event)
	}
	return nil, fmt.Errorf("no processor for event %s", outbox.Event)
}

func (o *OutboxPoller) handleEvent(ctx context.Context, outbox db.Outbox) error {
	var (
		tx     pgx.Tx
		status = consts.Processed
	)

	slog.Info("Handling event", "event", outbox.Event, "id", outbox.ID)

	uow, err := o.dispatch(ctx, outbox)
	if err != nil {
		var r errs.RetryableError
		if errors.As(err, &r) {
			slog.Warn("event will be retried", "event", outbox.Event, "id", outbox.ID, "err", err)
			status = consts.NotProcessed
		} else {
			slog.Error("error in handler", "event", outbox.Event, "id", outbox.ID, "err", err)
			status = consts.InError
		}
		// nothing the handler wrote is kept
		if uow != nil {
			_ = uow.Rollback()
			uow = nil
		}
	}

	if uow == nil {
		var errTx error
		// open new transaction if there was none in event handler
		uow = o.uowFactory.GetUoW()
		tx, errTx = uow.Begin()
		if errTx != nil {
			return errors.Join(err, errTx)
		}
	} else {
		tx = uow.GetTx()
	}

	_, errStatus := tx.Exec(context.WithoutCancel(ctx), "UPDATE platform.outbox SET status = $1 WHERE id = $2", status, outbox.ID)
	if errStatus != nil {
		errRollback := uow.Rollback()
		slog.Error("error in poller", "err", errStatus)
		return errors.Join(errStatus, errRollback)
	}

	if errCommit := uow.Commit(); errCommit != nil {
		slog.Error("error in poller", "err", errCommit)
		return errCommit
	}

	slog.Info("processed event", "id", outbox.ID, "status", status)
	return nil
}

// Stop cancels the poller and waits for it to return.
func (o *OutboxPoller) Stop() {
	slog.Info("Stopping poller")
	close(o.stop)
	<-o.done
}
