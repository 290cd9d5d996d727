package query

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"aihub/internal/binder"
	"aihub/internal/domain"
	"aihub/internal/format"
	"aihub/internal/tabular"
	"aihub/internal/workspace"
)

const (
	timeoutMessage  = "query exceeded the execution time limit"
	canceledMessage = "query canceled"
)

// run executes one submitted query in its own workspace and records the
// outcome. It owns the full lifecycle past pending: terminal marks use a
// background context so a canceled execution can still be recorded.
func (s *Service) run(ctx context.Context, cancel context.CancelFunc, recordID string, req domain.QueryRequest, datasets []domain.Dataset) {
	defer cancel()
	defer s.cancels.Delete(recordID)

	start := time.Now()
	log := s.logger.With(slog.String("query_id", recordID))

	fail := func(err error) {
		msg := failureMessage(ctx, err)
		log.Warn("query failed", slog.String("error", msg), slog.Duration("duration", time.Since(start)))
		if markErr := s.records.MarkFailed(context.Background(), recordID, msg, time.Since(start)); markErr != nil {
			// A lost race with Cancel leaves the record already failed.
			var conflict *domain.ConflictError
			if !errors.As(markErr, &conflict) {
				log.Error("failed to record query failure", slog.String("error", markErr.Error()))
			}
		}
	}

	if err := s.records.MarkExecuting(context.Background(), recordID); err != nil {
		// Canceled before execution started; nothing to do.
		log.Debug("query not transitioned to executing", slog.String("error", err.Error()))
		return
	}

	// The wall-clock cap covers the whole execution, loading included.
	if s.timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, s.timeout)
		defer timeoutCancel()
	}

	ws, err := workspace.Open(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer ws.Close()

	bindings := binder.Bind(req.DatasetIDs)
	if err := s.load(ctx, ws, bindings, datasets); err != nil {
		fail(err)
		return
	}

	sqlText := binder.Rewrite(req.SQLText, bindings)
	rowCap := req.Limit
	if rowCap == 0 {
		rowCap = s.defaultMaxRows
	}
	if rowCap > 0 {
		sqlText = binder.EnsureLimit(sqlText, rowCap)
	}

	res, err := ws.Execute(ctx, sqlText)
	if err != nil {
		fail(err)
		return
	}

	payload, err := format.Encode(res, req.OutputFormat)
	if err != nil {
		fail(err)
		return
	}

	if err := s.records.MarkCompleted(context.Background(), recordID, payload, res.Columns, res.RowCount, time.Since(start)); err != nil {
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			log.Error("failed to record query completion", slog.String("error", err.Error()))
		}
		return
	}
	log.Info("query completed",
		slog.Int("rows", res.RowCount),
		slog.Duration("duration", time.Since(start)))
}

// load fetches every dataset concurrently and materializes each one as a
// relation in the workspace. Any single failure aborts the whole load.
func (s *Service) load(ctx context.Context, ws *workspace.Workspace, bindings []binder.Binding, datasets []domain.Dataset) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range datasets {
		ds := datasets[i]
		relation := bindings[i].Relation
		g.Go(func() error {
			body, err := s.fetcher.Fetch(gctx, ds.StorageKey)
			if err != nil {
				return domain.ErrLoad("dataset %s: %v", ds.ID, err)
			}
			defer body.Close()

			res, err := tabular.Load(gctx, ws, relation, body)
			if err != nil {
				return err
			}
			if res.SkippedRows > 0 {
				s.logger.Warn("skipped malformed rows",
					slog.String("dataset_id", ds.ID),
					slog.Int("skipped", res.SkippedRows))
			}
			return nil
		})
	}
	return g.Wait()
}

// failureMessage normalizes an execution error into the message stored on
// the record. Timeout and caller cancellation are reported distinctly.
func failureMessage(ctx context.Context, err error) string {
	var re *domain.ResourceExceededError
	if errors.As(err, &re) {
		return re.Error()
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return timeoutMessage
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		return canceledMessage
	}
	return err.Error()
}
