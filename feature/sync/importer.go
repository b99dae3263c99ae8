package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrorKind classifies why an entity could not be imported.
type ErrorKind string

const (
	// ErrKindNotFound means an entity or payload the record depends on is
	// missing (an owning game, an archive entry absent from the package).
	ErrKindNotFound ErrorKind = "not_found"

	// ErrKindInvalid means the record itself is unusable (empty name,
	// nil id).
	ErrKindInvalid ErrorKind = "invalid"

	// ErrKindStorage means a database or object-storage operation failed.
	ErrKindStorage ErrorKind = "storage"
)

// ImportError is the failure value attached to an EntityResult. Failures are
// data, not control flow: one bad record never aborts the batch.
type ImportError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func notFoundError(reason string) *ImportError {
	return &ImportError{Kind: ErrKindNotFound, Reason: reason}
}

func invalidError(reason string) *ImportError {
	return &ImportError{Kind: ErrKindInvalid, Reason: reason}
}

func storageError(reason string, err error) *ImportError {
	return &ImportError{Kind: ErrKindStorage, Reason: reason, Err: err}
}

// asImportError coerces any error into an *ImportError, defaulting to the
// storage kind for errors importers did not classify themselves.
func asImportError(err error) *ImportError {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie
	}
	return storageError("import failed", err)
}

// Action records what the batch did with one entity.
type Action string

const (
	ActionAdded   Action = "added"
	ActionUpdated Action = "updated"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
)

// EntityResult is the per-entity outcome of an import batch.
type EntityResult struct {
	Key    string       `json:"key"`
	Name   string       `json:"name"`
	Type   string       `json:"type"`
	Action Action       `json:"action"`
	Error  *ImportError `json:"error,omitempty"`
}

// Report aggregates the results of one batch.
type Report struct {
	Results []EntityResult `json:"results"`
	Added   int            `json:"added"`
	Updated int            `json:"updated"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed"`
}

func (r *Report) record(res EntityResult) {
	r.Results = append(r.Results, res)
	switch res.Action {
	case ActionAdded:
		r.Added++
	case ActionUpdated:
		r.Updated++
	case ActionSkipped:
		r.Skipped++
	case ActionFailed:
		r.Failed++
	}
}

// Ok reports whether the batch completed without entity failures.
func (r *Report) Ok() bool {
	return r.Failed == 0
}

// Importer is the per-entity-type import contract. Record arguments are the
// importer's own manifest record type; implementations assert.
type Importer interface {
	// Name returns the importer's type tag, e.g. "Game" or "Tag". It
	// doubles as the queue type in ImportContext.
	Name() string

	// Key builds the stable identity string for a record.
	Key(record any) string

	// Display returns the record's human-readable name.
	Display(record any) string

	// CanImport decides eligibility: the watermark rule, record validity,
	// and batch suppression for owned entities. Returning (false, nil)
	// skips the record without error.
	CanImport(ctx context.Context, batch *ImportContext, record any) (bool, error)

	// Exists reports whether a local entity already matches the record.
	Exists(ctx context.Context, record any) (bool, error)

	// Add creates the local entity from the record.
	Add(ctx context.Context, batch *ImportContext, record any) error

	// Update applies the record to the existing local entity.
	Update(ctx context.Context, batch *ImportContext, record any) error
}

// runImporter drives one record through one importer and returns its result.
// The sequence is fixed: eligibility, enqueue, existence, then add or
// update. Errors become failed results; they never propagate.
func runImporter(ctx context.Context, batch *ImportContext, imp Importer, record any, logger *zap.Logger) EntityResult {
	res := EntityResult{
		Key:  imp.Key(record),
		Name: imp.Display(record),
		Type: imp.Name(),
	}

	ok, err := imp.CanImport(ctx, batch, record)
	if err != nil {
		res.Action = ActionFailed
		res.Error = asImportError(err)
		logger.Warn("entity import failed", zap.String("key", res.Key), zap.Error(res.Error))
		return res
	}
	if !ok {
		res.Action = ActionSkipped
		return res
	}

	item := &ImportItem{Key: res.Key, Name: res.Name, Type: imp.Name(), Record: record}
	batch.Enqueue(item)

	exists, err := imp.Exists(ctx, record)
	if err == nil {
		if exists {
			res.Action = ActionUpdated
			err = imp.Update(ctx, batch, record)
		} else {
			res.Action = ActionAdded
			err = imp.Add(ctx, batch, record)
		}
	}
	if err != nil {
		res.Action = ActionFailed
		res.Error = asImportError(err)
		logger.Warn("entity import failed", zap.String("key", res.Key), zap.Error(res.Error))
		return res
	}

	item.Processed = true
	return res
}
