// Package loader implements the Entity Loader Framework: the one base loop
// every destination loader (products, variants, customers, orders,
// inventory, ...) shares, parameterized over ports.EntityLoader rather than
// duplicated per entity kind (spec §4.5).
package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/oronts/datahub/internal/domain/record"
	"github.com/oronts/datahub/internal/ports"
	datahuberrors "github.com/oronts/datahub/pkg/errors"
)

// Options configures one Run invocation; all fields mirror a LOAD step's
// config (spec §6 step config schemas, §4.5 contracts).
type Options struct {
	Operation        ports.LoaderOperation
	LookupFields     []string
	SkipDuplicates   bool
	DryRun           bool
	UpdateOnlyFields []string
}

// ErrorReporter quarantines one per-record failure; the caller (the LOAD
// strategy) supplies the concrete implementation so this package stays free
// of any dependency on the engine or recorderror packages.
type ErrorReporter func(rec record.Record, message, code string)

// Outcome tallies one Run invocation's write outcomes.
type Outcome struct {
	Created     int
	Updated     int
	Skipped     int
	Failed      int
	Succeeded   int
	AffectedIDs []string
}

// Run executes the base loop of spec §4.5 over records using loader for the
// per-entity operations and opts for loop-wide policy. Output is the
// sequence of records that were successfully created or updated, matching
// the input order of survivors; the per-record error channel is invoked for
// every validation failure, duplicate conflict, and lookup/update/create
// failure. Skipped records (skipDuplicates, or UPDATE with no match) are not
// reported.
func Run(ctx context.Context, entityLoader ports.EntityLoader, records []record.Record, opts Options, onError ErrorReporter) (Outcome, []record.Record, error) {
	pre, err := entityLoader.Preprocess(ctx, records)
	if err != nil {
		return Outcome{}, nil, err
	}

	var outcome Outcome
	survivors := make([]record.Record, 0, len(pre))

	for _, rec := range pre {
		result := entityLoader.Validate(ctx, rec, opts.Operation)
		if !result.Valid {
			outcome.Failed++
			reportFieldErrors(rec, result.Errors, onError)
			continue
		}

		existing, err := entityLoader.FindExisting(ctx, rec, opts.LookupFields)
		if err != nil {
			outcome.Failed++
			reportError(rec, err, onError)
			continue
		}

		if existing != nil {
			if opts.Operation == ports.OpCreate {
				if opts.SkipDuplicates {
					outcome.Skipped++
					continue
				}
				outcome.Failed++
				report(onError, rec, entityLoader.DuplicateMessage(*existing), "DUPLICATE")
				continue
			}
			if !opts.DryRun {
				if err := entityLoader.UpdateEntity(ctx, existing.ID, rec, opts.UpdateOnlyFields); err != nil {
					outcome.Failed++
					reportError(rec, err, onError)
					continue
				}
			}
			outcome.Updated++
			outcome.AffectedIDs = append(outcome.AffectedIDs, existing.ID)
		} else {
			if opts.Operation == ports.OpUpdate {
				outcome.Skipped++
				continue
			}
			if !opts.DryRun {
				id, err := entityLoader.CreateEntity(ctx, rec)
				if err != nil {
					outcome.Failed++
					reportError(rec, err, onError)
					continue
				}
				if id == "" {
					outcome.Failed++
					noIDErr := datahuberrors.NewExecutionError("create", fmt.Errorf("create returned no id"))
					report(onError, rec, noIDErr.Error(), "CREATE_FAILED")
					continue
				}
				outcome.Created++
				outcome.AffectedIDs = append(outcome.AffectedIDs, id)
			} else {
				outcome.Created++
			}
		}

		outcome.Succeeded++
		survivors = append(survivors, rec)
	}

	return outcome, survivors, nil
}

func reportFieldErrors(rec record.Record, issues []ports.FieldIssue, onError ErrorReporter) {
	if onError == nil {
		return
	}
	for _, issue := range issues {
		verr := datahuberrors.NewValidationError(issue.Field, issue.Message, nil)
		onError(rec, verr.Error(), issue.Code)
	}
}

func reportError(rec record.Record, err error, onError ErrorReporter) {
	wrapped := datahuberrors.NewExecutionError("load", err)
	report(onError, rec, wrapped.Error(), classifyCode(err))
}

func report(onError ErrorReporter, rec record.Record, message, code string) {
	if onError == nil {
		return
	}
	onError(rec, message, code)
}

// Recoverable reports whether err's message matches the case-insensitive
// substring classification of spec §4.5 ("timeout", "connection",
// "temporarily").
func Recoverable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") || strings.Contains(msg, "temporarily")
}

func classifyCode(err error) string {
	if Recoverable(err) {
		return "RECOVERABLE_ERROR"
	}
	return "LOAD_FAILED"
}
