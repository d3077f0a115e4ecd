// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rarity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

var (
	// ErrEmptyCollection is returned when an index is built from zero assets.
	ErrEmptyCollection = errors.New("empty asset collection: scoring requires at least one asset")

	// ErrAlreadyIndexed is returned when an engine is loaded a second time.
	// A new collection requires a new engine.
	ErrAlreadyIndexed = errors.New("engine already indexed a collection")

	// ErrNotIndexed is returned when scoring is requested before Load.
	ErrNotIndexed = errors.New("engine has no index: call Load first")
)

// MalformedAssetError reports an asset whose trait data is absent or of the
// wrong shape. It is recoverable: the engine skips the asset and reports it.
type MalformedAssetError struct {
	AssetID types.AssetID
	Reason  string
}

func (e *MalformedAssetError) Error() string {
	return fmt.Sprintf("malformed asset %q: %s", e.AssetID, e.Reason)
}

// UnknownStrategyError reports a strategy name that is not registered.
type UnknownStrategyError struct {
	Name  string
	Known []string
}

func (e *UnknownStrategyError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown strategy %q", e.Name)
	}
	return fmt.Sprintf("unknown strategy %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// DegenerateInputError reports input for which a strategy cannot produce a
// finite score: zero variance, an all-zero product, or overflow.
type DegenerateInputError struct {
	Strategy string
	Reason   string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input: %s", e.Strategy, e.Reason)
}

// DuplicateAssetError reports two assets sharing an id in one collection.
type DuplicateAssetError struct {
	AssetID types.AssetID
}

func (e *DuplicateAssetError) Error() string {
	return fmt.Sprintf("duplicate asset id %q in collection", e.AssetID)
}

// AssetError attaches a per-asset scoring failure to the asset it belongs to.
type AssetError struct {
	AssetID types.AssetID
	Err     error
}

func (e AssetError) Error() string {
	return fmt.Sprintf("asset %q: %v", e.AssetID, e.Err)
}

func (e AssetError) Unwrap() error { return e.Err }

// ErrorReport collects the per-asset failures of one scoring pass.
type ErrorReport struct {
	Errors []AssetError
}

// Len returns the number of failed assets.
func (r ErrorReport) Len() int { return len(r.Errors) }

// Empty reports whether every asset scored successfully.
func (r ErrorReport) Empty() bool { return len(r.Errors) == 0 }

// Err joins all per-asset errors, or returns nil for an empty report.
func (r ErrorReport) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}
