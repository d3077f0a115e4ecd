// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rarity

import (
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

// ScoreOptions controls one scoring pass.
type ScoreOptions struct {
	// Workers is the number of goroutines scoring partitions of the
	// collection. Values below 1 mean 1.
	Workers int

	// FailFast aborts on the first failing asset in input order instead of
	// skipping it and recording it in the report.
	FailFast bool

	// TieBreakByID orders equal scores by ascending id: decimal integer ids
	// numerically and first, other ids lexically. Otherwise equal scores
	// keep input order.
	TieBreakByID bool
}

// RankedAsset is one row of a ranking. Rank 1 is the rarest asset.
type RankedAsset struct {
	ID         types.AssetID `json:"id" yaml:"id"`
	Collection string        `json:"collection,omitempty" yaml:"collection,omitempty"`
	Name       string        `json:"name,omitempty" yaml:"name,omitempty"`
	Score      float64       `json:"score" yaml:"score"`
	Rank       int           `json:"rank" yaml:"rank"`
}

// Result is the outcome of one scoring pass.
type Result struct {
	Strategy string
	Order    Order
	Scores   map[types.AssetID]float64
	Ranking  []RankedAsset
	Report   ErrorReport
}

// ScoreOne scores a single asset against idx.
func ScoreOne(a types.Asset, idx *Index, s Strategy, w Weights) (float64, error) {
	return s.Score(a, idx, w)
}

type outcome struct {
	score float64
	err   error
}

// ScoreAll applies s to every asset of idx and ranks the results from
// rarest to most common according to s.Order(). Per-asset failures are
// collected in the report unless opts.FailFast is set, in which case the
// first failure in input order is returned as an AssetError.
//
// Assets are scored in contiguous partitions, one goroutine each; every
// partition writes only its own slots and the merge runs in input order.
func ScoreAll(idx *Index, s Strategy, w Weights, opts ScoreOptions) (*Result, error) {
	assets := idx.Assets()
	outcomes := make([]outcome, len(assets))

	scoreRange := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v, err := s.Score(assets[i], idx, w)
			outcomes[i] = outcome{score: v, err: err}
		}
	}

	workers := max(opts.Workers, 1)
	workers = min(workers, len(assets))
	if workers <= 1 {
		scoreRange(0, len(assets))
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		chunk := (len(assets) + workers - 1) / workers
		for lo := 0; lo < len(assets); lo += chunk {
			lo := lo
			hi := min(lo+chunk, len(assets))
			g.Go(func() error {
				scoreRange(lo, hi)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := &Result{
		Strategy: s.Name(),
		Order:    s.Order(),
		Scores:   make(map[types.AssetID]float64, len(assets)),
	}
	for i, o := range outcomes {
		a := assets[i]
		if o.err != nil {
			ae := AssetError{AssetID: a.ID, Err: o.err}
			if opts.FailFast {
				return nil, ae
			}
			res.Report.Errors = append(res.Report.Errors, ae)
			continue
		}
		res.Scores[a.ID] = o.score
		res.Ranking = append(res.Ranking, RankedAsset{
			ID:         a.ID,
			Collection: a.Collection,
			Name:       a.Name,
			Score:      o.score,
		})
	}

	rank(res.Ranking, res.Order, opts.TieBreakByID)
	return res, nil
}

// rank stable-sorts rows rarest first and numbers them from 1.
func rank(rows []RankedAsset, order Order, tieBreakByID bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Score != b.Score {
			return order.rarer(a.Score, b.Score)
		}
		if tieBreakByID {
			return lessID(a.ID, b.ID)
		}
		return false
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

// lessID orders decimal integer ids numerically, of any length as token ids
// can be, ahead of all other ids, which compare lexically.
func lessID(a, b types.AssetID) bool {
	na, okA := digits(string(a))
	nb, okB := digits(string(b))
	switch {
	case okA && okB:
		if len(na) != len(nb) {
			return len(na) < len(nb)
		}
		if na != nb {
			return na < nb
		}
		return a < b
	case okA != okB:
		return okA
	default:
		return a < b
	}
}

// digits returns s without leading zeros when s is all ASCII digits.
func digits(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", false
		}
	}
	return strings.TrimLeft(s, "0"), true
}

// Top returns at most n rows of the ranking; n <= 0 returns all.
func (r *Result) Top(n int) []RankedAsset {
	if n <= 0 || n >= len(r.Ranking) {
		return r.Ranking
	}
	return r.Ranking[:n]
}
