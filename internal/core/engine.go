// Package core implements the identity-resolution engine: a pure batch
// computation that links signals from two identity spaces into canonical
// person records. The engine does no I/O; callers load the pools and
// persist the resolution.
package core

import (
	"log"

	"github.com/agenthands/cobalt/internal/config"
	"github.com/agenthands/cobalt/internal/core/candidates"
	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/core/normalize"
	"github.com/agenthands/cobalt/internal/core/resolve"
)

type Engine struct {
	Generator *candidates.Generator
}

func NewEngine(cfg config.MatchingConfig) *Engine {
	return &Engine{
		Generator: candidates.NewGenerator(cfg),
	}
}

// Resolve matches the two pools and returns the resolved links plus both
// residual unmatched pools. It is a deterministic function of its inputs:
// rerunning over unchanged pools reproduces the identical resolution. It
// never fails; sparse input just yields a sparse (possibly all-unmatched)
// output.
func (e *Engine) Resolve(leftPool, rightPool []model.RawIdentitySignal) model.Resolution {
	leftNorm, leftByID := prepare(leftPool)
	rightNorm, rightByID := prepare(rightPool)

	pool := e.Generator.Generate(leftNorm, rightNorm)

	leftIDs := idSet(leftByID)
	rightIDs := idSet(rightByID)
	winners := resolve.Assign(pool, leftIDs, rightIDs)

	links := resolve.Consolidate(winners, pool, leftByID, rightByID)
	claimed := resolve.Claimed(links)

	res := model.Resolution{Links: links}
	for _, sig := range leftPool {
		if sig.Usable() && !resolve.InPool(claimed, model.SystemLeft, sig.PrimaryID) {
			res.UnmatchedLeft = append(res.UnmatchedLeft, sig)
		}
	}
	for _, sig := range rightPool {
		if sig.Usable() && !resolve.InPool(claimed, model.SystemRight, sig.PrimaryID) {
			res.UnmatchedRight = append(res.UnmatchedRight, sig)
		}
	}
	return res
}

func prepare(pool []model.RawIdentitySignal) ([]*model.NormalizedSignal, map[string]*model.RawIdentitySignal) {
	norm := make([]*model.NormalizedSignal, 0, len(pool))
	byID := make(map[string]*model.RawIdentitySignal, len(pool))
	for i := range pool {
		sig := &pool[i]
		if !sig.Usable() {
			log.Printf("Debug: skipping %s signal %q with no usable text fields", sig.System, sig.PrimaryID)
			continue
		}
		norm = append(norm, normalize.Signal(sig))
		byID[sig.PrimaryID] = sig
	}
	return norm, byID
}

func idSet(byID map[string]*model.RawIdentitySignal) map[string]struct{} {
	out := make(map[string]struct{}, len(byID))
	for id := range byID {
		out[id] = struct{}{}
	}
	return out
}
