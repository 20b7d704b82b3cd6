// Package graph persists a finished resolution as Person and Identity
// nodes. Node ids are derived from the input, so re-persisting the same
// resolution merges onto the existing records instead of duplicating them.
package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/driver"
)

type Sink struct {
	Driver driver.GraphDriver
}

func NewSink(d driver.GraphDriver) *Sink {
	return &Sink{Driver: d}
}

func (s *Sink) BuildIndices(ctx context.Context) error {
	return s.Driver.BuildIndices(ctx)
}

// PersistResolution writes one Person per resolved link, one Identity per
// signal, and HAS_IDENTITY edges for primaries and folded aliases. Unmatched
// signals become orphan Identity nodes.
func (s *Sink) PersistResolution(ctx context.Context, res model.Resolution, left, right []model.RawIdentitySignal) error {
	leftByID := signalsByID(left)
	rightByID := signalsByID(right)
	now := time.Now().UTC()

	for _, link := range res.Links {
		if err := s.savePerson(ctx, link, now); err != nil {
			return fmt.Errorf("failed to save person %s: %w", link.LinkID, err)
		}

		if err := s.attach(ctx, link, leftByID[link.LeftID], false, now); err != nil {
			return err
		}
		if err := s.attach(ctx, link, rightByID[link.RightID], false, now); err != nil {
			return err
		}
		for _, id := range link.AliasLeftIDs {
			if err := s.attach(ctx, link, leftByID[id], true, now); err != nil {
				return err
			}
		}
		for _, id := range link.AliasRightIDs {
			if err := s.attach(ctx, link, rightByID[id], true, now); err != nil {
				return err
			}
		}
	}

	for _, sig := range res.UnmatchedLeft {
		if err := s.saveIdentity(ctx, &sig, now); err != nil {
			return err
		}
	}
	for _, sig := range res.UnmatchedRight {
		if err := s.saveIdentity(ctx, &sig, now); err != nil {
			return err
		}
	}

	return nil
}

func (s *Sink) savePerson(ctx context.Context, link model.ResolvedLink, now time.Time) error {
	name := link.LeftDisplayName
	if name == "" {
		name = link.RightDisplayName
	}
	params := map[string]interface{}{
		"uuid":         link.LinkID,
		"display_name": name,
		"method":       string(link.Method),
		"confidence":   link.Confidence,
		"created_at":   now,
	}
	_, err := s.Driver.ExecuteQuery(ctx, driver.SavePersonNodeQuery, params)
	return err
}

func (s *Sink) attach(ctx context.Context, link model.ResolvedLink, sig *model.RawIdentitySignal, alias bool, now time.Time) error {
	if sig == nil {
		return nil
	}
	if err := s.saveIdentity(ctx, sig, now); err != nil {
		return err
	}

	identityUUID := IdentityUUID(sig.System, sig.PrimaryID)
	params := map[string]interface{}{
		"uuid":          model.LinkID(link.LinkID, identityUUID),
		"person_uuid":   link.LinkID,
		"identity_uuid": identityUUID,
		"method":        string(link.Method),
		"confidence":    link.Confidence,
		"alias":         alias,
		"created_at":    now,
	}
	if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveHasIdentityEdgeQuery, params); err != nil {
		return fmt.Errorf("failed to link identity %s: %w", identityUUID, err)
	}
	return nil
}

func (s *Sink) saveIdentity(ctx context.Context, sig *model.RawIdentitySignal, now time.Time) error {
	query := driver.SaveScmIdentityNodeQuery
	if sig.System == model.SystemLeft {
		query = driver.SaveTrackerIdentityNodeQuery
	}

	params := map[string]interface{}{
		"uuid":         IdentityUUID(sig.System, sig.PrimaryID),
		"system":       string(sig.System),
		"primary_id":   sig.PrimaryID,
		"display_name": sig.DisplayName,
		"login":        sig.Login,
		"email":        sig.Email,
		"created_at":   now,
	}
	if _, err := s.Driver.ExecuteQuery(ctx, query, params); err != nil {
		return fmt.Errorf("failed to save identity %s/%s: %w", sig.System, sig.PrimaryID, err)
	}
	return nil
}

// IdentityUUID is the stable node id for a signal.
func IdentityUUID(system model.System, primaryID string) string {
	return strings.ToLower(string(system)) + ":" + primaryID
}

func signalsByID(pool []model.RawIdentitySignal) map[string]*model.RawIdentitySignal {
	out := make(map[string]*model.RawIdentitySignal, len(pool))
	for i := range pool {
		out[pool[i].PrimaryID] = &pool[i]
	}
	return out
}
