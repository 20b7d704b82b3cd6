package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/cobalt/internal/core/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "staging.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeedAndLoadPools(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tracker := []model.RawIdentitySignal{
		{
			System:      model.SystemLeft,
			PrimaryID:   "1",
			DisplayName: "Jane Smith",
			Email:       "j@x.com",
			AliasEmails: []string{"jane@old.com"},
		},
		{System: model.SystemLeft, PrimaryID: "2", DisplayName: "Wei Lin"},
	}
	scm := []model.RawIdentitySignal{
		{
			System:      model.SystemRight,
			PrimaryID:   "10",
			Login:       "jsmith",
			Email:       "j@x.com",
			AliasLogins: []string{"jsmith2"},
		},
	}

	require.NoError(t, s.SeedTrackerUsers(ctx, tracker))
	require.NoError(t, s.SeedSCMUsers(ctx, scm))

	gotTracker, err := s.LoadTrackerUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, tracker, gotTracker)

	gotSCM, err := s.LoadSCMUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, scm, gotSCM)
}

func TestSeedIsUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := []model.RawIdentitySignal{
		{System: model.SystemLeft, PrimaryID: "1", DisplayName: "Jane Smith"},
	}
	second := []model.RawIdentitySignal{
		{System: model.SystemLeft, PrimaryID: "1", DisplayName: "Jane Smyth", Email: "j@x.com"},
	}

	require.NoError(t, s.SeedTrackerUsers(ctx, first))
	require.NoError(t, s.SeedTrackerUsers(ctx, second))

	got, err := s.LoadTrackerUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestSaveAndLoadResolution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res := model.Resolution{
		Links: []model.ResolvedLink{
			{
				LinkID:            model.LinkID("1", "10"),
				LeftID:            "1",
				RightID:           "10",
				LeftDisplayName:   "Jane Smith",
				LeftEmail:         "j@x.com",
				RightLogin:        "jsmith",
				RightEmail:        "j@x.com",
				AliasRightIDs:     []string{"11"},
				AliasDisplayNames: []string{"J. Smith"},
				AliasLogins:       []string{"jsmith2"},
				Method:            model.MethodExactEmail,
				Confidence:        1.0,
			},
		},
		UnmatchedLeft: []model.RawIdentitySignal{
			{System: model.SystemLeft, PrimaryID: "3", DisplayName: "Xi Wu"},
		},
		UnmatchedRight: []model.RawIdentitySignal{
			{System: model.SystemRight, PrimaryID: "12", Login: "kparker"},
		},
	}

	require.NoError(t, s.SaveResolution(ctx, res))

	links, err := s.LoadLinks(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Links, links)

	unLeft, unRight, err := s.LoadUnmatched(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.UnmatchedLeft, unLeft)
	assert.Equal(t, res.UnmatchedRight, unRight)
}

func TestSaveResolutionReplacesPreviousRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := model.Resolution{
		Links: []model.ResolvedLink{
			{LinkID: "aaa", LeftID: "1", RightID: "10", Method: model.MethodFuzzy, Confidence: 0.86},
		},
		UnmatchedLeft: []model.RawIdentitySignal{
			{System: model.SystemLeft, PrimaryID: "2", DisplayName: "Wei Lin"},
		},
	}
	require.NoError(t, s.SaveResolution(ctx, first))

	second := model.Resolution{
		Links: []model.ResolvedLink{
			{LinkID: "bbb", LeftID: "2", RightID: "11", Method: model.MethodPattern, Confidence: 0.75},
		},
	}
	require.NoError(t, s.SaveResolution(ctx, second))

	links, err := s.LoadLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "bbb", links[0].LinkID)

	unLeft, unRight, err := s.LoadUnmatched(ctx)
	require.NoError(t, err)
	assert.Empty(t, unLeft)
	assert.Empty(t, unRight)
}

func TestEmptyDatabase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tracker, err := s.LoadTrackerUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, tracker)

	links, err := s.LoadLinks(ctx)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestListifyLenient(t *testing.T) {
	assert.Nil(t, listify(""))
	assert.Nil(t, listify("[]"))
	assert.Nil(t, listify("not json"))
	assert.Equal(t, []string{"a", "b"}, listify(`["a","b"]`))
}

func TestJsonify(t *testing.T) {
	assert.Equal(t, "[]", jsonify(nil))
	assert.Equal(t, `["a","b"]`, jsonify([]string{"a", "b"}))
}
