//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/cobalt/internal/config"
	"github.com/agenthands/cobalt/internal/core"
	"github.com/agenthands/cobalt/internal/core/model"
	"github.com/agenthands/cobalt/internal/driver"
	"github.com/agenthands/cobalt/internal/graph"
	"github.com/agenthands/cobalt/internal/store"
)

// TestFullPipeline runs the whole flow against a real Memgraph: seed the
// staging store, resolve, persist the person graph, and read it back.
func TestFullPipeline(t *testing.T) {
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}
	user := os.Getenv("MEMGRAPH_USER")
	pwd := os.Getenv("MEMGRAPH_PASSWORD")

	ctx := context.Background()

	d, err := driver.NewMemgraphDriver(uri, user, pwd)
	require.NoError(t, err)
	defer d.Close(ctx)

	// Start from an empty graph.
	_, err = d.ExecuteQuery(ctx, driver.DeleteRunQuery, nil)
	require.NoError(t, err)

	sink := graph.NewSink(d)
	require.NoError(t, sink.BuildIndices(ctx))

	st, err := store.Open(filepath.Join(t.TempDir(), "staging.db"))
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.SeedTrackerUsers(ctx, []model.RawIdentitySignal{
		{System: model.SystemLeft, PrimaryID: "4", DisplayName: "Pat Lee", Email: "p@x.com"},
		{System: model.SystemLeft, PrimaryID: "3", DisplayName: "Xi Wu"},
	}))
	require.NoError(t, st.SeedSCMUsers(ctx, []model.RawIdentitySignal{
		{System: model.SystemRight, PrimaryID: "20", Email: "p@x.com"},
		{System: model.SystemRight, PrimaryID: "21", DisplayName: "Pat Lee", Login: "patlee"},
	}))

	left, err := st.LoadTrackerUsers(ctx)
	require.NoError(t, err)
	right, err := st.LoadSCMUsers(ctx)
	require.NoError(t, err)

	engine := core.NewEngine(config.DefaultMatching())
	res := engine.Resolve(left, right)

	require.Len(t, res.Links, 1)
	link := res.Links[0]
	assert.Equal(t, model.MethodExactEmail, link.Method)
	assert.Equal(t, []string{"21"}, link.AliasRightIDs)

	require.NoError(t, st.SaveResolution(ctx, res))
	require.NoError(t, sink.PersistResolution(ctx, res, left, right))

	// The person must own its primary identities plus the folded alias.
	result, err := d.ExecuteQuery(ctx, driver.GetPersonIdentitiesQuery,
		map[string]interface{}{"uuid": link.LinkID})
	require.NoError(t, err)

	identities := make(map[string]bool) // uuid -> alias flag
	for _, record := range result.Records {
		uuid, _ := record.Get("uuid")
		alias, _ := record.Get("alias")
		identities[uuid.(string)] = alias.(bool)
	}
	assert.Equal(t, map[string]bool{
		"left:4":   false,
		"right:20": false,
		"right:21": true,
	}, identities)

	// The unmatched signal is an orphan Identity node.
	result, err = d.ExecuteQuery(ctx, driver.GetUnlinkedIdentitiesQuery, nil)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	uuid, _ := result.Records[0].Get("uuid")
	assert.Equal(t, "left:3", uuid)

	// Persisting again must merge, not duplicate.
	require.NoError(t, sink.PersistResolution(ctx, res, left, right))
	result, err = d.ExecuteQuery(ctx, "MATCH (p:Person) RETURN count(p) AS n", nil)
	require.NoError(t, err)
	n, _ := result.Records[0].Get("n")
	assert.EqualValues(t, 1, n)
}
