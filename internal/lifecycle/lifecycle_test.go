package lifecycle_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/rohmanhakim/shell-cache/internal/lifecycle"
	"github.com/rohmanhakim/shell-cache/internal/metadata"
	"github.com/rohmanhakim/shell-cache/internal/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagerForTest(t *testing.T, store partition.Store, fetch *assetServer, version string, clients lifecycle.ClientRegistry) *lifecycle.Manager {
	t.Helper()
	return lifecycle.NewManager(
		store,
		fetch,
		mustParse(t, testOrigin),
		partition.StaticName("lexsim", version),
		partition.DynamicName("lexsim", version),
		testManifest,
		clients,
		&metadata.NoopSink{},
		nil,
	)
}

func TestInstall_PrecachesEveryManifestAsset(t *testing.T) {
	store := partition.NewMemoryStore()
	m := newManagerForTest(t, store, &assetServer{}, "v1", nil)

	require.Nil(t, m.Install(context.Background()))
	assert.Equal(t, lifecycle.StateInstalled, m.State())

	static, err := store.Open(partition.StaticName("lexsim", "v1"))
	require.Nil(t, err)

	for _, assetPath := range testManifest {
		target := mustParse(t, testOrigin+assetPath)
		entry, ok, matchErr := static.Match(partition.Key(http.MethodGet, target))
		require.Nil(t, matchErr)
		require.True(t, ok, "manifest asset %s must be precached", assetPath)
		assert.Equal(t, []byte("asset:"+assetPath), entry.Body())
	}
}

func TestInstall_IsAllOrNothing(t *testing.T) {
	store := partition.NewMemoryStore()
	fetch := &assetServer{failing: map[string]bool{"/icons/icon-512.png": true}}
	m := newManagerForTest(t, store, fetch, "v1", nil)

	err := m.Install(context.Background())
	require.NotNil(t, err)
	assert.Equal(t, lifecycle.StateFailed, m.State())

	// Nothing was stored: the static partition was never created
	names, namesErr := store.Names()
	require.Nil(t, namesErr)
	assert.Empty(t, names, "a partial manifest must leave no partition behind")
}

func TestInstall_FailedInstallBlocksActivation(t *testing.T) {
	store := partition.NewMemoryStore()
	fetch := &assetServer{failing: map[string]bool{"/": true}}
	clients := &claimRecorder{}
	m := newManagerForTest(t, store, fetch, "v1", clients)

	require.NotNil(t, m.Install(context.Background()))

	err := m.Activate(context.Background())
	require.NotNil(t, err)
	assert.NotEqual(t, lifecycle.StateActive, m.State())
	assert.False(t, clients.claimed, "a failed install must never take over clients")
}

func TestActivate_SweepsOrphanedPartitions(t *testing.T) {
	store := partition.NewMemoryStore()

	// v1 generation: install, activate, and populate the dynamic partition
	v1 := newManagerForTest(t, store, &assetServer{}, "v1", nil)
	require.Nil(t, v1.Install(context.Background()))
	require.Nil(t, v1.Activate(context.Background()))

	dynamicV1, err := store.Open(partition.DynamicName("lexsim", "v1"))
	require.Nil(t, err)
	target := mustParse(t, testOrigin+"/api/orders")
	require.Nil(t, dynamicV1.Put(
		partition.Key(http.MethodGet, target),
		partition.NewEntry(200, nil, []byte("orders"), entryTime()),
	))

	// v2 generation takes over
	v2 := newManagerForTest(t, store, &assetServer{}, "v2", nil)
	require.Nil(t, v2.Install(context.Background()))
	require.Nil(t, v2.Activate(context.Background()))
	assert.Equal(t, lifecycle.StateActive, v2.State())

	names, namesErr := store.Names()
	require.Nil(t, namesErr)
	assert.NotContains(t, names, partition.StaticName("lexsim", "v1"))
	assert.NotContains(t, names, partition.DynamicName("lexsim", "v1"))
	assert.Contains(t, names, partition.StaticName("lexsim", "v2"))

	// v2 static partition is populated
	staticV2, err := store.Open(partition.StaticName("lexsim", "v2"))
	require.Nil(t, err)
	keys, keysErr := staticV2.Keys()
	require.Nil(t, keysErr)
	assert.Len(t, keys, len(testManifest))
}

func TestActivate_ClaimsClients(t *testing.T) {
	store := partition.NewMemoryStore()
	clients := &claimRecorder{}
	m := newManagerForTest(t, store, &assetServer{}, "v1", clients)

	require.Nil(t, m.Install(context.Background()))
	require.Nil(t, m.Activate(context.Background()))

	assert.True(t, clients.claimed)
	assert.Equal(t, lifecycle.StateActive, m.State())
}

func TestActivate_SweepFailureIsNonFatal(t *testing.T) {
	inner := partition.NewMemoryStore()

	// A stale v0 partition that refuses deletion, plus one that deletes fine
	_, err := inner.Open(partition.StaticName("lexsim", "v0"))
	require.Nil(t, err)
	_, err = inner.Open(partition.DynamicName("lexsim", "v0"))
	require.Nil(t, err)

	store := &failingDeleteStore{
		Store:  inner,
		failOn: map[string]bool{partition.StaticName("lexsim", "v0"): true},
	}

	m := newManagerForTest(t, store, &assetServer{}, "v1", nil)
	require.Nil(t, m.Install(context.Background()))
	require.Nil(t, m.Activate(context.Background()), "a sweep failure must not abort activation")
	assert.Equal(t, lifecycle.StateActive, m.State())

	// The deletable orphan is gone, the stuck one survives until next sweep
	names, namesErr := store.Names()
	require.Nil(t, namesErr)
	assert.Contains(t, names, partition.StaticName("lexsim", "v0"))
	assert.NotContains(t, names, partition.DynamicName("lexsim", "v0"))
}

func TestActivate_RequiresInstalledState(t *testing.T) {
	store := partition.NewMemoryStore()
	m := newManagerForTest(t, store, &assetServer{}, "v1", nil)

	err := m.Activate(context.Background())
	require.NotNil(t, err)
	assert.Equal(t, lifecycle.StateUninstalled, m.State())
}

func TestNewManager_NilCollaboratorsGetDefaults(t *testing.T) {
	store := partition.NewMemoryStore()
	m := lifecycle.NewManager(
		store,
		&assetServer{},
		mustParse(t, testOrigin),
		partition.StaticName("lexsim", "v1"),
		partition.DynamicName("lexsim", "v1"),
		testManifest,
		nil,
		nil,
		nil,
	)

	// Transitions record against the sink on every state change
	require.Nil(t, m.Install(context.Background()))
	require.Nil(t, m.Activate(context.Background()))
	assert.Equal(t, lifecycle.StateActive, m.State())
}

func TestInstall_SecondInstallRejected(t *testing.T) {
	store := partition.NewMemoryStore()
	m := newManagerForTest(t, store, &assetServer{}, "v1", nil)

	require.Nil(t, m.Install(context.Background()))
	err := m.Install(context.Background())
	assert.NotNil(t, err, "install fires once per instance")
}
