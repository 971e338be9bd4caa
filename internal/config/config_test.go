package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtrack/deckscan/internal/fixed"
)

func TestDefaultsCoverEveryDocumentedKey(t *testing.T) {
	defaults := Defaults()
	for _, key := range []string{
		"edge.MinimumThreshold",
		"search.LineHorizontalWeightAdjustment",
		"search.MaxDeckMatchError",
		"search.TemporalExpirationMS",
		"search.UseLandmarkContours",
		"decode.EnableSharpnessDetection",
		"resolve.GenocideScaleFactor",
		"deck.MinSamplesPerCard",
		"analysis.MissingCardPopularity",
		"analysis.HighConfidenceFactorThreshold",
	} {
		_, ok := defaults[key]
		assert.True(t, ok, "missing default for %s", key)
	}
}

func TestStoreSetNotifiesListeners(t *testing.T) {
	s := NewWithDefaults()
	var seen []string
	id := s.Register(func(key string) { seen = append(seen, key) })
	defer s.Unregister(id)

	s.Set("edge.MinimumThreshold", RollValue(20))
	require.Equal(t, []string{"edge.MinimumThreshold"}, seen)

	e, ok := s.Get("edge.MinimumThreshold")
	require.True(t, ok)
	v, ok := e.Value.AsRoll()
	require.True(t, ok)
	assert.Equal(t, int32(20), v)
}

func TestStoreUnregisterStopsNotifications(t *testing.T) {
	s := NewWithDefaults()
	var count int
	id := s.Register(func(key string) { count++ })
	s.Unregister(id)

	s.Set("edge.MinimumThreshold", RollValue(99))
	assert.Equal(t, 0, count)
}

func TestSaveThenLoadRoundTripsNonCodeDefinitionKinds(t *testing.T) {
	s := New()
	s.SetEntry("k.string", Entry{Value: StringValue("hello"), Description: "d", Public: true})
	s.SetEntry("k.map", Entry{Value: StringMapValue(map[string]string{"a": "1"})})
	s.SetEntry("k.path", Entry{Value: PathValue("/tmp/x")})
	s.SetEntry("k.patharray", Entry{Value: PathArrayValue([]string{"/a", "/b"})})
	s.SetEntry("k.bool", Entry{Value: BoolValue(true)})
	s.SetEntry("k.int", Entry{Value: IntValue(42)})
	s.SetEntry("k.fixed", Entry{Value: FixedValue(fixed.FromFloat(1.5))})
	s.SetEntry("k.real", Entry{Value: RealValue(2.5)})
	s.SetEntry("k.roll", Entry{Value: RollValue(7)})
	s.SetEntry("k.time", Entry{Value: TimeValue(250 * time.Millisecond)})

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, s.Save(path))

	reloaded := New()
	require.NoError(t, reloaded.LoadTiers(nil, "nonexistent-base"))
	data, err := readAndDecode(path)
	require.NoError(t, err)
	reloaded.replaceAll(data)

	e, ok := reloaded.Get("k.string")
	require.True(t, ok)
	str, _ := e.Value.AsString()
	assert.Equal(t, "hello", str)
	assert.Equal(t, "d", e.Description)
	assert.True(t, e.Public)

	e, ok = reloaded.Get("k.map")
	require.True(t, ok)
	m, _ := e.Value.AsStringMap()
	assert.Equal(t, map[string]string{"a": "1"}, m)

	e, ok = reloaded.Get("k.patharray")
	require.True(t, ok)
	arr, _ := e.Value.AsPathArray()
	assert.Equal(t, []string{"/a", "/b"}, arr)

	e, ok = reloaded.Get("k.fixed")
	require.True(t, ok)
	f, _ := e.Value.AsFixed()
	assert.InDelta(t, 1.5, f.Float(), 1e-4)

	e, ok = reloaded.Get("k.time")
	require.True(t, ok)
	d, _ := e.Value.AsTime()
	assert.Equal(t, 250*time.Millisecond, d)
}

func readAndDecode(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeFile(data)
}
