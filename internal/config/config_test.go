package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icalcodec/internal/value"
)

func TestParseKeepsDefaultsForMissingKeys(t *testing.T) {
	cfg, err := Parse([]byte("fold_width: 40\nstrict_components: [vevent]\n"))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.FoldWidth)
	assert.True(t, cfg.SortProperties)
	assert.True(t, cfg.Validate)
	assert.Equal(t, []string{"VEVENT"}, cfg.StrictComponents)
	assert.Equal(t, 2038, cfg.RRuleCutoffYear)
	assert.Equal(t, "INFO", cfg.LogLevel)

	kinds, err := cfg.InferKinds()
	require.NoError(t, err)
	assert.Equal(t, map[value.Kind]bool{
		value.KindDate: true, value.KindDateTime: true, value.KindTime: true,
		value.KindPeriod: true, value.KindDuration: true,
	}, kinds)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
sort_properties: false
validate: false
infer_value: [date]
tolerant_components: [VCALENDAR, vtimezone]
strict_components: [VTIMEZONE]
log_level: debug
`))
	require.NoError(t, err)
	assert.False(t, cfg.SortProperties)
	assert.False(t, cfg.Validate)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	kinds, err := cfg.InferKinds()
	require.NoError(t, err)
	assert.Equal(t, map[value.Kind]bool{value.KindDate: true}, kinds)
	assert.Equal(t, map[string]bool{"VCALENDAR": true, "VTIMEZONE": false}, cfg.Tolerance())
}

func TestParseRejects(t *testing.T) {
	_, err := Parse([]byte("infer_value: [DATE, ADR]\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("fold_width: [1, 2]\n"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	cfg := &Config{FoldWidth: 2, SynthFirstYear: 2000, SynthLastYear: 1990, LogLevel: "loud"}
	cfg.Normalize()
	assert.Equal(t, 5, cfg.FoldWidth)
	assert.Equal(t, 2038, cfg.SynthLastYear)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Len(t, cfg.InferValue, 5)

	cfg = &Config{FoldWidth: 200, SynthFirstYear: 2050}
	cfg.Normalize()
	assert.Equal(t, 75, cfg.FoldWidth)
	assert.Equal(t, 2051, cfg.SynthLastYear)
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "icalcodec.yaml")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	cfg.FoldWidth = 60
	cfg.StrictComponents = []string{"valarm"}
	require.NoError(t, cfg.Save(path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 60, again.FoldWidth)
	assert.Equal(t, []string{"VALARM"}, again.StrictComponents)
}

func TestSaveRejectsEmpty(t *testing.T) {
	assert.Error(t, Save("", DefaultConfig()))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "x.yaml"), nil))
	_, err := Load("")
	assert.Error(t, err)
}
