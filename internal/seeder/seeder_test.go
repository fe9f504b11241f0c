package seeder

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/tribalkb/internal/casefile"
	"github.com/telhawk-systems/tribalkb/internal/entitymap"
	"github.com/telhawk-systems/tribalkb/internal/tribal"
)

func seedResolver() *entitymap.Resolver {
	return entitymap.New(map[string][]string{
		"User": {"target.user.id", "principal.user.email"},
		"Host": {"target.hostname"},
		"IP":   {"source.ip"},
	})
}

func TestRun_GeneratedFilesLoadAndAggregate(t *testing.T) {
	cfg := Config{
		Cases:       50,
		Files:       3,
		MaxSignals:  3,
		MaxEntities: 2,
		TimeSpread:  7 * 24 * time.Hour,
		OutDir:      t.TempDir(),
		Seed:        11,
	}

	paths, err := Run(cfg, seedResolver())
	require.NoError(t, err)
	require.Len(t, paths, 3)

	cases, err := casefile.LoadFiles(paths...)
	require.NoError(t, err)
	assert.Len(t, cases, 50)

	acc := tribal.NewAccumulator(seedResolver())
	acc.AddCases(cases)
	assert.Equal(t, 50, acc.CasesSeen())
	assert.Greater(t, acc.EntityCount(), 0)

	// Generated data must satisfy the core invariants end to end.
	for _, doc := range acc.Finalize() {
		assert.NotEqual(t, entitymap.UnknownType, doc.EntityType,
			"seeded fields all come from the entity map")
		assert.NotEmpty(t, doc.SourceTickets)
		for _, stat := range doc.SignalStats {
			assert.Greater(t, stat.TotalSeenCount, 0)
			assert.GreaterOrEqual(t, stat.BenignCount, 0)
			assert.LessOrEqual(t, stat.BenignCount, stat.TotalSeenCount)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	base := Config{
		Cases:      10,
		Files:      1,
		MaxSignals: 2,
		TimeSpread: time.Hour,
		Seed:       42,
	}

	first := base
	first.OutDir = t.TempDir()
	second := base
	second.OutDir = t.TempDir()

	p1, err := Run(first, seedResolver())
	require.NoError(t, err)
	p2, err := Run(second, seedResolver())
	require.NoError(t, err)

	c1, err := casefile.LoadFiles(p1...)
	require.NoError(t, err)
	c2, err := casefile.LoadFiles(p2...)
	require.NoError(t, err)
	assert.Equal(t, c1, c2, "same seed generates the same cases")
}

func TestRun_RejectsEmptyEntityMap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutDir = t.TempDir()

	_, err := Run(cfg, entitymap.New(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "association fields")
}

func TestValueForField(t *testing.T) {
	faker := gofakeit.New(7)

	assert.Contains(t, valueForField(faker, "principal.user.email"), "@")
	assert.NotEmpty(t, valueForField(faker, "source.ip"))
	assert.NotEmpty(t, valueForField(faker, "target.hostname"))
	assert.NotEmpty(t, valueForField(faker, "unmapped.field"))
}
