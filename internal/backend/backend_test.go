package backend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/stepwire/internal/convert"
	swerrors "github.com/mrz1836/stepwire/internal/errors"
	"github.com/mrz1836/stepwire/internal/glue"
	"github.com/mrz1836/stepwire/internal/step"
	"github.com/mrz1836/stepwire/internal/testutil"
)

// fakeBackend records lifecycle calls into a shared log.
type fakeBackend struct {
	name       string
	log        *[]string
	loadErr    error
	startErr   error
	disposeErr error
	isolated   bool
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Load(_ context.Context, reg glue.Registrar) error {
	*b.log = append(*b.log, "load "+b.name)
	if b.loadErr != nil {
		return b.loadErr
	}
	_, err := reg.Register("^"+b.name+"$", []convert.Descriptor{}, step.Location{File: b.name}, time.Duration(0),
		func(context.Context, []any) error { return nil })
	return err
}

func (b *fakeBackend) NewWorld(ctx context.Context) (context.Context, error) {
	*b.log = append(*b.log, "start "+b.name)
	if b.startErr != nil {
		return ctx, b.startErr
	}
	return ctx, nil
}

func (b *fakeBackend) DisposeWorld(context.Context) error {
	*b.log = append(*b.log, "dispose "+b.name)
	return b.disposeErr
}

func (b *fakeBackend) Snippet(text string) string { return b.name + ": " + text }

func (b *fakeBackend) IsolatedWorlds() bool { return b.isolated }

// legacyBackend hides IsolatedWorlds from the wrapped backend.
type legacyBackend struct{ Backend }

func TestSet_Load(t *testing.T) {
	var log []string
	g := glue.New()
	set := NewSet(zerolog.Nop(), &fakeBackend{name: "go", log: &log}, &fakeBackend{name: "script", log: &log})

	require.NoError(t, set.Load(context.Background(), g))

	assert.Equal(t, []string{"load go", "load script"}, log)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, "go: x\n\nscript: x\n", g.SuggestSnippet("x"))
	assert.Len(t, set.Backends(), 2)
}

func TestSet_LoadFailure(t *testing.T) {
	var log []string
	bad := swerrors.Configf("bad pattern")
	set := NewSet(zerolog.Nop(), &fakeBackend{name: "go", log: &log, loadErr: bad}, &fakeBackend{name: "script", log: &log})

	err := set.Load(context.Background(), glue.New())

	require.ErrorIs(t, err, swerrors.ErrConfiguration)
	assert.Contains(t, err.Error(), "load go backend")
	assert.Equal(t, []string{"load go"}, log)
}

func TestSet_WorldLifecycle(t *testing.T) {
	var log []string
	set := NewSet(zerolog.Nop(), &fakeBackend{name: "a", log: &log}, &fakeBackend{name: "b", log: &log})

	ctx, err := set.StartWorlds(context.Background())
	require.NoError(t, err)
	require.NoError(t, set.DisposeWorlds(ctx))

	assert.Equal(t, []string{"start a", "start b", "dispose b", "dispose a"}, log)
}

func TestSet_StartFailureDisposesStarted(t *testing.T) {
	var log []string
	boom := testutil.ErrMockNoFixtures
	set := NewSet(zerolog.Nop(),
		&fakeBackend{name: "a", log: &log},
		&fakeBackend{name: "b", log: &log, startErr: boom},
		&fakeBackend{name: "c", log: &log},
	)

	_, err := set.StartWorlds(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start a", "start b", "dispose a"}, log)
}

func TestSet_DisposeContinuesAfterFailure(t *testing.T) {
	var log []string
	boom := testutil.ErrMockCloseFailed
	set := NewSet(zerolog.Nop(), &fakeBackend{name: "a", log: &log}, &fakeBackend{name: "b", log: &log, disposeErr: boom})

	err := set.DisposeWorlds(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"dispose b", "dispose a"}, log)
}

func TestSet_Isolated(t *testing.T) {
	var log []string

	require.NoError(t, NewSet(zerolog.Nop(), &fakeBackend{name: "a", log: &log, isolated: true}).Isolated())

	err := NewSet(zerolog.Nop(), &fakeBackend{name: "a", log: &log, isolated: false}).Isolated()
	require.ErrorIs(t, err, swerrors.ErrWorldsNotIsolated)
	require.ErrorIs(t, err, swerrors.ErrConfiguration)
	assert.Contains(t, err.Error(), "a")

	err = NewSet(zerolog.Nop(), legacyBackend{&fakeBackend{name: "legacy", log: &log, isolated: true}}).Isolated()
	require.ErrorIs(t, err, swerrors.ErrWorldsNotIsolated)
	assert.Contains(t, err.Error(), "legacy")
}
