package imaging

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, timeout time.Duration) *Pipeline {
	t.Helper()
	return NewPipeline(NewCodec(100, DefaultQuality), gecho.NewDefaultLogger(), 4, timeout)
}

func TestProcessUniqueProcessesEveryDigest(t *testing.T) {
	p := newTestPipeline(t, 10*time.Second)

	unique := make(map[string][]byte)
	for _, c := range []color.NRGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
	} {
		raw := encodePNG(t, 20, 20, c)
		unique[Digest(raw)] = raw
	}

	outcomes := p.ProcessUnique(context.Background(), unique)
	require.Len(t, outcomes, len(unique))

	encoded := make(map[string]bool)
	for digest, out := range outcomes {
		require.NoError(t, out.Err, "digest %s", digest)
		assert.NotEmpty(t, out.Data)
		encoded[string(out.Data)] = true
	}
	assert.Len(t, encoded, len(unique), "every digest should get its own encoded payload")
}

func TestProcessUniqueDegradesCorruptImage(t *testing.T) {
	p := newTestPipeline(t, 10*time.Second)

	good := encodePNG(t, 10, 10, color.NRGBA{R: 9, A: 255})
	bad := []byte("not an image at all")
	unique := map[string][]byte{
		Digest(good): good,
		Digest(bad):  bad,
	}

	outcomes := p.ProcessUnique(context.Background(), unique)
	require.Len(t, outcomes, 2)

	assert.NoError(t, outcomes[Digest(good)].Err)
	assert.NotEmpty(t, outcomes[Digest(good)].Data)

	assert.Error(t, outcomes[Digest(bad)].Err)
	assert.Empty(t, outcomes[Digest(bad)].Data)
}

func TestProcessUniqueTimeoutDegradesImage(t *testing.T) {
	p := newTestPipeline(t, time.Nanosecond)

	raw := encodePNG(t, 50, 50, color.NRGBA{G: 120, A: 255})
	unique := map[string][]byte{Digest(raw): raw}

	outcomes := p.ProcessUnique(context.Background(), unique)
	require.Len(t, outcomes, 1)

	out := outcomes[Digest(raw)]
	assert.Error(t, out.Err)
	assert.Empty(t, out.Data)
}

func TestProcessUniqueEmptyInput(t *testing.T) {
	p := newTestPipeline(t, time.Second)
	outcomes := p.ProcessUnique(context.Background(), nil)
	assert.Empty(t, outcomes)
}
