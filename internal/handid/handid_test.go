package handid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsValid(t *testing.T) {
	t.Parallel()

	id := New()
	assert.True(t, strings.HasPrefix(id, Prefix))
	assert.Len(t, id, len(Prefix)+encodedLen)
	require.NoError(t, Validate(id))

	u, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	var full uuid.UUID
	for i := range full {
		full[i] = 0xff
	}
	ids := []uuid.UUID{
		{},
		full,
		uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057"),
		uuid.New(),
	}
	for _, id := range ids {
		encoded := Encode(id)
		got, err := Parse(encoded)
		require.NoError(t, err, encoded)
		assert.Equal(t, id, got, encoded)
	}
	assert.Equal(t, Prefix+"00000000000000000000000000", Encode(uuid.UUID{}))
	assert.Equal(t, Prefix+"7zzzzzzzzzzzzzzzzzzzzzzzzz", Encode(full))
}

func TestEncodingSortsLikeBytes(t *testing.T) {
	t.Parallel()

	a := uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057")
	b := uuid.MustParse("01890a5d-ac97-7000-8000-000000000000")
	assert.Less(t, Encode(a), Encode(b))
	_, err := uuid.Parse(NewSeed())
	require.NoError(t, err, "seeds are plain uuids")
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"01h455vb4pex5vsknk084sn02q",
		Prefix + "short",
		Prefix + "81h455vb4pex5vsknk084sn02q",
		Prefix + "01h455vb4pex5vsknk084sn02u",
	}
	for _, s := range tests {
		require.Error(t, Validate(s), s)
	}
}
