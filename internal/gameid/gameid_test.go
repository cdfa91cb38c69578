package gameid

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	code, err := Generate()
	require.NoError(t, err)

	assert.Len(t, code, Length)
	assert.NoError(t, Validate(code))
	assert.LessOrEqual(t, code[0], byte('7'))
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		code, err := Generate()
		require.NoError(t, err)
		require.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestGenerateTimeSorted(t *testing.T) {
	var codes []string
	for range 10 {
		code, err := Generate()
		require.NoError(t, err)
		codes = append(codes, code)
		time.Sleep(time.Millisecond)
	}
	for i := 1; i < len(codes); i++ {
		assert.Negative(t, strings.Compare(codes[i-1], codes[i]), "codes not sorted: %s >= %s", codes[i-1], codes[i])
	}
}

func TestGenerateFromReader(t *testing.T) {
	code, err := GenerateFromReader(bytes.NewReader(bytes.Repeat([]byte{0xab}, 64)))
	require.NoError(t, err)
	require.NoError(t, Validate(code))

	id, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, byte(0xab), id[15])

	_, err = GenerateFromReader(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	ids := []uuid.UUID{
		{},
		uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"),
		uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057"),
	}
	for _, id := range ids {
		code := Encode(id)
		require.NoError(t, Validate(code), id.String())
		got, err := Decode(code)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	assert.Equal(t, strings.Repeat("0", Length), Encode(uuid.UUID{}))
	assert.Equal(t, "7"+strings.Repeat("z", Length-1), Encode(ids[1]))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid", "01h5n0et5q6mt3v7ms1234abcd", false},
		{"too short", "01h5n0et5q6mt3v7ms123", true},
		{"too long", "01h5n0et5q6mt3v7ms1234abcdef", true},
		{"first char too high", "81h5n0et5q6mt3v7ms1234abcd", true},
		{"invalid character", "01h5n0et5q6mt3v7ms1234abci", true},
		{"uppercase not allowed", "01H5N0ET5Q6MT3V7MS1234ABCD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.code)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAlphabet(t *testing.T) {
	require.Len(t, alphabet, 32)

	seen := make(map[rune]bool)
	for _, c := range alphabet {
		assert.False(t, seen[c], "duplicate character %c", c)
		seen[c] = true
	}
	for _, c := range "ilou" {
		assert.NotContains(t, alphabet, string(c))
	}
}
