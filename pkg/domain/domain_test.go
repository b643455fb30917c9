package domain

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupKey_SetEquality(t *testing.T) {
	a := NewGroupKey("v", "t")
	b := NewGroupKey("t", "v", "t")
	assert.Equal(t, a, b)
	assert.Equal(t, "t+v", a.String())
	assert.Equal(t, []string{"t", "v"}, a.Domains())
	assert.True(t, a.Contains("v"))
	assert.False(t, a.Contains("attr"))
	assert.Equal(t, 2, a.Len())

	m := map[GroupKey]float64{a: 0.5}
	assert.Equal(t, 0.5, m[b])
}

func TestParseGroupKey(t *testing.T) {
	assert.Equal(t, NewGroupKey("attr", "v"), ParseGroupKey("v,attr"))
	assert.Equal(t, NewGroupKey("attr", "v"), ParseGroupKey("attr+v"))
	assert.True(t, ParseGroupKey(" , ").IsZero())
	assert.Nil(t, GroupKey{}.Domains())
}

func TestCheckID(t *testing.T) {
	for id := range BuiltinTypes() {
		assert.NoError(t, CheckID(id))
	}
	for _, id := range []string{"", "a+b", "a,b", "v ", "\tv"} {
		err := CheckID(id)
		assert.ErrorIs(t, err, ErrConfiguration, "id %q", id)
	}
}

func TestGroupKey_TextRoundTrip(t *testing.T) {
	m := map[GroupKey]int{NewGroupKey("v", "t"): 1}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"t+v":1}`, string(data))

	var back map[GroupKey]int
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, back)
}

func TestErrors_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"index", CheckIndex(4, 4), ErrIndexOutOfRange},
		{"negative index", CheckIndex(-1, 4), ErrIndexOutOfRange},
		{"unknown", &UnknownDomainError{ID: "z"}, ErrUnknownDomain},
		{"config", &ConfigError{Domain: "attr", Reason: "boom"}, ErrConfiguration},
		{"length", CheckLengths("a", 1, "b", 2), ErrLengthMismatch},
		{"proportion", &ProportionError{Group: NewGroupKey("v"), Value: 2}, ErrInvalidProportion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.True(t, errors.Is(tt.err, tt.target))
		})
	}

	assert.NoError(t, CheckIndex(0, 1))
	assert.NoError(t, CheckLengths("a", 3, "b", 3))
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("no such file")
	err := &ConfigError{Domain: "v_latents", Key: "presaved_path", Reason: "missing file", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"v_latents"`)
	assert.Contains(t, err.Error(), "presaved_path")
}

func TestImage_MarshalJSON(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	data, err := json.Marshal(Image{img})
	require.NoError(t, err)

	var decoded struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		PNG    []byte `json:"png"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.Width)
	assert.Equal(t, 3, decoded.Height)
	assert.NotEmpty(t, decoded.PNG)
}

func TestChoice_Clone(t *testing.T) {
	c := Choice{
		Structure: 1,
		Groups:    []int{0, 1},
		Writers:   map[string]map[string]int{"shape": {"a": 1}},
		Variants:  map[string]int{"color": 2},
	}
	cp := c.Clone()
	cp.Groups[0] = 9
	cp.Writers["shape"]["a"] = 9
	cp.Variants["color"] = 9

	assert.Equal(t, 0, c.Groups[0])
	assert.Equal(t, 1, c.Writers["shape"]["a"])
	assert.Equal(t, 2, c.Variants["color"])
}

func TestValidSplit(t *testing.T) {
	for _, s := range []string{"train", "val", "test"} {
		assert.True(t, ValidSplit(s))
	}
	assert.False(t, ValidSplit("validation"))
}
