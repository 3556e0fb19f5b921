package modeljson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject(t *testing.T) {
	obj, err := Object("Sure! ```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, 1.0, obj["a"])

	_, err = Object("")
	assert.Error(t, err)
	_, err = Object("[1,2,3]")
	assert.Error(t, err)
	_, err = Object("{not json}")
	assert.Error(t, err)
}

func TestNumber(t *testing.T) {
	for _, tc := range []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{12.5, 12.5, true},
		{"$4.99", 4.99, true},
		{" 3 ", 3, true},
		{"cheap", 0, false},
		{nil, 0, false},
		{true, 0, false},
	} {
		got, ok := Number(tc.in)
		assert.Equal(t, tc.ok, ok, "%#v", tc.in)
		assert.InDelta(t, tc.want, got, 1e-9, "%#v", tc.in)
	}
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, 10.13, Currency(10.125000001))
	assert.Equal(t, 3.0, Currency(2.999))
}

func TestStringsAndObjects(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Strings([]interface{}{" a ", 3.0, "", "b"}))
	assert.Empty(t, Strings("nope"))

	objs, ok := Objects([]interface{}{map[string]interface{}{"x": 1.0}, "junk"})
	require.True(t, ok)
	assert.Len(t, objs, 1)

	_, ok = Objects(map[string]interface{}{})
	assert.False(t, ok)
}
