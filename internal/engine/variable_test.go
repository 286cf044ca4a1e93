package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntVar_Parse(t *testing.T) {
	tests := []struct {
		name  string
		bits  int
		input string
		want  int64
		err   error
	}{
		{"zero", 0, "0", 0, nil},
		{"positive", 0, "42", 42, nil},
		{"explicit plus", 0, "+42", 42, nil},
		{"negative", 0, "-42", -42, nil},
		{"int8 max", 8, "127", 127, nil},
		{"int8 min", 8, "-128", -128, nil},
		{"int8 overflow", 8, "128", 0, ErrRange},
		{"int8 underflow", 8, "-129", 0, ErrRange},
		{"int16 max", 16, "32767", 32767, nil},
		{"int64 max", 64, "9223372036854775807", math.MaxInt64, nil},
		{"int64 min", 64, "-9223372036854775808", math.MinInt64, nil},
		{"int64 overflow", 64, "9223372036854775808", 0, ErrRange},
		{"huge", 64, "99999999999999999999999", 0, ErrRange},
		{"empty", 0, "", 0, ErrEmptyValue},
		{"sign only", 0, "-", 0, ErrSyntax},
		{"letters", 0, "12a", 0, ErrSyntax},
		{"hex is not decimal", 0, "0x10", 0, ErrSyntax},
		{"space", 0, " 1", 0, ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := int64(7)
			err := IntVar{Target: &target, Bits: tt.bits}.Parse([]byte(tt.input))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, int64(7), target, "target unchanged on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, target)
		})
	}
}

func TestIntVar_Format(t *testing.T) {
	tests := []struct {
		value int64
		want  string
	}{
		{0, "0"},
		{5, "5"},
		{-5, "-5"},
		{math.MaxInt64, "9223372036854775807"},
		{math.MinInt64, "-9223372036854775808"},
	}

	for _, tt := range tests {
		v := tt.value
		out := make([]byte, 32)
		n, err := IntVar{Target: &v}.Format(out)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(out[:n]))
	}

	v := int64(-100)
	_, err := IntVar{Target: &v}.Format(make([]byte, 3))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestUintVar(t *testing.T) {
	var x uint64
	v := UintVar{Target: &x, Bits: 16}

	require.NoError(t, v.Parse([]byte("65535")))
	assert.Equal(t, uint64(65535), x)
	assert.ErrorIs(t, v.Parse([]byte("65536")), ErrRange)
	assert.ErrorIs(t, v.Parse([]byte("-1")), ErrSyntax)
	assert.ErrorIs(t, v.Parse([]byte("+1")), ErrSyntax)
	assert.ErrorIs(t, v.Parse(nil), ErrEmptyValue)
	assert.Equal(t, uint64(65535), x)

	full := UintVar{Target: &x}
	require.NoError(t, full.Parse([]byte("18446744073709551615")))
	assert.Equal(t, uint64(math.MaxUint64), x)
	assert.ErrorIs(t, full.Parse([]byte("18446744073709551616")), ErrRange)

	out := make([]byte, 20)
	n, err := full.Format(out)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", string(out[:n]))
}

func TestHexVar(t *testing.T) {
	var x uint64
	v := HexVar{Target: &x, Bits: 16}

	require.NoError(t, v.Parse([]byte("0x1aF")))
	assert.Equal(t, uint64(0x1AF), x)
	require.NoError(t, v.Parse([]byte("0XFFFF")))
	assert.Equal(t, uint64(0xFFFF), x)

	assert.ErrorIs(t, v.Parse([]byte("0x10000")), ErrRange)
	assert.ErrorIs(t, v.Parse([]byte("1AF")), ErrSyntax)
	assert.ErrorIs(t, v.Parse([]byte("0x")), ErrSyntax)
	assert.ErrorIs(t, v.Parse([]byte("0xZZ")), ErrSyntax)
	assert.ErrorIs(t, v.Parse(nil), ErrEmptyValue)
	assert.Equal(t, uint64(0xFFFF), x)

	x = 0xAB
	out := make([]byte, 8)
	n, err := v.Format(out)
	require.NoError(t, err)
	assert.Equal(t, "0x00AB", string(out[:n]))

	_, err = v.Format(make([]byte, 5))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestBufVar(t *testing.T) {
	target := make([]byte, 4)
	var n int
	v := BufVar{Target: target, Len: &n}

	require.NoError(t, v.Parse([]byte("DEadbe")))
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE}, target[:n])

	assert.ErrorIs(t, v.Parse([]byte("ABC")), ErrSyntax)
	assert.ErrorIs(t, v.Parse([]byte("0102030405")), ErrValueTooLong)
	assert.ErrorIs(t, v.Parse([]byte("GG")), ErrSyntax)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE}, target[:n])

	out := make([]byte, 8)
	w, err := v.Format(out)
	require.NoError(t, err)
	assert.Equal(t, "DEADBE", string(out[:w]))
}

func TestBufVar_FixedSize(t *testing.T) {
	target := make([]byte, 2)
	v := BufVar{Target: target}

	assert.ErrorIs(t, v.Parse([]byte("01")), ErrValueTooLong)
	require.NoError(t, v.Parse([]byte("0102")))
	assert.Equal(t, []byte{0x01, 0x02}, target)

	out := make([]byte, 4)
	w, err := v.Format(out)
	require.NoError(t, err)
	assert.Equal(t, "0102", string(out[:w]))
}

func TestStringVar(t *testing.T) {
	target := make([]byte, 8)
	var n int
	v := StringVar{Target: target, Len: &n}

	require.NoError(t, v.Parse([]byte(`"hi \"x\""`)))
	assert.Equal(t, `hi "x"`, string(target[:n]))

	require.NoError(t, v.Parse([]byte(`"a\\b\nc"`)))
	assert.Equal(t, "a\\b\nc", string(target[:n]))

	require.NoError(t, v.Parse([]byte(`""`)))
	assert.Equal(t, 0, n)

	for _, bad := range []string{`abc`, `"abc`, `"a"b"`, `"bad\q"`, `"trail\"`, `"`} {
		assert.ErrorIs(t, v.Parse([]byte(bad)), ErrSyntax, "input %q", bad)
	}
	assert.ErrorIs(t, v.Parse([]byte(`"123456789"`)), ErrValueTooLong)
	assert.ErrorIs(t, v.Parse(nil), ErrEmptyValue)

	require.NoError(t, v.Parse([]byte(`"q\"\\\n"`)))
	out := make([]byte, 16)
	w, err := v.Format(out)
	require.NoError(t, err)
	assert.Equal(t, `"q\"\\\n"`, string(out[:w]))

	_, err = v.Format(make([]byte, 3))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestStringVar_ZeroTerminated(t *testing.T) {
	target := []byte("XXXXXXXX")
	v := StringVar{Target: target}

	require.NoError(t, v.Parse([]byte(`"abc"`)))
	assert.Equal(t, []byte{'a', 'b', 'c', 0, 0, 0, 0, 0}, target)

	out := make([]byte, 16)
	w, err := v.Format(out)
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(out[:w]))
}

func TestReadVar(t *testing.T) {
	x := int64(12)
	read := ReadVar(IntVar{Target: &x})

	out := make([]byte, 8)
	n, err := read(nil, out)
	require.NoError(t, err)
	assert.Equal(t, "12", string(out[:n]))
}

func TestCommandSupports(t *testing.T) {
	x := int64(0)
	bound := Command{Name: "+V", Var: IntVar{Target: &x}}
	assert.True(t, bound.Supports(OpWrite))
	assert.False(t, bound.Supports(OpRead))
	assert.False(t, bound.Supports(OpExecute))

	var empty Command
	for _, op := range []Operation{OpExecute, OpRead, OpWrite} {
		assert.False(t, empty.Supports(op))
	}
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"+CGMI", "Z", "+", "&F", "S0"} {
		want := name != "&F"
		assert.Equal(t, want, ValidName(name), name)
	}
	assert.False(t, ValidName(""))
	assert.False(t, ValidName("+cgmi"))
}
