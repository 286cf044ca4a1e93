package engine

// Binding is a typed variable a command can be bound to.
//
// Parse converts a raw write payload and stores it in the target. A failed
// Parse leaves the target unchanged. Format renders the current value in
// the same wire form Parse accepts and returns the number of bytes used.
// Neither method allocates.
type Binding interface {
	Parse(data []byte) error
	Format(out []byte) (int, error)
}

// ReadVar returns a ReadFunc that renders b.
func ReadVar(b Binding) ReadFunc {
	return func(_ *Command, out []byte) (int, error) {
		return b.Format(out)
	}
}

// width normalizes a declared bit width; anything but 8, 16 or 32 is 64.
func width(bits int) uint {
	switch bits {
	case 8, 16, 32:
		return uint(bits)
	default:
		return 64
	}
}

// IntVar is a signed decimal integer: optional sign followed by digits.
type IntVar struct {
	Target *int64
	Bits   int
}

func (v IntVar) Parse(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyValue
	}
	neg := false
	digits := data
	switch data[0] {
	case '-':
		neg = true
		digits = data[1:]
	case '+':
		digits = data[1:]
	}

	limit := uint64(1) << (width(v.Bits) - 1)
	mag, err := parseDecimal(digits, limit)
	if err != nil {
		return err
	}
	if !neg && mag == limit {
		return ErrRange
	}
	if neg {
		*v.Target = -int64(mag)
	} else {
		*v.Target = int64(mag)
	}
	return nil
}

func (v IntVar) Format(out []byte) (int, error) {
	x := *v.Target
	if x >= 0 {
		return formatDecimal(out, uint64(x), false)
	}
	return formatDecimal(out, uint64(-x), true)
}

// UintVar is an unsigned decimal integer.
type UintVar struct {
	Target *uint64
	Bits   int
}

func (v UintVar) Parse(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyValue
	}
	w := width(v.Bits)
	limit := ^uint64(0) >> (64 - w)
	x, err := parseDecimal(data, limit)
	if err != nil {
		return err
	}
	*v.Target = x
	return nil
}

func (v UintVar) Format(out []byte) (int, error) {
	return formatDecimal(out, *v.Target, false)
}

// HexVar is an unsigned integer written as "0x" followed by at most Bits/4
// hexadecimal digits.
type HexVar struct {
	Target *uint64
	Bits   int
}

func (v HexVar) Parse(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyValue
	}
	if len(data) < 3 || data[0] != '0' || (data[1] != 'x' && data[1] != 'X') {
		return ErrSyntax
	}
	digits := data[2:]
	if len(digits) > int(width(v.Bits)/4) {
		return ErrRange
	}
	var x uint64
	for _, c := range digits {
		n, ok := hexValue(c)
		if !ok {
			return ErrSyntax
		}
		x = x<<4 | uint64(n)
	}
	*v.Target = x
	return nil
}

func (v HexVar) Format(out []byte) (int, error) {
	digits := int(width(v.Bits) / 4)
	if len(out) < digits+2 {
		return 0, ErrShortBuffer
	}
	out[0] = '0'
	out[1] = 'x'
	x := *v.Target
	for i := digits + 1; i >= 2; i-- {
		out[i] = hexDigits[x&0x0F]
		x >>= 4
	}
	return digits + 2, nil
}

// BufVar is a byte array written as pairs of hexadecimal digits.
//
// With Len set, Parse accepts up to len(Target) bytes and records the count
// in *Len. Without it, the payload must fill Target exactly.
type BufVar struct {
	Target []byte
	Len    *int
}

func (v BufVar) Parse(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyValue
	}
	if len(data)%2 != 0 {
		return ErrSyntax
	}
	n := len(data) / 2
	if n > len(v.Target) || (v.Len == nil && n != len(v.Target)) {
		return ErrValueTooLong
	}
	for _, c := range data {
		if _, ok := hexValue(c); !ok {
			return ErrSyntax
		}
	}
	for i := 0; i < n; i++ {
		hi, _ := hexValue(data[2*i])
		lo, _ := hexValue(data[2*i+1])
		v.Target[i] = hi<<4 | lo
	}
	if v.Len != nil {
		*v.Len = n
	}
	return nil
}

func (v BufVar) Format(out []byte) (int, error) {
	n := len(v.Target)
	if v.Len != nil {
		n = *v.Len
	}
	if len(out) < 2*n {
		return 0, ErrShortBuffer
	}
	for i := 0; i < n; i++ {
		out[2*i] = hexDigits[v.Target[i]>>4]
		out[2*i+1] = hexDigits[v.Target[i]&0x0F]
	}
	return 2 * n, nil
}

// StringVar is text enclosed in double quotes. Inside the quotes `\\`,
// `\"` and `\n` are recognized escapes.
//
// With Len set, the decoded length is stored in *Len. Without it, the rest
// of Target is zero-filled and Format stops at the first zero byte.
type StringVar struct {
	Target []byte
	Len    *int
}

func (v StringVar) Parse(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyValue
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrSyntax
	}
	body := data[1 : len(data)-1]

	n, err := unquote(body, nil)
	if err != nil {
		return err
	}
	if n > len(v.Target) {
		return ErrValueTooLong
	}
	unquote(body, v.Target)
	if v.Len != nil {
		*v.Len = n
	} else {
		for i := n; i < len(v.Target); i++ {
			v.Target[i] = 0
		}
	}
	return nil
}

func (v StringVar) Format(out []byte) (int, error) {
	s := v.Target
	if v.Len != nil {
		s = s[:*v.Len]
	} else {
		for i, c := range s {
			if c == 0 {
				s = s[:i]
				break
			}
		}
	}

	pos := 0
	put := func(c byte) bool {
		if pos >= len(out) {
			return false
		}
		out[pos] = c
		pos++
		return true
	}

	if !put('"') {
		return 0, ErrShortBuffer
	}
	for _, c := range s {
		ok := true
		switch c {
		case '\\', '"':
			ok = put('\\') && put(c)
		case '\n':
			ok = put('\\') && put('n')
		default:
			ok = put(c)
		}
		if !ok {
			return 0, ErrShortBuffer
		}
	}
	if !put('"') {
		return 0, ErrShortBuffer
	}
	return pos, nil
}

// unquote decodes an escaped string body into dst and returns the decoded
// length. A nil dst only validates and measures.
func unquote(body, dst []byte) (int, error) {
	n := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch c {
		case '"':
			return 0, ErrSyntax
		case '\\':
			i++
			if i >= len(body) {
				return 0, ErrSyntax
			}
			switch body[i] {
			case '\\', '"':
				c = body[i]
			case 'n':
				c = '\n'
			default:
				return 0, ErrSyntax
			}
		}
		if dst != nil {
			dst[n] = c
		}
		n++
	}
	return n, nil
}

const hexDigits = "0123456789ABCDEF"

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// parseDecimal reads an unsigned decimal number no greater than limit.
func parseDecimal(digits []byte, limit uint64) (uint64, error) {
	if len(digits) == 0 {
		return 0, ErrSyntax
	}
	var x uint64
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, ErrSyntax
		}
		d := uint64(c - '0')
		if x > (limit-d)/10 {
			return 0, ErrRange
		}
		x = x*10 + d
	}
	return x, nil
}

func formatDecimal(out []byte, x uint64, neg bool) (int, error) {
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + x%10)
		x /= 10
		if x == 0 {
			break
		}
	}
	n := len(tmp) - i
	if neg {
		n++
	}
	if len(out) < n {
		return 0, ErrShortBuffer
	}
	pos := 0
	if neg {
		out[0] = '-'
		pos = 1
	}
	copy(out[pos:], tmp[i:])
	return n, nil
}
