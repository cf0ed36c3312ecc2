package fillbook

import "github.com/shopspring/decimal"

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Price is an exact decimal scalar used for execution prices, point P&L and
// dollar P&L. Binary floating point never touches these values: FIFO matching
// accumulates many small differences and float drift would show up in the
// reported totals.
type Price struct {
	value decimal.Decimal
}

// P builds a Price from any numeric type.
func P[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Price {
	return Price{value: newDecimal(value)}
}

// ParsePrice parses the decimal representation of a price.
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, err
	}
	return Price{value: d}, nil
}

func (p Price) Add(q Price) Price        { return Price{value: p.value.Add(q.value)} }
func (p Price) Sub(q Price) Price        { return Price{value: p.value.Sub(q.value)} }
func (p Price) Mul(q Price) Price        { return Price{value: p.value.Mul(q.value)} }
func (p Price) MulInt(n int64) Price     { return Price{value: p.value.Mul(decimal.NewFromInt(n))} }
func (p Price) DivInt(n int64) Price     { return Price{value: p.value.Div(decimal.NewFromInt(n))} }
func (p Price) Neg() Price               { return Price{value: p.value.Neg()} }
func (p Price) Equal(q Price) bool       { return p.value.Equal(q.value) }
func (p Price) LessThan(q Price) bool    { return p.value.LessThan(q.value) }
func (p Price) GreaterThan(q Price) bool { return p.value.GreaterThan(q.value) }
func (p Price) IsZero() bool             { return p.value.IsZero() }
func (p Price) IsPositive() bool         { return p.value.IsPositive() }
func (p Price) IsNegative() bool         { return p.value.IsNegative() }
func (p Price) String() string           { return p.value.String() }

// Decimal exposes the underlying decimal value, for callers that need to
// hand it to a formatting or persistence layer.
func (p Price) Decimal() decimal.Decimal { return p.value }

// MarshalJSON implements the json.Marshaler interface.
func (p Price) MarshalJSON() ([]byte, error) {
	return p.value.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *Price) UnmarshalJSON(b []byte) error {
	return p.value.UnmarshalJSON(b)
}
