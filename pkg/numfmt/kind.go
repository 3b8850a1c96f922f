package numfmt

// Kind tells a renderer how a stored value should be displayed.
type Kind int

const (
	KindCompact  Kind = iota // 1.2K
	KindCurrency             // $1.2K
	KindMoney                // $0.03
	KindDecimal              // 0.25
	KindInteger              // 120
)

var kindNames = map[Kind]string{
	KindCompact:  "compact",
	KindCurrency: "currency",
	KindMoney:    "money",
	KindDecimal:  "decimal",
	KindInteger:  "integer",
}

func (k Kind) String() string { return kindNames[k] }

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Render formats v according to k.
func (f *Formatter) Render(k Kind, v float64) string {
	switch k {
	case KindCurrency:
		return f.Currency(v)
	case KindMoney:
		return f.Money(v)
	case KindDecimal:
		return f.Fixed(v, 2)
	case KindInteger:
		return f.Integer(v)
	}
	return f.Compact(v)
}
