package column

import "github.com/dolthub/tracecolumn/sqlvalue"

// Type identifies the physical storage kind of a column. Id columns carry no
// storage at all -- the value at row i is i itself -- and Dummy columns
// exist only as projected-away placeholders; any access to one is a
// programming error.
type Type uint8

const (
	TypeInt32 Type = iota
	TypeUint32
	TypeInt64
	TypeDouble
	TypeString
	TypeID
	TypeDummy
)

func (t Type) String() string {
	switch t {
	case TypeInt32:
		return "int32"
	case TypeUint32:
		return "uint32"
	case TypeInt64:
		return "int64"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeID:
		return "id"
	case TypeDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// SqlType returns the SQL-visible type a value of this column type surfaces
// as. Several physical types collapse onto the same SQL type: Int32, Uint32,
// Int64 and Id all read back as sqlvalue.TypeLong.
func (t Type) SqlType() sqlvalue.Type {
	switch t {
	case TypeInt32, TypeUint32, TypeInt64, TypeID:
		return sqlvalue.TypeLong
	case TypeDouble:
		return sqlvalue.TypeDouble
	case TypeString:
		return sqlvalue.TypeString
	default:
		panic("column: SqlType not allowed on dummy column")
	}
}

// Flags record properties of a column's data used to speed up filtering and
// sorting. Not every combination is valid; see ValidFlags.
type Flags uint32

const (
	FlagNone Flags = 0

	// FlagSorted: Get(0), Get(1), ... is non-decreasing. Unlocks a binary
	// search fast path in FilterInto.
	FlagSorted Flags = 1 << 0

	// FlagNonNull: the column's storage never holds a null. Numeric/string
	// columns carrying this flag can skip presence checks entirely.
	FlagNonNull Flags = 1 << 1

	// FlagHidden: hint to SQL-facing callers that this column is internal
	// plumbing and should not be surfaced to users. Purely informative --
	// the core treats hidden columns like any other.
	FlagHidden Flags = 1 << 2

	// FlagDense: for nullable columns only, selects the padded storage
	// layout that trades space for O(1) Set.
	FlagDense Flags = 1 << 3

	// FlagSetId: sorted, non-null Uint32 column where, for every row i,
	// col[i] <= i, and the first row with value v is row v. Unlocks an
	// equality fast path (filterSetIdEq) that starts at row v and walks only
	// the run of matching rows, avoiding a binary search entirely.
	FlagSetId Flags = 1 << 4
)

// idFlags are the flags implicitly carried by every Id column.
const idFlags = FlagSorted | FlagNonNull

// noCrossTableInherit is the set of flags a column must drop when it is
// rebound to a different table (after a Filter, Sort or Join): the
// invariants they encode do not survive row reordering/removal.
const noCrossTableInherit = FlagSetId

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// ValidFlags reports whether the given flag combination is legal for a
// column of the given type, per the invariants in §3 of the design: Dense
// only matters for nullable columns (harmless but meaningless otherwise),
// and SetId requires Sorted, NonNull and type Uint32.
func ValidFlags(flags Flags, typ Type) bool {
	if flags.Has(FlagSetId) {
		if !flags.Has(FlagSorted) || !flags.Has(FlagNonNull) || typ != TypeUint32 {
			return false
		}
	}
	return true
}

// FilterOp enumerates the comparison operators a Constraint can apply.
type FilterOp uint8

const (
	OpEq FilterOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpIsNull
	OpIsNotNull
	OpGlob
	OpRegex
)

// Constraint is a single filter predicate: column[ColIdx] Op Value.
type Constraint struct {
	ColIdx uint32
	Op     FilterOp
	Value  sqlvalue.Value
}

// Order is a single sort key: column[ColIdx], ascending unless Desc.
type Order struct {
	ColIdx uint32
	Desc   bool
}
