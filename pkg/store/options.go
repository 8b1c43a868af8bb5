package store

// Filter holds column equality conditions keyed by column name.
type Filter map[string]any

func (f Filter) has(column string) bool {
	_, ok := f[column]
	return ok
}

type condition struct {
	query string
	args  []any
}

type options struct {
	withDeleted bool
	orders      []string
	limit       int
	offset      int
	selects     []string
	conds       []condition
}

// Option tunes a single store call.
type Option func(*options)

// WithDeleted includes soft-deleted rows in a read.
func WithDeleted() Option {
	return func(o *options) { o.withDeleted = true }
}

// OrderBy appends an ORDER BY expression such as "risk_score desc".
func OrderBy(order string) Option {
	return func(o *options) { o.orders = append(o.orders, order) }
}

func Limit(n int) Option {
	return func(o *options) { o.limit = n }
}

func Offset(n int) Option {
	return func(o *options) { o.offset = n }
}

// Select restricts the columns loaded by a read.
func Select(columns ...string) Option {
	return func(o *options) { o.selects = append(o.selects, columns...) }
}

// Where adds a free-form condition. It is always combined with the tenant
// predicate and can only narrow a query.
func Where(query string, args ...any) Option {
	return func(o *options) { o.conds = append(o.conds, condition{query: query, args: args}) }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
