// Package warehouse loads tabular rows into the analytical store. The
// store is organised as dataset → table; both are provisioned on first use
// with a fixed schema, and row inserts report per-row failures instead of
// failing the whole load.
package warehouse

import "context"

// Row is one parsed data row: header name → cell value. Headers absent from
// a short row are absent from the map, not empty strings.
type Row map[string]string

// Schema is the fixed column list applied when the target table is created.
// Every column is a nullable string.
type Schema struct {
	Columns []string
}

// DefaultSchema matches the personal-information CSV exports this system
// ingests.
var DefaultSchema = Schema{Columns: []string{
	"id", "first_name", "last_name", "email", "gender", "ip_address",
}}

// RowError reports one failed row from a bulk insert. Rows not named in the
// error list were inserted successfully.
type RowError struct {
	Index   int
	Message string
}

// Client is the warehouse capability consumed by the tabular pipeline. The
// target schema is fixed at construction so provisioning and inserts cannot
// diverge.
//
// EnsureDataset and EnsureTable are idempotent and race-tolerant: a
// concurrent invocation creating the same dataset or table is success, not
// an error. InsertRows returns data-level row rejections alongside a nil
// error; the error return is reserved for call-level failures (cancelled
// context, unreachable cluster), which must abort the load.
type Client interface {
	EnsureDataset(ctx context.Context) error
	EnsureTable(ctx context.Context) error
	InsertRows(ctx context.Context, rows []Row) ([]RowError, error)
}
