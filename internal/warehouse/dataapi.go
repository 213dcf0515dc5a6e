package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rdsdata"
	rdsdatatypes "github.com/aws/aws-sdk-go-v2/service/rdsdata/types"
	"github.com/rs/zerolog/log"
)

// DataAPI is the slice of the RDS Data API client used by DataAPIClient.
type DataAPI interface {
	ExecuteStatement(ctx context.Context, params *rdsdata.ExecuteStatementInput, optFns ...func(*rdsdata.Options)) (*rdsdata.ExecuteStatementOutput, error)
}

// Config identifies the Aurora cluster and the dataset/table this client
// loads into. Identifiers are explicit constructor input, never inline
// constants. Schema defaults to DefaultSchema; the same column list drives
// both table provisioning and insert parameter binding.
type Config struct {
	ClusterARN string
	SecretARN  string
	Database   string
	Dataset    string
	Table      string
	Schema     Schema
}

// DataAPIClient implements Client over the Aurora Serverless Data API.
// Datasets map to Postgres schemas.
type DataAPIClient struct {
	client DataAPI
	cfg    Config
}

// Compile-time interface check.
var _ Client = (*DataAPIClient)(nil)

// NewDataAPIClient creates a warehouse client for the configured cluster.
func NewDataAPIClient(client DataAPI, cfg Config) *DataAPIClient {
	if len(cfg.Schema.Columns) == 0 {
		cfg.Schema = DefaultSchema
	}
	return &DataAPIClient{client: client, cfg: cfg}
}

// Table returns the fully qualified target table name.
func (c *DataAPIClient) Table() string {
	return c.cfg.Dataset + "." + c.cfg.Table
}

func (c *DataAPIClient) exec(ctx context.Context, sql string, params []rdsdatatypes.SqlParameter) error {
	_, err := c.client.ExecuteStatement(ctx, &rdsdata.ExecuteStatementInput{
		ResourceArn: aws.String(c.cfg.ClusterARN),
		SecretArn:   aws.String(c.cfg.SecretARN),
		Database:    aws.String(c.cfg.Database),
		Sql:         aws.String(sql),
		Parameters:  params,
	})
	return err
}

// EnsureDataset provisions the dataset schema. IF NOT EXISTS plus
// already-exists tolerance makes the check-and-create race between
// concurrent invocations benign.
func (c *DataAPIClient) EnsureDataset(ctx context.Context) error {
	sql := fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, quoteIdent(c.cfg.Dataset))
	if err := c.exec(ctx, sql, nil); err != nil {
		if isAlreadyExists(err) {
			log.Debug().Str("dataset", c.cfg.Dataset).Msg("Dataset created concurrently — treating as success")
			return nil
		}
		return fmt.Errorf("ensure dataset %s: %w", c.cfg.Dataset, err)
	}
	return nil
}

// EnsureTable provisions the target table with the configured schema. The
// schema is only applied at creation; existing tables are never altered.
func (c *DataAPIClient) EnsureTable(ctx context.Context) error {
	cols := make([]string, len(c.cfg.Schema.Columns))
	for i, col := range c.cfg.Schema.Columns {
		cols[i] = quoteIdent(col) + " TEXT NULL"
	}
	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (%s)`,
		quoteIdent(c.cfg.Dataset), quoteIdent(c.cfg.Table), strings.Join(cols, ", "))
	if err := c.exec(ctx, sql, nil); err != nil {
		if isAlreadyExists(err) {
			log.Debug().Str("table", c.Table()).Msg("Table created concurrently — treating as success")
			return nil
		}
		return fmt.Errorf("ensure table %s: %w", c.Table(), err)
	}
	return nil
}

// InsertRows loads all rows, one parameterized INSERT per row, and collects
// per-row failures: data-level statement rejections and rows carrying
// headers outside the configured schema. A call-level failure (cancelled
// context, cluster unreachable, service fault) aborts the load and is
// returned as an error so the invocation fails and the notification is
// redelivered.
func (c *DataAPIClient) InsertRows(ctx context.Context, rows []Row) ([]RowError, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	known := make(map[string]bool, len(c.cfg.Schema.Columns))
	colNames := make([]string, len(c.cfg.Schema.Columns))
	placeholders := make([]string, len(c.cfg.Schema.Columns))
	for i, col := range c.cfg.Schema.Columns {
		known[col] = true
		colNames[i] = quoteIdent(col)
		placeholders[i] = ":" + col
	}
	sql := fmt.Sprintf(`INSERT INTO %s.%s (%s) VALUES (%s)`,
		quoteIdent(c.cfg.Dataset), quoteIdent(c.cfg.Table),
		strings.Join(colNames, ", "), strings.Join(placeholders, ", "))

	var rowErrs []RowError
	for i, row := range rows {
		if unknown := unknownColumns(row, known); len(unknown) > 0 {
			rowErrs = append(rowErrs, RowError{
				Index:   i,
				Message: "unknown columns: " + strings.Join(unknown, ", "),
			})
			continue
		}

		params := make([]rdsdatatypes.SqlParameter, len(c.cfg.Schema.Columns))
		for j, col := range c.cfg.Schema.Columns {
			if value, ok := row[col]; ok {
				params[j] = rdsdatatypes.SqlParameter{
					Name:  aws.String(col),
					Value: &rdsdatatypes.FieldMemberStringValue{Value: value},
				}
			} else {
				params[j] = rdsdatatypes.SqlParameter{
					Name:  aws.String(col),
					Value: &rdsdatatypes.FieldMemberIsNull{Value: true},
				}
			}
		}
		if err := c.exec(ctx, sql, params); err != nil {
			if !isRowError(ctx, err) {
				return nil, fmt.Errorf("insert into %s aborted at row %d: %w", c.Table(), i, err)
			}
			rowErrs = append(rowErrs, RowError{Index: i, Message: err.Error()})
		}
	}
	return rowErrs, nil
}

// isRowError reports whether a statement failure is a data-level rejection
// of this one row (bad value, constraint violation — the Data API wraps
// SQL errors in BadRequestException). Cancelled contexts, statement
// timeouts, and transport or service faults are call-level failures: the
// remaining rows would fail the same way, so the whole load aborts.
func isRowError(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var badReq *rdsdatatypes.BadRequestException
	return errors.As(err, &badReq)
}

// unknownColumns returns the row's headers that are not in the schema,
// sorted for a stable error message.
func unknownColumns(row Row, known map[string]bool) []string {
	var unknown []string
	for col := range row {
		if !known[col] {
			unknown = append(unknown, col)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// quoteIdent double-quotes a SQL identifier. Dataset/table/column names come
// from configuration and the fixed schema, not user input, but quoting keeps
// reserved words and mixed case safe.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// isAlreadyExists matches the duplicate-object errors Postgres raises when
// two invocations race past IF NOT EXISTS into the same create.
func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate key")
}
