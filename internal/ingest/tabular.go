package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/fpineda/storage-ingest/internal/metrics"
	"github.com/fpineda/storage-ingest/internal/notification"
	"github.com/fpineda/storage-ingest/internal/storage"
	"github.com/fpineda/storage-ingest/internal/warehouse"
)

// TabularPipeline loads delimited text (first line = header) into the
// warehouse, provisioning the dataset and table on first use.
//
// Re-delivering the same object appends duplicate rows: the warehouse
// insert has no natural key to dedupe on. This is a documented limitation,
// not a defect to paper over.
type TabularPipeline struct {
	reader storage.Reader
	wh     warehouse.Client
}

// NewTabularPipeline creates the pipeline loading into wh; the target
// schema is the client's concern.
func NewTabularPipeline(reader storage.Reader, wh warehouse.Client) *TabularPipeline {
	return &TabularPipeline{reader: reader, wh: wh}
}

// Compile-time interface check.
var _ Pipeline = (*TabularPipeline)(nil)

// Process fetches, parses, provisions, and bulk-inserts with row-level
// error reporting. Row errors never fail the invocation.
func (p *TabularPipeline) Process(ctx context.Context, ref notification.ObjectRef) (string, error) {
	raw, err := p.reader.Read(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return "", &FetchError{Bucket: ref.Bucket, Key: ref.Key, Err: err}
	}

	rows := parseRows(raw, ref.Key)

	if err := p.wh.EnsureDataset(ctx); err != nil {
		return "", &UpstreamError{Op: "ensure dataset", Err: err}
	}
	if err := p.wh.EnsureTable(ctx); err != nil {
		return "", &UpstreamError{Op: "ensure table", Err: err}
	}

	if len(rows) == 0 {
		log.Info().Str("key", ref.Key).Msg("No data rows in object")
		return fmt.Sprintf("no data rows in %s", ref.Key), nil
	}

	rowErrs, err := p.wh.InsertRows(ctx, rows)
	if err != nil {
		return "", &UpstreamError{Op: "insert rows", Err: err}
	}

	// Every row-level failure is reported individually; rows not named in
	// the error list were inserted.
	for _, rowErr := range rowErrs {
		log.Error().
			Str("key", ref.Key).
			Int("row", rowErr.Index).
			Str("reason", rowErr.Message).
			Msg("Row rejected by warehouse")
	}

	inserted := len(rows) - len(rowErrs)
	metrics.New(metricsNamespace).
		Dimension("Pipeline", notification.TabularRecord.String()).
		Metric("RowsInserted", float64(inserted), metrics.UnitCount).
		Metric("RowErrors", float64(len(rowErrs)), metrics.UnitCount).
		Property("key", ref.Key).
		Flush()

	log.Info().Str("key", ref.Key).Int("inserted", inserted).Int("rowErrors", len(rowErrs)).Msg("Tabular load complete")
	return fmt.Sprintf("inserted %d of %d rows (%d row errors)", inserted, len(rows), len(rowErrs)), nil
}

// parseRows reads header-first delimited text into row maps. Parsing is
// best-effort: rows that fail to parse are skipped and logged, short rows
// map only the headers they have cells for, and surplus cells are dropped.
func parseRows(raw []byte, key string) []warehouse.Row {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Could not read header line")
		return nil
	}

	var rows []warehouse.Row
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Skipping unparseable row")
			continue
		}
		row := make(warehouse.Row, len(header))
		for i, name := range header {
			if i < len(cells) {
				row[name] = cells[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}
