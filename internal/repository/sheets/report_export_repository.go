package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/alumnilink/backend/internal/config"
)

const donationSummaryRange = "Donations!A:E"

// MonthlySummaryRow is one exported line of the alumni office spreadsheet.
type MonthlySummaryRow struct {
	Year          int
	Month         int
	MonthTotal    int64
	RunningTotal  int64
	DonationCount int
}

// Exporter appends donation summaries to the shared reporting spreadsheet.
type Exporter interface {
	AppendMonthlySummary(ctx context.Context, row MonthlySummaryRow) error
}

// ReportExportRepository implements Exporter using the official Google Sheets API.
type ReportExportRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewReportExportRepository builds a Google Sheets backed exporter instance.
func NewReportExportRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*ReportExportRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &ReportExportRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendMonthlySummary appends one summary row to the donations sheet.
func (r *ReportExportRepository) AppendMonthlySummary(ctx context.Context, row MonthlySummaryRow) error {
	values := []interface{}{
		fmt.Sprintf("%04d-%02d", row.Year, row.Month),
		row.MonthTotal,
		row.RunningTotal,
		row.DonationCount,
		time.Now().Format(time.RFC3339),
	}
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, donationSummaryRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append summary row into range %s: %w", donationSummaryRange, err)
	}

	r.logger.Debug("monthly summary appended to sheet",
		zap.Int("year", row.Year), zap.Int("month", row.Month))
	return nil
}
