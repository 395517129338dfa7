package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/domain/models"
	"github.com/alumnilink/backend/internal/repository/mongodb"
	"github.com/alumnilink/backend/internal/repository/sheets"
)

const (
	monthlyLookback = 6
	yearlyLookback  = 6
)

// Service produces donation statistics for dashboards and exports monthly
// summaries to the alumni office spreadsheet. Statistics are recomputed from
// the full ledger on every request.
type Service struct {
	donations mongodb.DonationRepository
	exporter  sheets.Exporter
	logger    *zap.Logger
}

// NewService wires a reporting service. The exporter may be nil when the
// spreadsheet integration is not configured.
func NewService(donations mongodb.DonationRepository, exporter sheets.Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{donations: donations, exporter: exporter, logger: logger}
}

type monthKey struct {
	year  int
	month int
}

func floorMonth(t time.Time) monthKey {
	return monthKey{year: t.Year(), month: int(t.Month())}
}

func (k monthKey) before(other monthKey) bool {
	if k.year != other.year {
		return k.year < other.year
	}
	return k.month < other.month
}

// DonationReport scans the ledger and buckets settled cash donations into
// monthly, yearly and cumulative statistics relative to now.
func (s *Service) DonationReport(ctx context.Context, now time.Time) (*models.DonationReport, error) {
	donations, err := s.donations.GetAllDonations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load donation ledger: %w", err)
	}

	windowStart := floorMonth(now.AddDate(0, -(monthlyLookback - 1), 0))
	windowEnd := floorMonth(now)

	monthly := make(map[monthKey]int64)
	yearly := make(map[int]int64)

	for _, d := range donations {
		if !d.CountsTowardReports() {
			continue
		}

		key := floorMonth(d.ReceiveDate)
		yearly[key.year] += d.MonetaryValue

		if key.before(windowStart) || windowEnd.before(key) {
			continue
		}
		monthly[key] += d.MonetaryValue
	}

	report := &models.DonationReport{
		MonthlyStats:    make([]models.MonthlyStat, 0, len(monthly)),
		YearlyStats:     make([]models.YearlyStat, 0, yearlyLookback),
		CumulativeStats: make([]models.CumulativeStat, 0, len(monthly)),
	}

	keys := make([]monthKey, 0, len(monthly))
	for k := range monthly {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })

	var running int64
	for _, k := range keys {
		report.MonthlyStats = append(report.MonthlyStats, models.MonthlyStat{
			Year:           k.year,
			Month:          k.month,
			AmtOfDonations: monthly[k],
		})
		running += monthly[k]
		report.CumulativeStats = append(report.CumulativeStats, models.CumulativeStat{
			Year:                k.year,
			Month:               k.month,
			CumulativeThisMonth: running,
		})
	}

	// Always six yearly entries, zero-filled for years without donations.
	for year := now.Year() - (yearlyLookback - 1); year <= now.Year(); year++ {
		report.YearlyStats = append(report.YearlyStats, models.YearlyStat{
			Year:           year,
			AmtOfDonations: yearly[year],
		})
	}

	return report, nil
}

// ExportMonthlySummary appends the most recently closed month's totals to
// the reporting spreadsheet. Invoked by the scheduler on the first of each
// month.
func (s *Service) ExportMonthlySummary(ctx context.Context, now time.Time) error {
	if s.exporter == nil {
		s.logger.Debug("report exporter not configured, skipping monthly export")
		return nil
	}

	donations, err := s.donations.GetAllDonations(ctx)
	if err != nil {
		return fmt.Errorf("load donation ledger: %w", err)
	}

	// The job runs on the first of the month; export the month that just closed.
	current := floorMonth(now.AddDate(0, -1, 0))
	row := sheets.MonthlySummaryRow{Year: current.year, Month: current.month}

	for _, d := range donations {
		if !d.CountsTowardReports() {
			continue
		}
		row.RunningTotal += d.MonetaryValue
		if floorMonth(d.ReceiveDate) == current {
			row.MonthTotal += d.MonetaryValue
			row.DonationCount++
		}
	}

	if err := s.exporter.AppendMonthlySummary(ctx, row); err != nil {
		return fmt.Errorf("export monthly summary: %w", err)
	}

	s.logger.Info("monthly donation summary exported",
		zap.Int("year", row.Year), zap.Int("month", row.Month),
		zap.Int64("month_total", row.MonthTotal))
	return nil
}
