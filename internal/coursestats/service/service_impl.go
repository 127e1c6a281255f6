package service

import (
	"context"
	"math"
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	coursestatsdomain "github.com/tomasz-trela/catermetrics/internal/coursestats/domain"
	"github.com/tomasz-trela/catermetrics/internal/diag"
	"github.com/tomasz-trela/catermetrics/internal/money"
	"github.com/tomasz-trela/catermetrics/internal/ranking"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

type Service struct {
	log *zap.Logger
}

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

func NewService(p ServiceParam) coursestatsdomain.Service {
	return &Service{
		log: p.Log.Named("coursestats.service"),
	}
}

// Analyze runs the three per-course aggregations over one snapshot set.
func (s *Service) Analyze(
	ctx context.Context,
	orders []recordstoredomain.OrderSnapshot,
	complaints []recordstoredomain.ComplaintRecord,
	opinions []recordstoredomain.OpinionRecord,
	courses []recordstoredomain.CourseRef,
) (coursestatsdomain.Report, diag.List, error) {
	var report coursestatsdomain.Report
	var diags diag.List

	if err := ctx.Err(); err != nil {
		return report, diags, err
	}

	names := make(map[snowflake.ID]string, len(courses))
	for _, c := range courses {
		names[c.ID] = c.Name
	}

	sales, buyers := courseSales(orders)

	report.Popularity = popularity(names, sales, buyers)
	report.ComplaintStats = complaintStats(courses, complaints)
	report.HiddenGems = hiddenGems(names, sales, opinions)

	s.log.Debug("course analytics complete",
		zap.Int("popular", len(report.Popularity)),
		zap.Int("gems", len(report.HiddenGems)),
	)
	return report, diags, nil
}

// courseSales counts line occurrences and distinct buyers per course.
func courseSales(orders []recordstoredomain.OrderSnapshot) (map[snowflake.ID]int, map[snowflake.ID]map[snowflake.ID]struct{}) {
	sales := make(map[snowflake.ID]int)
	buyers := make(map[snowflake.ID]map[snowflake.ID]struct{})
	for _, order := range orders {
		for _, item := range order.Items {
			for _, line := range item.Courses {
				sales[line.CourseID]++
				set := buyers[line.CourseID]
				if set == nil {
					set = make(map[snowflake.ID]struct{})
					buyers[line.CourseID] = set
				}
				set[order.CustomerID] = struct{}{}
			}
		}
	}
	return sales, buyers
}

func popularity(
	names map[snowflake.ID]string,
	sales map[snowflake.ID]int,
	buyers map[snowflake.ID]map[snowflake.ID]struct{},
) []coursestatsdomain.PopularityRow {
	rows := make([]coursestatsdomain.PopularityRow, 0, len(sales))
	for id, count := range sales {
		rows = append(rows, coursestatsdomain.PopularityRow{
			CourseID:        id,
			Name:            names[id],
			TimesOrdered:    count,
			UniqueCustomers: len(buyers[id]),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TimesOrdered != rows[j].TimesOrdered {
			return rows[i].TimesOrdered > rows[j].TimesOrdered
		}
		if rows[i].UniqueCustomers != rows[j].UniqueCustomers {
			return rows[i].UniqueCustomers > rows[j].UniqueCustomers
		}
		return rows[i].Name < rows[j].Name
	})

	if len(rows) > coursestatsdomain.DefaultPopularityLimit {
		rows = rows[:coursestatsdomain.DefaultPopularityLimit]
	}
	return rows
}

// complaintStats covers the whole catalog: courses nobody complained
// about report zero counts and a zero average refund.
func complaintStats(
	courses []recordstoredomain.CourseRef,
	complaints []recordstoredomain.ComplaintRecord,
) []coursestatsdomain.ComplaintStatsRow {
	type accum struct {
		count    int
		resolved int
		refunds  []money.Money
	}
	accums := make(map[snowflake.ID]*accum)
	for _, c := range complaints {
		acc := accums[c.CourseID]
		if acc == nil {
			acc = &accum{}
			accums[c.CourseID] = acc
		}
		acc.count++
		if c.ResolvedAt != nil {
			acc.resolved++
		}
		if c.RefundAmount != nil {
			acc.refunds = append(acc.refunds, *c.RefundAmount)
		}
	}

	rows := make([]coursestatsdomain.ComplaintStatsRow, 0, len(courses))
	for _, course := range courses {
		row := coursestatsdomain.ComplaintStatsRow{
			CourseID:      course.ID,
			Name:          course.Name,
			AverageRefund: money.Zero,
		}
		if acc := accums[course.ID]; acc != nil {
			row.ComplaintCount = acc.count
			row.Resolved = acc.resolved
			row.Unresolved = acc.count - acc.resolved
			if len(acc.refunds) > 0 {
				total := money.Sum(acc.refunds...)
				avg, err := total.Div(decimal.NewFromInt(int64(len(acc.refunds))))
				if err == nil {
					row.AverageRefund = avg
				}
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ComplaintCount != rows[j].ComplaintCount {
			return rows[i].ComplaintCount < rows[j].ComplaintCount
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// hiddenGems surfaces courses rated at least DefaultGemRating by at
// least DefaultMinOpinions customers whose sales sit in the bottom half
// of the dense sales ranking.
func hiddenGems(
	names map[snowflake.ID]string,
	sales map[snowflake.ID]int,
	opinions []recordstoredomain.OpinionRecord,
) []coursestatsdomain.HiddenGemRow {
	type rated struct {
		id    snowflake.ID
		sum   int
		count int
	}
	ratedByID := make(map[snowflake.ID]*rated)
	for _, op := range opinions {
		r := ratedByID[op.CourseID]
		if r == nil {
			r = &rated{id: op.CourseID}
			ratedByID[op.CourseID] = r
		}
		r.sum += op.Rating
		r.count++
	}

	candidates := make([]*rated, 0, len(ratedByID))
	for _, r := range ratedByID {
		if r.count >= coursestatsdomain.DefaultMinOpinions {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(a, b int) bool {
		return candidates[a].id < candidates[b].id
	})

	saleCounts := make([]decimal.Decimal, len(candidates))
	for i, r := range candidates {
		saleCounts[i] = decimal.NewFromInt(int64(sales[r.id]))
	}
	ranks := ranking.DenseRank(saleCounts, ranking.Descending)
	maxRank := 0
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}

	var rows []coursestatsdomain.HiddenGemRow
	for i, r := range candidates {
		avg := round2(float64(r.sum) / float64(r.count))
		if avg < coursestatsdomain.DefaultGemRating {
			continue
		}
		// Bottom half of the sales ranking = selling worse than median.
		if float64(ranks[i]) <= float64(maxRank)/2 {
			continue
		}
		rows = append(rows, coursestatsdomain.HiddenGemRow{
			CourseID:      r.id,
			Name:          names[r.id],
			AverageRating: avg,
			OpinionCount:  r.count,
			TotalSales:    sales[r.id],
			SalesRank:     ranks[i],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AverageRating != rows[j].AverageRating {
			return rows[i].AverageRating > rows[j].AverageRating
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
