package service

import (
	"context"
	"sort"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tomasz-trela/catermetrics/internal/diag"
	pairingdomain "github.com/tomasz-trela/catermetrics/internal/pairing/domain"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

type Service struct {
	log *zap.Logger
}

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

func NewService(p ServiceParam) pairingdomain.Service {
	return &Service{
		log: p.Log.Named("pairing.service"),
	}
}

type pairKey struct {
	a snowflake.ID
	b snowflake.ID
}

// TopPairs counts every unordered course pair appearing together in one
// order item (a < b by course id, so no self-pairs and no double count)
// and returns the limit most frequent pairs with their course names.
func (s *Service) TopPairs(
	ctx context.Context,
	orders []recordstoredomain.OrderSnapshot,
	courses []recordstoredomain.CourseRef,
	limit int,
) (pairingdomain.Report, diag.List, error) {
	var report pairingdomain.Report
	var diags diag.List

	if limit == 0 {
		limit = pairingdomain.DefaultLimit
	}
	if limit < 0 {
		return report, diags, pairingdomain.ErrInvalidLimit
	}
	if err := ctx.Err(); err != nil {
		return report, diags, err
	}

	counts := make(map[pairKey]int)
	for _, order := range orders {
		for _, item := range order.Items {
			// Items with fewer than two courses contribute no pairs.
			for i := 0; i < len(item.Courses); i++ {
				for j := i + 1; j < len(item.Courses); j++ {
					a, b := item.Courses[i].CourseID, item.Courses[j].CourseID
					if a == b {
						continue
					}
					if b < a {
						a, b = b, a
					}
					counts[pairKey{a: a, b: b}]++
				}
			}
		}
	}

	names := make(map[snowflake.ID]string, len(courses))
	for _, c := range courses {
		names[c.ID] = c.Name
	}

	rows := make([]pairingdomain.Row, 0, len(counts))
	for key, freq := range counts {
		rows = append(rows, pairingdomain.Row{
			CourseAID: key.a,
			CourseA:   names[key.a],
			CourseBID: key.b,
			CourseB:   names[key.b],
			Frequency: freq,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Frequency != rows[j].Frequency {
			return rows[i].Frequency > rows[j].Frequency
		}
		if rows[i].CourseAID != rows[j].CourseAID {
			return rows[i].CourseAID < rows[j].CourseAID
		}
		return rows[i].CourseBID < rows[j].CourseBID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	report.Rows = rows

	s.log.Debug("pairing complete", zap.Int("pairs", len(report.Rows)))
	return report, diags, nil
}
