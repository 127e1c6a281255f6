package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/tomasz-trela/catermetrics/internal/diag"
	"github.com/tomasz-trela/catermetrics/internal/money"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

const (
	// DefaultPopularityLimit caps the popularity leaderboard.
	DefaultPopularityLimit = 20
	// DefaultMinOpinions is the rating-count floor for hidden gems.
	DefaultMinOpinions = 5
	// DefaultGemRating is the average-rating floor for hidden gems.
	DefaultGemRating = 4.0
)

// PopularityRow is one course's order volume.
type PopularityRow struct {
	CourseID        snowflake.ID `json:"course_id"`
	Name            string       `json:"name"`
	TimesOrdered    int          `json:"times_ordered"`
	UniqueCustomers int          `json:"unique_customers"`
}

// ComplaintStatsRow aggregates complaints filed against one course.
type ComplaintStatsRow struct {
	CourseID       snowflake.ID `json:"course_id"`
	Name           string       `json:"name"`
	ComplaintCount int          `json:"complaint_count"`
	Resolved       int          `json:"resolved"`
	Unresolved     int          `json:"unresolved"`
	AverageRefund  money.Money  `json:"average_refund"`
}

// HiddenGemRow is a well-rated course selling below the population median.
type HiddenGemRow struct {
	CourseID      snowflake.ID `json:"course_id"`
	Name          string       `json:"name"`
	AverageRating float64      `json:"average_rating"`
	OpinionCount  int          `json:"opinion_count"`
	TotalSales    int          `json:"total_sales"`
	SalesRank     int          `json:"sales_rank"`
}

// Report bundles the course analytics for one run.
type Report struct {
	Popularity     []PopularityRow     `json:"popularity"`
	ComplaintStats []ComplaintStatsRow `json:"complaint_stats"`
	HiddenGems     []HiddenGemRow      `json:"hidden_gems"`
}

// Service derives per-course analytics from orders, complaints and
// opinions.
type Service interface {
	Analyze(
		ctx context.Context,
		orders []recordstoredomain.OrderSnapshot,
		complaints []recordstoredomain.ComplaintRecord,
		opinions []recordstoredomain.OpinionRecord,
		courses []recordstoredomain.CourseRef,
	) (Report, diag.List, error)
}
