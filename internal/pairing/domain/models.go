package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	"github.com/tomasz-trela/catermetrics/internal/diag"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

// DefaultLimit is the top-K cutoff when the caller does not choose one.
const DefaultLimit = 10

// Row is one unordered course pair and how often it was bought together.
type Row struct {
	CourseAID snowflake.ID `json:"course_a_id"`
	CourseA   string       `json:"course_a"`
	CourseBID snowflake.ID `json:"course_b_id"`
	CourseB   string       `json:"course_b"`
	Frequency int          `json:"frequency"`
}

// Report lists the most frequent pairs, highest first.
type Report struct {
	Rows []Row `json:"rows"`
}

// Service counts course co-occurrence inside order items.
type Service interface {
	TopPairs(
		ctx context.Context,
		orders []recordstoredomain.OrderSnapshot,
		courses []recordstoredomain.CourseRef,
		limit int,
	) (Report, diag.List, error)
}

var (
	ErrInvalidLimit = errors.New("invalid_limit")
)
