package query

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// StatusAll is the filter value meaning "no status restriction". It is
// never emitted as a query parameter.
const StatusAll = "all"

// Filters describes the review search criteria. Zero values mean the
// corresponding restriction is absent and its parameter is omitted.
type Filters struct {
	// ReviewRequestedBy restricts to tasks whose review was requested by
	// this user (task owner).
	ReviewRequestedBy int64

	// ReviewedBy restricts to tasks reviewed by this user.
	ReviewedBy int64

	// Challenge restricts to a single challenge id.
	Challenge int64

	// Project restricts to a single project id.
	Project int64

	// Status restricts by task status. "all" and "" are not emitted.
	Status string

	// ReviewStatus restricts by review status. "all" and "" are not emitted.
	ReviewStatus string

	// ReviewedAt restricts to a single day. Both startDate and endDate are
	// set to this date.
	ReviewedAt *time.Time
}

// BoundingBox is a geographic search window.
type BoundingBox struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

// String renders the box in the server's left,bottom,right,top form.
func (b BoundingBox) String() string {
	coords := []float64{b.Left, b.Bottom, b.Right, b.Top}
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = strconv.FormatFloat(c, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// BuildSearchParameters maps review search criteria onto the flat
// parameter keys the server expects. Pure and total: absent or false
// inputs simply omit their key, and no input combination is an error.
//
// The emitted key set is a server compatibility contract and must not
// change:
//
//	o         review requested by (user id)
//	r         reviewed by (user id)
//	cs        challenge id
//	ps        project id
//	tStatus   task status, unless "all"
//	trStatus  review status, unless "all"
//	startDate / endDate   reviewed-at day, both set to the same YYYY-MM-DD
//	tbb       bounding box, left,bottom,right,top
//	onlySaved saved challenges only
func BuildSearchParameters(filters Filters, box *BoundingBox, savedChallengesOnly bool) map[string]string {
	params := make(map[string]string)

	if filters.ReviewRequestedBy != 0 {
		params["o"] = strconv.FormatInt(filters.ReviewRequestedBy, 10)
	}
	if filters.ReviewedBy != 0 {
		params["r"] = strconv.FormatInt(filters.ReviewedBy, 10)
	}
	if filters.Challenge != 0 {
		params["cs"] = strconv.FormatInt(filters.Challenge, 10)
	}
	if filters.Project != 0 {
		params["ps"] = strconv.FormatInt(filters.Project, 10)
	}
	if filters.Status != "" && filters.Status != StatusAll {
		params["tStatus"] = filters.Status
	}
	if filters.ReviewStatus != "" && filters.ReviewStatus != StatusAll {
		params["trStatus"] = filters.ReviewStatus
	}
	if filters.ReviewedAt != nil {
		// The filter represents a single day, not a range.
		day := filters.ReviewedAt.Format("2006-01-02")
		params["startDate"] = day
		params["endDate"] = day
	}
	if box != nil {
		params["tbb"] = box.String()
	}
	if savedChallengesOnly {
		params["onlySaved"] = "true"
	}

	return params
}

// ListKind names one of the three review task lists.
type ListKind string

const (
	// KindToBeReviewed is the list of tasks awaiting review.
	KindToBeReviewed ListKind = "toBeReviewed"

	// KindReviewedByMe is the list of tasks the current user has reviewed.
	KindReviewedByMe ListKind = "reviewedByMe"

	// KindMyReviewedTasks is the list of the user's own tasks that were
	// reviewed by others.
	KindMyReviewedTasks ListKind = "myReviewedTasks"
)

// ResolveReviewTypeCode maps a list kind to its server-facing type code.
// Unrecognized kinds deliberately fall through to the myReviewedTasks
// code; the server treats 3 as the safe default and existing callers
// depend on that.
func ResolveReviewTypeCode(kind ListKind) int {
	switch kind {
	case KindToBeReviewed:
		return 1
	case KindReviewedByMe:
		return 2
	default:
		return 3
	}
}

// SortCriteria describes the ordering for the claim-next-task retrieval.
type SortCriteria struct {
	// SortBy is the field to order by, in the client's camelCase form.
	SortBy string

	// Direction is "ASC" or "DESC".
	Direction string
}

// BuildSortParameters maps sort criteria onto the sort/order parameter
// pair. A nil criteria or empty fields default to no sort key and
// descending order. Sort keys are emitted as snake_case tokens.
func BuildSortParameters(criteria *SortCriteria) map[string]string {
	sortBy := ""
	direction := "DESC"
	if criteria != nil {
		sortBy = criteria.SortBy
		if criteria.Direction != "" {
			direction = criteria.Direction
		}
	}
	return map[string]string{
		"sort":  snakeCase(sortBy),
		"order": direction,
	}
}

// snakeCase converts a camelCase field name to its snake_case token.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
