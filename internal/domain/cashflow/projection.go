// Package cashflow derives cash-in / cash-out buckets from payment movements.
// Nothing here is stored; every projection is recomputed from the ledger.
package cashflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Granularity is the bucket size of a projection
type Granularity string

const (
	Daily     Granularity = "DAY"
	Weekly    Granularity = "WEEK"
	Monthly   Granularity = "MONTH"
	Quarterly Granularity = "QUARTER"
	Yearly    Granularity = "YEAR"
)

// ParseGranularity parses a granularity, case-insensitively. Empty means MONTH.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToUpper(strings.TrimSpace(s))); g {
	case "":
		return Monthly, nil
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return g, nil
	}
	return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("unknown granularity %q", s))
}

// Direction tells whether money came in or went out
type Direction int

const (
	Inflow Direction = iota
	Outflow
)

// Movement is one signed cash movement on a date
type Movement struct {
	Date      time.Time
	Direction Direction
	Amount    decimal.Decimal
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange normalizes both ends to UTC midnight and validates the range.
// maxDays of 0 disables the length check.
func NewDateRange(from, to time.Time, maxDays int) (DateRange, error) {
	r := DateRange{From: day(from), To: day(to)}
	if r.From.IsZero() || r.To.IsZero() {
		return DateRange{}, shared.NewDomainError(shared.CodeInvalidInput, "from and to are required")
	}
	if r.To.Before(r.From) {
		return DateRange{}, shared.NewDomainError(shared.CodeInvalidInput, "from must not be after to")
	}
	if maxDays > 0 && r.Days() > maxDays {
		return DateRange{}, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("date range cannot exceed %d days", maxDays))
	}
	return r, nil
}

// Days returns the number of days in the range, both ends included
func (r DateRange) Days() int {
	return int(r.To.Sub(r.From).Hours()/24) + 1
}

// Contains reports whether t falls on a day inside the range
func (r DateRange) Contains(t time.Time) bool {
	d := day(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// Bucket is the cash movement of one period
type Bucket struct {
	Period      string          `json:"period"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	CashIn      decimal.Decimal `json:"cash_in"`
	CashOut     decimal.Decimal `json:"cash_out"`
	Net         decimal.Decimal `json:"net"`
}

// Totals sums all buckets of a projection
type Totals struct {
	CashIn  decimal.Decimal `json:"cash_in"`
	CashOut decimal.Decimal `json:"cash_out"`
	Net     decimal.Decimal `json:"net"`
}

// Project buckets movements over the range. Every period of the range gets a
// bucket, zero when nothing moved. Movements outside the range are ignored.
func Project(r DateRange, g Granularity, movements []Movement) ([]Bucket, Totals) {
	buckets := make([]Bucket, 0)
	index := make(map[int64]int)

	for start := PeriodStart(r.From, g); !start.After(r.To); start = nextPeriod(start, g) {
		end := nextPeriod(start, g).AddDate(0, 0, -1)
		b := Bucket{
			Period:      Label(start, g),
			PeriodStart: maxTime(start, r.From),
			PeriodEnd:   minTime(end, r.To),
			CashIn:      decimal.Zero,
			CashOut:     decimal.Zero,
			Net:         decimal.Zero,
		}
		index[start.Unix()] = len(buckets)
		buckets = append(buckets, b)
	}

	totals := Totals{CashIn: decimal.Zero, CashOut: decimal.Zero, Net: decimal.Zero}
	for _, m := range movements {
		if !r.Contains(m.Date) {
			continue
		}
		i, ok := index[PeriodStart(m.Date, g).Unix()]
		if !ok {
			continue
		}
		if m.Direction == Inflow {
			buckets[i].CashIn = buckets[i].CashIn.Add(m.Amount)
			totals.CashIn = totals.CashIn.Add(m.Amount)
		} else {
			buckets[i].CashOut = buckets[i].CashOut.Add(m.Amount)
			totals.CashOut = totals.CashOut.Add(m.Amount)
		}
	}

	for i := range buckets {
		buckets[i].Net = buckets[i].CashIn.Sub(buckets[i].CashOut)
	}
	totals.Net = totals.CashIn.Sub(totals.CashOut)
	return buckets, totals
}

// PeriodStart returns the first day of the period containing t.
// Weeks start on Monday.
func PeriodStart(t time.Time, g Granularity) time.Time {
	d := day(t)
	switch g {
	case Daily:
		return d
	case Weekly:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case Quarterly:
		q := (int(d.Month()) - 1) / 3
		return time.Date(d.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	case Yearly:
		return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Label names the period starting at start
func Label(start time.Time, g Granularity) string {
	switch g {
	case Daily:
		return start.Format("2006-01-02")
	case Weekly:
		y, w := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", start.Year(), (int(start.Month())-1)/3+1)
	case Yearly:
		return fmt.Sprintf("%d", start.Year())
	default:
		return start.Format("2006-01")
	}
}

func nextPeriod(start time.Time, g Granularity) time.Time {
	switch g {
	case Daily:
		return start.AddDate(0, 0, 1)
	case Weekly:
		return start.AddDate(0, 0, 7)
	case Quarterly:
		return start.AddDate(0, 3, 0)
	case Yearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}

func day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
