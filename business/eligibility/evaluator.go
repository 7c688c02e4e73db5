// Package eligibility decides whether a person may withdraw the subsidy payment at a given date and time.
//
// The decision is an ordered rule chain, the first matching rule wins:
//  1. holidays are unrestricted
//  2. exempt identities (diplomatic, foreign, corporate) are unrestricted
//  3. times outside the business hour bands are unrestricted
//  4. otherwise the identity's last digit must not be restricted on the date's weekday
package eligibility

import (
	"context"
	"fmt"
	"time"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/bonoaccess/accesscheck/business/holiday"
)

// Reason names the rule that decided an evaluation
type Reason string

const (
	ReasonHoliday              Reason = "holiday"
	ReasonExemptIdentity       Reason = "exempt_identity"
	ReasonOutsideBusinessHours Reason = "outside_business_hours"
	ReasonDigitUnrestricted    Reason = "digit_unrestricted"
	ReasonDigitRestricted      Reason = "digit_restricted"
)

// Request holds validated evaluation inputs
type Request struct {
	Identity access.IdentityNumber
	Date     access.CalendarDate
	Time     access.ClockTime
}

// ParseRequest validates the raw inputs, returning the first access.ValidationError encountered
func ParseRequest(identity, date, clock string) (Request, error) {
	id, err := access.ParseIdentityNumber(identity)
	if err != nil {
		return Request{}, err
	}
	d, err := access.ParseCalendarDate(date)
	if err != nil {
		return Request{}, err
	}
	c, err := access.ParseClockTime(clock)
	if err != nil {
		return Request{}, err
	}
	return Request{Identity: id, Date: d, Time: c}, nil
}

// Decision is the outcome of an evaluation
type Decision struct {
	Permitted bool
	Reason    Reason
	Weekday   time.Weekday
}

// Evaluator applies the rule chain. It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	lookup holiday.Lookup
}

// NewEvaluator creates an Evaluator answering holiday status from lookup
func NewEvaluator(lookup holiday.Lookup) *Evaluator {
	return &Evaluator{lookup: lookup}
}

// Evaluate validates identity (ten digits), date (YYYY/MM/DD) and clock (HH:MM) then reports whether
// the withdrawal is permitted.
// Validation errors are returned before any rule runs, holiday lookup errors are returned unchanged.
func (e *Evaluator) Evaluate(ctx context.Context, identity, date, clock string) (bool, error) {
	req, err := ParseRequest(identity, date, clock)
	if err != nil {
		return false, err
	}
	decision, err := e.Decide(ctx, req)
	if err != nil {
		return false, err
	}
	return decision.Permitted, nil
}

// Decide applies the rule chain to a validated request
func (e *Evaluator) Decide(ctx context.Context, req Request) (Decision, error) {
	weekday := req.Date.Weekday()
	permit := func(reason Reason) (Decision, error) {
		return Decision{Permitted: true, Reason: reason, Weekday: weekday}, nil
	}

	// Rule 1: holidays
	isHoliday, err := e.lookup.IsHoliday(ctx, req.Date)
	if err != nil {
		return Decision{}, err
	}
	if isHoliday {
		return permit(ReasonHoliday)
	}

	// Rule 2: exempt identities
	if req.Identity.Exempt() {
		return permit(ReasonExemptIdentity)
	}

	// Rule 3: restrictions only apply during business hours
	if !InBusinessHours(req.Time) {
		return permit(ReasonOutsideBusinessHours)
	}

	// Rule 4: weekday restriction on the last digit
	digit, ok := req.Identity.LastDigit()
	if !ok {
		return Decision{}, fmt.Errorf("identity %s has no trailing digit", req.Identity)
	}
	if IsRestricted(weekday, digit) {
		return Decision{Permitted: false, Reason: ReasonDigitRestricted, Weekday: weekday}, nil
	}
	return permit(ReasonDigitUnrestricted)
}
