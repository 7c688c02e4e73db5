package accesssvc

import (
	"context"
	logger "log"
	"time"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/bonoaccess/accesscheck/business/eligibility"
	"github.com/bonoaccess/accesscheck/business/holiday"
)

//accessService evaluates requests and hands the resulting access.Evaluation to the publisher.
//Shared by the web service and the nats request listener
type accessService struct {
	log       *logger.Logger
	evaluator *eligibility.Evaluator
	region    holiday.Region
	source    string
	publisher *evaluationPublisher
	metrics   *Metrics
	now       func() time.Time
}

//makeAccessService creates accessService evaluating with lookup, source names the lookup in evaluation records
func makeAccessService(log *logger.Logger,
	lookup holiday.Lookup,
	source string,
	region holiday.Region,
	publisher *evaluationPublisher,
	metrics *Metrics) *accessService {
	metered := &meteredLookup{lookup: lookup, source: source, metrics: metrics}
	return &accessService{
		log:       log,
		evaluator: eligibility.NewEvaluator(metered),
		region:    region,
		source:    source,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

//evaluate validates and decides a request. Only decided requests are published
func (s *accessService) evaluate(ctx context.Context, identity, date, clock string) (*access.Evaluation, error) {
	req, err := eligibility.ParseRequest(identity, date, clock)
	if err != nil {
		return nil, err
	}
	decision, err := s.evaluator.Decide(ctx, req)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementOutcome(decision.Permitted, string(decision.Reason))

	evaluation := &access.Evaluation{
		Identity:      req.Identity.String(),
		Date:          req.Date.String(),
		Time:          req.Time.String(),
		Weekday:       decision.Weekday.String(),
		Permitted:     decision.Permitted,
		Reason:        string(decision.Reason),
		HolidaySource: s.source,
		EvaluatedAt:   s.now().UTC(),
	}
	s.publisher.publish(evaluation)
	return evaluation, nil
}
