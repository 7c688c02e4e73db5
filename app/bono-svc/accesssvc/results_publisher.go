package accesssvc

import (
	"encoding/json"
	"log"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
)

//evaluationPublisher sends evaluations made by the service to their destinations (such as database and nats)
type evaluationPublisher struct {
	log              *log.Logger
	db               *sqlx.DB
	natsConnection   *nats.Conn
	subject          string
	recordToDatabase bool
	publishOverNats  bool
}

//makeEvaluationPublisher creates evaluationPublisher. A destination is only used when its flag is set
//and its connection is present
func makeEvaluationPublisher(log *log.Logger,
	db *sqlx.DB,
	natsConnection *nats.Conn,
	subject string,
	recordToDatabase bool,
	publishOverNats bool) *evaluationPublisher {
	return &evaluationPublisher{
		log:              log,
		db:               db,
		natsConnection:   natsConnection,
		subject:          subject,
		recordToDatabase: recordToDatabase && db != nil,
		publishOverNats:  publishOverNats && natsConnection != nil,
	}
}

//publish sends access.Evaluation over NATS and records it to the database according to
//publishOverNats and recordToDatabase
func (p *evaluationPublisher) publish(evaluation *access.Evaluation) {
	if p == nil {
		return
	}
	if p.publishOverNats {
		p.sendOverNats(evaluation)
	}
	if p.recordToDatabase {
		p.record(evaluation)
	}
}

func (p *evaluationPublisher) sendOverNats(evaluation *access.Evaluation) {
	jsonData, err := json.Marshal(evaluation)
	if err != nil {
		p.log.Printf("failed to marshal Evaluation in evaluationPublisher.sendOverNats, error:%v", err)
		return
	}
	err = p.natsConnection.Publish(p.subject, jsonData)
	if err != nil {
		p.log.Printf("failed to send Evaluation in evaluationPublisher.sendOverNats, error:%v", err)
	}
}

func (p *evaluationPublisher) record(evaluation *access.Evaluation) {
	err := access.RecordEvaluation(evaluation, p.db)
	if err != nil {
		p.log.Printf("Error saving evaluation %+v. error: %v", evaluation, err)
	}
}

//canQuery reports whether recorded evaluations can be read back
func (p *evaluationPublisher) canQuery() bool {
	return p != nil && p.recordToDatabase
}
