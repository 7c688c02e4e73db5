package accesssvc

import (
	"context"
	"encoding/json"
	"fmt"
	logger "log"
	"net/http"
	"sync"
	"time"

	"github.com/bonoaccess/accesscheck/business/data/access"
	"github.com/nats-io/nats.go"
)

// natsRequestTimeout bounds the evaluation of a single nats request
const natsRequestTimeout = 10 * time.Second

//evaluationRequest is the json payload of an evaluation request received over nats
type evaluationRequest struct {
	Identity string `json:"identity"`
	Date     string `json:"date"`
	Time     string `json:"time"`
}

//evaluationReply answers an evaluationRequest, exactly one of Evaluation or Error is set
type evaluationReply struct {
	Evaluation *access.Evaluation `json:"evaluation,omitempty"`
	Error      string             `json:"error,omitempty"`
	Status     int                `json:"status"`
}

//runEvaluationRequestListener starts NATS subscription on requestSubject for evaluationRequest messages.
//Each request with a reply subject is answered with an evaluationReply.
//Ends NATS subscription and returns on shutdownSignal
func runEvaluationRequestListener(
	log *logger.Logger,
	wg *sync.WaitGroup,
	natsConn *nats.Conn,
	service *accessService,
	requestSubject string,
	shutdownSignal chan bool) error {
	ch := make(chan *nats.Msg, 64)
	log.Printf("Subscribing to evaluation requests on subject:%s on nats: %v\n", requestSubject,
		natsConn.Servers())
	sub, err := natsConn.ChanSubscribe(requestSubject, ch)
	if err != nil {
		return fmt.Errorf("unable to establish subscription to nats server: %w", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case msg := <-ch:
				processEvaluationRequestMsg(log, msg, service)
			case <-shutdownSignal:
				log.Printf("ending evaluation request listener on shutdown signal\n")
				log.Printf("unsubscribing to nats\n")
				err := sub.Unsubscribe()
				if err != nil {
					log.Printf("Error unsubscribing to nats:%s", err)
				}
				return
			}
		}
	}()
	return nil
}

//processEvaluationRequestMsg answers the evaluationRequest in msg on its reply subject
func processEvaluationRequestMsg(log *logger.Logger, msg *nats.Msg, service *accessService) {
	if msg.Reply == "" {
		log.Printf("dropping evaluation request without reply subject, payload:%s", string(msg.Data))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), natsRequestTimeout)
	defer cancel()
	err := msg.Respond(answerEvaluationRequest(ctx, log, msg.Data, service))
	if err != nil {
		log.Printf("error responding to evaluation request: %s", err)
	}
}

//answerEvaluationRequest evaluates the json evaluationRequest in data and returns the json evaluationReply
func answerEvaluationRequest(ctx context.Context, log *logger.Logger, data []byte, service *accessService) []byte {
	var reply evaluationReply
	var req evaluationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("error parsing evaluation request: %s, payload:%s", err, string(data))
		reply = evaluationReply{Error: fmt.Sprintf("malformed request: %v", err), Status: http.StatusBadRequest}
	} else if evaluation, err := service.evaluate(ctx, req.Identity, req.Date, req.Time); err != nil {
		reply = evaluationReply{Error: err.Error(), Status: errorStatus(err)}
	} else {
		reply = evaluationReply{Evaluation: evaluation, Status: http.StatusOK}
	}
	jsonData, err := json.Marshal(&reply)
	if err != nil {
		log.Printf("failed to marshal evaluation reply, error:%v", err)
		return []byte(`{"error":"internal error","status":500}`)
	}
	return jsonData
}
