package access

import (
	"github.com/bonoaccess/accesscheck/foundation/database"
	"github.com/jmoiron/sqlx"
	"time"
)

//Evaluation is the audit record of a single eligibility decision.
//Values are stored as they were validated, primary key consists of EvaluatedAt and Identity
type Evaluation struct {
	Identity string `db:"identity" json:"identity"`
	//Date is the requested withdrawal date in YYYY/MM/DD format
	Date string `db:"date" json:"date"`
	//Time is the requested withdrawal time in HH:MM format
	Time      string `db:"time" json:"time"`
	Weekday   string `db:"weekday" json:"weekday"`
	Permitted bool   `db:"permitted" json:"permitted"`
	//Reason names the rule that decided the evaluation
	Reason string `db:"reason" json:"reason"`
	//HolidaySource identifies the holiday lookup used, "calendar" or "remote"
	HolidaySource string    `db:"holiday_source" json:"holiday_source"`
	EvaluatedAt   time.Time `db:"evaluated_at" json:"evaluated_at"`
}

// RecordEvaluation saves an Evaluation into the evaluation table
func RecordEvaluation(evaluation *Evaluation, db *sqlx.DB) error {
	statementString := "insert into evaluation " +
		"(identity, " +
		"date, " +
		"time, " +
		"weekday, " +
		"permitted, " +
		"reason, " +
		"holiday_source, " +
		"evaluated_at) " +
		"values " +
		"(:identity, " +
		":date, " +
		":time, " +
		":weekday, " +
		":permitted, " +
		":reason, " +
		":holiday_source, " +
		":evaluated_at)"
	statementString = db.Rebind(statementString)
	_, err := db.NamedExec(statementString, evaluation)
	return err
}

// GetEvaluations retrieves the evaluations recorded for identity at or after since, most recent first
func GetEvaluations(db *sqlx.DB, identity string, since time.Time) ([]*Evaluation, error) {
	statementString := "select identity, date, time, weekday, permitted, reason, holiday_source, evaluated_at " +
		"from evaluation where identity = :identity and evaluated_at >= :since " +
		"order by evaluated_at desc"
	rows, err := database.PrepareNamedQueryRowsFromMap(statementString, db, map[string]interface{}{
		"identity": identity,
		"since":    since,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()
	evaluations := make([]*Evaluation, 0)
	for rows.Next() {
		evaluation := Evaluation{}
		if err = rows.StructScan(&evaluation); err != nil {
			return nil, err
		}
		evaluations = append(evaluations, &evaluation)
	}
	return evaluations, rows.Err()
}
