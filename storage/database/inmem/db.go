// Package inmemdb provides mutex-guarded in-memory repositories,
// used as lightweight stand-ins for the Postgres ones in tests.
package inmemdb

import (
	"sync"

	"github.com/gllabs/portal/core/cohort"
	"github.com/gllabs/portal/core/unit"
	"github.com/gllabs/portal/core/user"
)

// DB is the shared in-memory store. A single lock guards all tables so that
// multi-table writes (cohort aggregates) stay atomic.
type DB struct {
	mutex sync.RWMutex

	users map[string]*user.User

	units       map[string]*unit.Unit
	unitWeeks   map[string]*unit.Week
	unitContent map[string]*unit.ContentItem

	cohorts        map[string]*cohort.Cohort
	weeks          map[string]*cohort.Week
	weekContent    map[string]*cohort.ContentItem
	partnerSchools map[string]*cohort.PartnerSchool
	assignments    map[string]*cohort.TeacherAssignment
	messages       map[string]*cohort.Message
}

func Open() (*DB, error) {
	db := &DB{
		users:          make(map[string]*user.User),
		units:          make(map[string]*unit.Unit),
		unitWeeks:      make(map[string]*unit.Week),
		unitContent:    make(map[string]*unit.ContentItem),
		cohorts:        make(map[string]*cohort.Cohort),
		weeks:          make(map[string]*cohort.Week),
		weekContent:    make(map[string]*cohort.ContentItem),
		partnerSchools: make(map[string]*cohort.PartnerSchool),
		assignments:    make(map[string]*cohort.TeacherAssignment),
		messages:       make(map[string]*cohort.Message),
	}
	return db, nil
}
