package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/gllabs/portal/core/cohort"
	"github.com/gllabs/portal/core/unit"
	"github.com/gllabs/portal/core/user"
	inmemdb "github.com/gllabs/portal/storage/database/inmem"
)

// PrepareDB returns a fresh in-memory store for each test.
func PrepareDB(t *testing.T) *inmemdb.DB {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateUnit(t *testing.T, repo unit.Repository, name string, weeks []unit.Week) unit.Unit {
	tstamp := time.Now().UTC()
	u, err := repo.CreateUnit(context.Background(), unit.Unit{
		Name:      name,
		Weeks:     weeks,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateUnit() failed: %v", err)
	}
	return u
}

// CreateCohort instantiates a cohort from a unit template through the service
// so the bookend weeks and unlock defaults match production behavior.
func CreateCohort(t *testing.T, svc cohort.Service, name, unitID string, schools ...cohort.PartnerSchoolInput) cohort.Cohort {
	c, err := svc.Instantiate(context.Background(), cohort.NewCohort{
		Name:           name,
		UnitID:         unitID,
		PartnerSchools: schools,
	})
	if err != nil {
		t.Fatalf("CreateCohort() failed: %v", err)
	}
	return c
}
