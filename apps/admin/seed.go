package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core/cohort"
	"github.com/gllabs/portal/core/unit"
	"github.com/gllabs/portal/core/user"
)

// seed loads the demo dataset: an admin, three partner-school teachers, the
// "Cultural Exchange" unit template and a cohort instantiated from it.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	if err := clearDataFunc(ctx, cli.db); err != nil {
		return errors.Wrap(err, "clearing data")
	}

	admin, err := cli.seedUser(ctx, "Admin User", "admin", "admin@gll.edu", "", user.AllRoles)
	if err != nil {
		return err
	}
	mei, err := cli.seedUser(ctx, "Mei Lin", "meilin", "mei@gll.edu", "Taipei American School", user.TeacherRoles)
	if err != nil {
		return err
	}
	sarah, err := cli.seedUser(ctx, "Sarah Chen", "sarahchen", "sarah@gll.edu", "Brooklyn Global Academy", user.TeacherRoles)
	if err != nil {
		return err
	}
	ana, err := cli.seedUser(ctx, "Ana Rodríguez", "anarodriguez", "ana@gll.edu", "Colegio Internacional", user.TeacherRoles)
	if err != nil {
		return err
	}

	u, err := cli.unitRepo.CreateUnit(ctx, culturalExchangeUnit())
	if err != nil {
		return errors.Wrap(err, "creating unit")
	}

	c, err := cli.cohortSvc.Instantiate(ctx, cohort.NewCohort{
		Name:                   "Spring 2026 Cohort A",
		UnitID:                 u.ID,
		Facilitator:            "Dr. Lisa Park",
		FacilitatorEmail:       "lisa.park@gll.edu",
		StartDate:              "2026-03-09",
		EndDate:                "2026-04-17",
		SessionDay:             "Wednesday",
		SessionTime:            "3:00 PM – 4:00 PM (ET)",
		VideoCallLink:          "https://zoom.us/j/gll-spring-2026-cohort-a",
		CollaborationBoardLink: "https://padlet.com/gll/spring2026cohortA",
		PartnerSchools: []cohort.PartnerSchoolInput{
			{Name: "Taipei American School", Location: "Taipei, Taiwan", TeacherID: mei.ID},
			{Name: "Brooklyn Global Academy", Location: "Brooklyn, New York, USA", TeacherID: sarah.ID},
			{Name: "Colegio Internacional", Location: "Medellín, Colombia", TeacherID: ana.ID},
		},
	})
	if err != nil {
		return errors.Wrap(err, "instantiating cohort")
	}

	logger.Println("Seed complete.")
	logger.Printf("  Admin: %s (password: %s)", admin.Email, seedPassword)
	logger.Printf("  Teachers: %s, %s, %s", mei.Email, sarah.Email, ana.Email)
	logger.Printf("  Unit: %s (weeks 1-4 template)", u.Name)
	logger.Printf("  Cohort: %s -> %s (%d weeks, weeks 0 & 1 unlocked)", c.Name, c.Slug, len(c.Weeks))
	return nil
}

const seedPassword = "password123"

var clearDataFunc = func(ctx context.Context, db *sqlx.DB) error { // mockable
	q := `
TRUNCATE cohort_message, cohort_teacher, partner_school, week_content, week, cohort,
         unit_week_content, unit_week, unit, "user" CASCADE`
	_, err := db.ExecContext(ctx, q)
	return err
}

func (cli *commandLine) seedUser(ctx context.Context, name, uname, email, school string, roles []string) (user.User, error) {
	now := time.Now().UTC()
	active := true
	usr := user.User{
		Name:       name,
		Username:   uname,
		Email:      email,
		SchoolName: school,
		IsActive:   &active,
		Roles:      roles,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(seedPassword); err != nil {
		return user.User{}, err
	}
	usr, err := cli.usrRepo.CreateUser(ctx, usr)
	return usr, errors.Wrap(err, fmt.Sprintf("creating user %s", email))
}

func culturalExchangeUnit() unit.Unit {
	now := time.Now().UTC()
	return unit.Unit{
		Name: "Cultural Exchange",
		Description: null.StringFrom("A four-week cross-cultural collaboration unit. Students discover, design, " +
			"refine, and celebrate shared projects with partner schools around the world."),
		CreatedAt: now,
		UpdatedAt: now,
		Weeks: []unit.Week{
			{
				WeekNumber: 1, Title: "Discover", Subtitle: null.StringFrom("Explore the world through your partners' eyes"),
				Content: []unit.ContentItem{
					{Type: unit.ContentLesson, Title: "Mapping Our World",
						Body:  null.StringFrom("Learn how your partner schools' locations connect through geography, culture, and history."),
						Order: 0},
					{Type: unit.ContentVideo, Title: "A Day in My City",
						URL:   null.StringFrom("https://example.com/videos/day-in-my-city"),
						Body:  null.StringFrom("Short films by students at each partner school showing daily life."),
						Order: 1},
					{Type: unit.ContentCrossClassroom, Title: "Partner Introductions",
						Body:  null.StringFrom("Join your cross-classroom group and share one thing you're proud of about your community."),
						Order: 2},
					{Type: unit.ContentTask, Title: "Culture Journal – Entry 1",
						Body:  null.StringFrom("Write 3–5 sentences about something new you learned about a partner school."),
						Order: 3},
					{Type: unit.ContentResource, Title: "Cultural Facts Sheet",
						URL:   null.StringFrom("https://example.com/docs/cultural-facts.pdf"),
						Body:  null.StringFrom("Quick reference on customs and traditions at each partner school."),
						Order: 4},
				},
			},
			{
				WeekNumber: 2, Title: "Design", Subtitle: null.StringFrom("Collaborate to create something meaningful"),
				Content: []unit.ContentItem{
					{Type: unit.ContentLesson, Title: "Design Thinking Basics",
						Body:  null.StringFrom("An introduction to the design thinking process and how it applies to cross-cultural projects."),
						Order: 0},
					{Type: unit.ContentVideo, Title: "Design Thinking Walkthrough",
						URL:   null.StringFrom("https://example.com/videos/design-thinking"),
						Body:  null.StringFrom("A visual guide to empathize → define → ideate → prototype → test."),
						Order: 1},
					{Type: unit.ContentCrossClassroom, Title: "Brainstorm Session",
						Body:  null.StringFrom("Work with your cross-classroom group to brainstorm ideas for your shared project."),
						Order: 2},
					{Type: unit.ContentTask, Title: "Project Proposal",
						Body:  null.StringFrom("Submit a one-page proposal outlining your group's project idea, goals, and roles."),
						Order: 3},
					{Type: unit.ContentDeliverable, Title: "Mood Board",
						Body:  null.StringFrom("Create a mood board on Padlet that captures the theme and feel of your project."),
						Order: 4},
				},
			},
			{
				WeekNumber: 3, Title: "Refine & Respond", Subtitle: null.StringFrom("Give and receive feedback across cultures"),
				Content: []unit.ContentItem{
					{Type: unit.ContentLesson, Title: "Giving Feedback Across Cultures",
						Body:  null.StringFrom("Strategies for constructive, culturally sensitive feedback."),
						Order: 0},
					{Type: unit.ContentVideo, Title: "Feedback in Action",
						URL:   null.StringFrom("https://example.com/videos/feedback-in-action"),
						Body:  null.StringFrom("See how students from past cohorts gave and received feedback."),
						Order: 1},
					{Type: unit.ContentCrossClassroom, Title: "Peer Review Round",
						Body:  null.StringFrom("Exchange drafts with another group and provide written feedback using the provided rubric."),
						Order: 2},
					{Type: unit.ContentTask, Title: "Culture Journal – Entry 2",
						Body:  null.StringFrom("Reflect on the feedback you received. How did it shape your project?"),
						Order: 3},
					{Type: unit.ContentResource, Title: "Feedback Rubric",
						URL:   null.StringFrom("https://example.com/docs/feedback-rubric.pdf"),
						Body:  null.StringFrom("Use this rubric to structure your peer feedback."),
						Order: 4},
					{Type: unit.ContentSurvey, Title: "Mid-Unit Check-In",
						URL:   null.StringFrom("https://example.com/surveys/mid-unit"),
						Body:  null.StringFrom("How's the experience going? Share your thoughts."),
						Order: 5},
				},
			},
			{
				WeekNumber: 4, Title: "Celebrate & Connect", Subtitle: null.StringFrom("Share your work and celebrate the journey"),
				Content: []unit.ContentItem{
					{Type: unit.ContentLesson, Title: "Sharing Is Learning",
						Body:  null.StringFrom("Why presenting your work matters — and how to do it well across time zones."),
						Order: 0},
					{Type: unit.ContentVideo, Title: "Presentation Tips",
						URL:   null.StringFrom("https://example.com/videos/presentation-tips"),
						Body:  null.StringFrom("Quick tips for a compelling virtual presentation."),
						Order: 1},
					{Type: unit.ContentCrossClassroom, Title: "Gallery Walk",
						Body:  null.StringFrom("Browse and respond to each group's final project on Padlet."),
						Order: 2},
					{Type: unit.ContentDeliverable, Title: "Final Project Submission",
						Body:  null.StringFrom("Submit your completed project, including all team contributions and a short write-up."),
						Order: 3},
					{Type: unit.ContentGallery, Title: "Celebration Wall",
						URL:   null.StringFrom("https://padlet.com/gll/celebration"),
						Body:  null.StringFrom("Post a photo, quote, or moment that captures your GLL experience."),
						Order: 4},
				},
			},
		},
	}
}
