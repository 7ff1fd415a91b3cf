package cohort

import (
	"github.com/volatiletech/null/v8"

	"github.com/gllabs/portal/core/unit"
)

// Bookend weeks injected around the template content at instantiation.
// Every cohort created from a unit gets the same orientation packet up front
// and the same reflection set at the end.
const (
	preUnitTitle     = "Before We Begin"
	preUnitSubtitle  = "Prepare for your virtual field trip"
	postUnitTitle    = "After the Unit"
	postUnitSubtitle = "Reflect and carry the learning forward"
)

var preUnitContent = []ContentItem{
	{Type: unit.ContentLesson, Title: "Welcome & What to Expect",
		Body:  null.StringFrom("An overview of how Global Learning Labs works and what you'll do over the next four weeks."),
		Order: 0},
	{Type: unit.ContentVideo, Title: "Facilitator Introduction",
		URL:   null.StringFrom("https://example.com/videos/facilitator-intro"),
		Body:  null.StringFrom("Meet your facilitator and hear their vision for this cohort."),
		Order: 1},
	{Type: unit.ContentResource, Title: "Student Handbook",
		URL:   null.StringFrom("https://example.com/docs/student-handbook.pdf"),
		Body:  null.StringFrom("Everything you need to know before day one."),
		Order: 2},
	{Type: unit.ContentTask, Title: "Fill Out Your Profile",
		Body:  null.StringFrom("Add your name, school, and a short bio to the class Padlet so your partners can meet you."),
		Order: 3},
	{Type: unit.ContentSurvey, Title: "Pre-Unit Interest Survey",
		URL:   null.StringFrom("https://example.com/surveys/pre-unit"),
		Body:  null.StringFrom("Let us know what you're most curious about."),
		Order: 4},
}

var postUnitContent = []ContentItem{
	{Type: unit.ContentLesson, Title: "Looking Back, Looking Forward",
		Body:  null.StringFrom("Reflect on what you learned about the world — and yourself — through this unit."),
		Order: 0},
	{Type: unit.ContentTask, Title: "Culture Journal – Final Entry",
		Body:  null.StringFrom("Write your closing reflection: What was your biggest takeaway from GLL?"),
		Order: 1},
	{Type: unit.ContentSurvey, Title: "Post-Unit Survey",
		URL:   null.StringFrom("https://example.com/surveys/post-unit"),
		Body:  null.StringFrom("Share your feedback so we can make the next cohort even better."),
		Order: 2},
	{Type: unit.ContentResource, Title: "Staying Connected Guide",
		URL:   null.StringFrom("https://example.com/docs/staying-connected.pdf"),
		Body:  null.StringFrom("Ideas for keeping in touch with your GLL partners after the unit ends."),
		Order: 3},
	{Type: unit.ContentLink, Title: "GLL Alumni Network",
		URL:   null.StringFrom("https://example.com/alumni"),
		Body:  null.StringFrom("Join the network of past GLL participants."),
		Order: 4},
}

func preUnitWeek() Week {
	return Week{
		WeekNumber: 0,
		Title:      preUnitTitle,
		Subtitle:   null.StringFrom(preUnitSubtitle),
		Unlocked:   true,
		Content:    copyContent(preUnitContent),
	}
}

func postUnitWeek(weekNumber int) Week {
	return Week{
		WeekNumber: weekNumber,
		Title:      postUnitTitle,
		Subtitle:   null.StringFrom(postUnitSubtitle),
		Unlocked:   false,
		Content:    copyContent(postUnitContent),
	}
}

func copyContent(items []ContentItem) []ContentItem {
	out := make([]ContentItem, len(items))
	copy(out, items)
	return out
}
