package linker

import (
	"testing"
	"time"

	"ttx/internal/models"
)

func project(id, wid, name string) *models.Record {
	return &models.Record{ID: id, WorkspaceID: wid, Group: models.Projects, Name: name, Included: true}
}

func entry(id, wid, projectID, description string, start, end time.Time) *models.Record {
	return &models.Record{
		ID:          id,
		WorkspaceID: wid,
		Group:       models.TimeEntries,
		ProjectID:   projectID,
		Description: description,
		Start:       start,
		End:         end,
		Included:    true,
	}
}

func TestFieldMatcher(t *testing.T) {
	t.Run("Empty Source Fast Path", func(t *testing.T) {
		l := New(nil, nil)
		target := []*models.Record{project("T1", "WT", "Alpha")}

		result := l.Link(models.Projects, nil, target)

		if len(result.Source) != 0 || len(result.Target) != 0 {
			t.Errorf("expected two empty maps, got %d/%d", len(result.Source), len(result.Target))
		}
		if target[0].Linked() {
			t.Error("target must be untouched on the fast path")
		}
	})

	t.Run("Symmetric Link", func(t *testing.T) {
		l := New(map[string]string{"WS": "WT"}, nil)
		s := project("S1", "WS", "Alpha")
		tg := project("T1", "WT", "Alpha")

		result := l.Link(models.Projects, []*models.Record{s}, []*models.Record{tg})

		if s.LinkedID != "T1" || tg.LinkedID != "S1" {
			t.Errorf("expected symmetric link, got %q / %q", s.LinkedID, tg.LinkedID)
		}
		if s.Included || tg.Included {
			t.Error("matched records must not stay included")
		}
		if result.Source["S1"] != s || result.Target["T1"] != tg {
			t.Error("result maps should index the same records by id")
		}
	})

	t.Run("Workspace Gate", func(t *testing.T) {
		// Same name, but the owning workspaces are not linked to each other.
		l := New(map[string]string{"WS": "WT"}, nil)
		s := project("S1", "WS", "Alpha")
		tg := project("T1", "OTHER", "Alpha")

		l.Link(models.Projects, []*models.Record{s}, []*models.Record{tg})

		if s.Linked() {
			t.Error("records in unlinked workspaces must not cross-link")
		}
		if !s.Included {
			t.Error("unmatched non-workspace record defaults to included")
		}
	})

	t.Run("Workspaces Skip Gate", func(t *testing.T) {
		l := New(nil, nil)
		s := &models.Record{ID: "WS", Group: models.Workspaces, Name: "Main"}
		tg := &models.Record{ID: "WT", Group: models.Workspaces, Name: "Main"}

		l.Link(models.Workspaces, []*models.Record{s}, []*models.Record{tg})

		if s.LinkedID != "WT" || tg.LinkedID != "WS" {
			t.Error("workspaces link on name alone")
		}
	})

	t.Run("Unmatched Workspace Not Included", func(t *testing.T) {
		l := New(nil, nil)
		s := &models.Record{ID: "WS", Group: models.Workspaces, Name: "Main"}

		l.Link(models.Workspaces, []*models.Record{s}, nil)

		if s.Included {
			t.Error("workspaces require explicit opt-in")
		}
	})

	t.Run("Users Match On Email", func(t *testing.T) {
		l := New(map[string]string{"WS": "WT"}, nil)
		s := &models.Record{ID: "S1", WorkspaceID: "WS", Group: models.Users, Name: "Sam", Email: "sam@example.com"}
		tg := &models.Record{ID: "T1", WorkspaceID: "WT", Group: models.Users, Name: "Samuel", Email: "sam@example.com"}

		l.Link(models.Users, []*models.Record{s}, []*models.Record{tg})

		if s.LinkedID != "T1" {
			t.Errorf("users should match on email regardless of name, got %q", s.LinkedID)
		}
	})

	t.Run("Claimed Target Not Reused", func(t *testing.T) {
		// Two same-named sources against a single target: the second must
		// not steal the link the first already holds.
		l := New(map[string]string{"WS": "WT"}, nil)
		s1 := project("S1", "WS", "Alpha")
		s2 := project("S2", "WS", "Alpha")
		tg := project("T1", "WT", "Alpha")

		l.Link(models.Projects, []*models.Record{s1, s2}, []*models.Record{tg})

		if s1.LinkedID != "T1" || tg.LinkedID != "S1" {
			t.Errorf("first source keeps the symmetric link, got %q / %q", s1.LinkedID, tg.LinkedID)
		}
		if s2.Linked() {
			t.Error("second duplicate source must stay unlinked")
		}
		if !s2.Included {
			t.Error("unmatched duplicate stays included")
		}
	})

	t.Run("First Match Wins", func(t *testing.T) {
		l := New(map[string]string{"WS": "WT"}, nil)
		s := project("S1", "WS", "Alpha")
		t1 := project("T1", "WT", "Alpha")
		t2 := project("T2", "WT", "Alpha")

		l.Link(models.Projects, []*models.Record{s}, []*models.Record{t1, t2})

		if s.LinkedID != "T1" {
			t.Errorf("expected first qualifying target, got %q", s.LinkedID)
		}
		if t2.Linked() {
			t.Error("second duplicate target should stay unlinked")
		}
	})
}

func TestTimeEntryMatcher(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	linkedProjects := func() models.RecordSet {
		p := project("P1", "WS", "Build Service")
		p.LinkedID = "P1T"
		return models.RecordSet{"P1": p}
	}

	t.Run("All Predicates Hold", func(t *testing.T) {
		l := New(nil, linkedProjects())
		s := entry("S1", "WS", "P1", "Build", base, base.Add(time.Hour))
		tg := entry("T1", "WT", "P1T", "Build", base.Add(30*time.Second), base.Add(time.Hour+20*time.Second))

		l.Link(models.TimeEntries, []*models.Record{s}, []*models.Record{tg})

		if s.LinkedID != "T1" || tg.LinkedID != "S1" {
			t.Errorf("expected entries to link, got %q / %q", s.LinkedID, tg.LinkedID)
		}
		if s.Included {
			t.Error("linked source entry must not be included")
		}
	})

	t.Run("Description Byte Identical", func(t *testing.T) {
		l := New(nil, linkedProjects())
		s := entry("S1", "WS", "P1", "Build", base, base.Add(time.Hour))
		tg := entry("T1", "WT", "P1T", "Build ", base.Add(30*time.Second), base.Add(time.Hour+20*time.Second))

		l.Link(models.TimeEntries, []*models.Record{s}, []*models.Record{tg})

		if s.Linked() {
			t.Error("trailing space in description must prevent the match")
		}
		if !s.Included {
			t.Error("unmatched source entry stays included")
		}
	})

	t.Run("Start Outside Tolerance", func(t *testing.T) {
		l := New(nil, linkedProjects())
		s := entry("S1", "WS", "P1", "Build", base, base.Add(time.Hour))
		tg := entry("T1", "WT", "P1T", "Build", base.Add(61*time.Second), base.Add(time.Hour))

		l.Link(models.TimeEntries, []*models.Record{s}, []*models.Record{tg})

		if s.Linked() {
			t.Error("start delta over one minute must prevent the match")
		}
	})

	t.Run("Both Without Project", func(t *testing.T) {
		l := New(nil, nil)
		s := entry("S1", "WS", "", "Standup", base, base.Add(15*time.Minute))
		tg := entry("T1", "WT", "", "Standup", base, base.Add(15*time.Minute))

		l.Link(models.TimeEntries, []*models.Record{s}, []*models.Record{tg})

		if s.LinkedID != "T1" {
			t.Error("entries without projects on both sides should match")
		}
	})

	t.Run("Project On One Side Only", func(t *testing.T) {
		l := New(nil, linkedProjects())
		s := entry("S1", "WS", "P1", "Standup", base, base.Add(15*time.Minute))
		tg := entry("T1", "WT", "", "Standup", base, base.Add(15*time.Minute))

		l.Link(models.TimeEntries, []*models.Record{s}, []*models.Record{tg})

		if s.Linked() {
			t.Error("project on only one side must prevent the match")
		}
	})

	t.Run("Greedy Claim", func(t *testing.T) {
		l := New(nil, nil)
		// Two sources could both match the single target; the earlier one
		// claims it.
		s1 := entry("S1", "WS", "", "Review", base, base.Add(time.Hour))
		s2 := entry("S2", "WS", "", "Review", base.Add(10*time.Second), base.Add(time.Hour))
		tg := entry("T1", "WT", "", "Review", base, base.Add(time.Hour))

		l.Link(models.TimeEntries, []*models.Record{s1, s2}, []*models.Record{tg})

		if s1.LinkedID != "T1" {
			t.Errorf("earliest source should claim the target, got %q", s1.LinkedID)
		}
		if s2.Linked() {
			t.Error("claimed target must not be reused")
		}
		if !s2.Included {
			t.Error("loser of the greedy match stays included")
		}
	})
}
