package selection_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/course"
	"github.com/trezcool/classroom/core/selection"
	"github.com/trezcool/classroom/storage/database/inmem"
	"github.com/trezcool/classroom/tests"
)

type fixture struct {
	db  *inmemdb.DB
	svc *selection.Service
	cs1 course.Course
	cs2 course.Course
}

func setup(t *testing.T) fixture {
	db := inmemdb.Open()
	courseRepo := inmemdb.NewCourseRepository(db)
	return fixture{
		db:  db,
		svc: selection.NewService(inmemdb.NewSelectionRepository(db), course.NewService(courseRepo)),
		cs1: testutil.CreateCourse(t, courseRepo, "Algorithms", "CS101"),
		cs2: testutil.CreateCourse(t, courseRepo, "Databases", "CS202"),
	}
}

func TestService_Get_noRecord(t *testing.T) {
	f := setup(t)

	entries, err := f.svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	cards, err := f.svc.Cards(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestService_Set(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	inmemdb.SaveRawSelection(f.db, 1, []byte(`[{"title": "Reading group"}, 1]`))

	require.NoError(t, f.svc.Set(ctx, 1, []int{f.cs2.ID, f.cs1.ID, f.cs2.ID}))

	entries, err := f.svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []selection.Entry{
		selection.CourseEntry(f.cs2.ID),
		selection.CourseEntry(f.cs1.ID),
		selection.CourseEntry(f.cs2.ID),
	}, entries)

	ids, err := f.svc.SelectedCourseIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{f.cs2.ID, f.cs1.ID, f.cs2.ID}, ids)

	require.NoError(t, f.svc.Set(ctx, 1, nil))
	entries, err = f.svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_Set_unknownCourse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.svc.Set(ctx, 1, []int{f.cs1.ID}))

	err := f.svc.Set(ctx, 1, []int{f.cs2.ID, 999})
	verr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "courses", verr.Fields[0].Field)

	ids, err := f.svc.SelectedCourseIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{f.cs1.ID}, ids)
}

func TestService_ResolveCard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	card, ok, err := f.svc.ResolveCard(ctx, selection.CourseEntry(f.cs1.ID))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, selection.Card{Title: "Algorithms", CourseCode: "CS101", Link: selection.CourseLink(f.cs1.ID)}, card)

	adhoc := selection.Card{Title: "Reading group", Link: "https://example.com"}
	card, ok, err = f.svc.ResolveCard(ctx, selection.CardEntry(adhoc))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, adhoc, card)

	_, ok, err = f.svc.ResolveCard(ctx, selection.CourseEntry(999))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_Cards(t *testing.T) {
	f := setup(t)
	inmemdb.SaveRawSelection(f.db, 1, []byte(`[999, {"title": "Reading group", "link": "/rg"}, "1", {"id": 2}]`))

	cards, err := f.svc.Cards(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cards, 3)
	assert.Equal(t, "Reading group", cards[0].Title)
	assert.Equal(t, "Algorithms", cards[1].Title)
	assert.Equal(t, "/courses/1", cards[1].Link)
	assert.Equal(t, "Databases", cards[2].Title)
}
