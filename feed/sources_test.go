package feed

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/openhive/hivemux/model"
	"github.com/openhive/hivemux/utils"
	"github.com/openhive/hivemux/utils/dotenv"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

func seedPost(t *testing.T, db *gorm.DB, id string, sec int64) {
	t.Helper()
	require.NoError(t, db.Create(&model.Post{
		Id: id, CreatedAt: time.Unix(sec, 0).UTC(), Title: "title " + id,
	}).Error)
}

func TestPostAdapterPagesStrictlyOlder(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	adapter := &PostAdapter{DB: db}

	seedPost(t, db, "p1", 30)
	seedPost(t, db, "p2", 20)
	seedPost(t, db, "p3", 10)

	items, err := adapter.FetchPage(context.Background(), nil, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p2"}, ids(items))

	cur := items[len(items)-1].CursorAfter()
	items, err = adapter.FetchPage(context.Background(), &cur, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"p3"}, ids(items))
}

func TestPostAdapterTieBreaksOnIdAtBoundary(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	adapter := &PostAdapter{DB: db}

	seedPost(t, db, "pa", 50)
	seedPost(t, db, "pb", 50)

	items, err := adapter.FetchPage(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"pa"}, ids(items))

	cur := items[0].CursorAfter()
	items, err = adapter.FetchPage(context.Background(), &cur, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"pb"}, ids(items), "equal timestamp at boundary must not skip")
}

func TestPostAdapterExcludesSoftDeleted(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	adapter := &PostAdapter{DB: db}

	seedPost(t, db, "p1", 30)
	seedPost(t, db, "p2", 20)
	require.NoError(t, db.Delete(&model.Post{Id: "p2"}).Error)

	items, err := adapter.FetchPage(context.Background(), nil, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, ids(items))
}

func TestChapterAdapterProjectsProjectTitle(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	adapter := &ChapterAdapter{DB: db}

	require.NoError(t, db.Create(&model.WritingProject{Id: "proj-1", Title: "The Long Book"}).Error)
	require.NoError(t, db.Create(&model.Chapter{
		Id: "ch-1", CreatedAt: time.Unix(10, 0).UTC(), ProjectID: "proj-1", Title: "Chapter One", Ordinal: 1,
	}).Error)

	items, err := adapter.FetchPage(context.Background(), nil, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	payload, ok := items[0].Payload.(ChapterPayload)
	require.True(t, ok)
	require.Equal(t, "Chapter One", payload.Title)
	require.Equal(t, "The Long Book", payload.ProjectTitle)
	require.Equal(t, 1, payload.Ordinal)
}

func TestAllAdaptersCoverEveryKind(t *testing.T) {
	adapters := AllAdapters(nil)
	require.Len(t, adapters, len(knownKinds))
	seen := map[Kind]bool{}
	for _, a := range adapters {
		require.True(t, IsKnownKind(a.Kind()))
		require.False(t, seen[a.Kind()])
		seen[a.Kind()] = true
	}
}
