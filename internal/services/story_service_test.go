package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-story-backend/internal/media"
	"github.com/tbourn/go-story-backend/internal/repo"
)

// ---------- test helpers ----------

func newStoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("storysvc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newStoryMedia(t *testing.T) *media.Store {
	t.Helper()
	st, err := media.NewStore(filepath.Join(t.TempDir(), "media"), zerolog.Nop())
	if err != nil {
		t.Fatalf("media store: %v", err)
	}
	return st
}

// textOfRunes builds a story body with exactly n runes.
func textOfRunes(n int) string {
	return strings.Repeat("a", n)
}

func ptr(s string) *string { return &s }

// mustCreate seeds a valid story and fails the test on error.
func mustCreate(t *testing.T, s *StoryService, text, storyType string) int64 {
	t.Helper()
	st, err := s.Create(context.Background(), text, storyType, nil, nil)
	if err != nil {
		t.Fatalf("seed story: %v", err)
	}
	return st.ID
}

// ---------- Create ----------

func TestStoryService_Create_TextBounds(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	s.TextMinRunes = 10
	s.TextMaxRunes = 100
	ctx := context.Background()

	cases := []struct {
		name string
		n    int
		ok   bool
	}{
		{"below minimum", 9, false},
		{"at minimum", 10, true},
		{"at maximum", 100, true},
		{"above maximum", 101, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Create(ctx, textOfRunes(tc.n), "adventure", nil, nil)
			if tc.ok && err != nil {
				t.Fatalf("length %d: unexpected error %v", tc.n, err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidStoryText) {
				t.Fatalf("length %d: expected ErrInvalidStoryText, got %v", tc.n, err)
			}
		})
	}
}

func TestStoryService_Create_InvalidType(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	ctx := context.Background()

	for _, typ := range []string{"", "Adventure", "my type", "type!", strings.Repeat("x", 33)} {
		if _, err := s.Create(ctx, "a perfectly fine story body", typ, nil, nil); !errors.Is(err, ErrInvalidStoryType) {
			t.Fatalf("type %q: expected ErrInvalidStoryType, got %v", typ, err)
		}
	}
}

func TestStoryService_Create_TopicValidation(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	s.TopicMaxRunes = 5
	ctx := context.Background()

	if _, err := s.Create(ctx, "a perfectly fine story body", "adventure", ptr("toolong"), nil); !errors.Is(err, ErrInvalidTopic) {
		t.Fatalf("expected ErrInvalidTopic, got %v", err)
	}

	// Blank topics collapse to nil.
	st, err := s.Create(ctx, "a perfectly fine story body", "adventure", ptr("   "), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.Topic != nil {
		t.Fatalf("expected nil topic, got %q", *st.Topic)
	}
}

func TestStoryService_Create_CategoryValidation(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	s.MaxCategories = 3
	s.CategoryMaxRunes = 5
	ctx := context.Background()

	bad := [][]string{
		{"a", "b", "c", "d"}, // too many
		{"fine", ""},         // empty entry
		{"toolong"},          // oversized entry
	}
	for _, cats := range bad {
		if _, err := s.Create(ctx, "a perfectly fine story body", "adventure", nil, cats); !errors.Is(err, ErrInvalidCategories) {
			t.Fatalf("categories %v: expected ErrInvalidCategories, got %v", cats, err)
		}
	}

	st, err := s.Create(ctx, "a perfectly fine story body", "adventure", nil, []string{" kids ", "farm"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.Categories == nil {
		t.Fatal("expected categories to be stored")
	}
	var got []string
	if err := json.Unmarshal([]byte(*st.Categories), &got); err != nil {
		t.Fatalf("categories not valid JSON: %v", err)
	}
	if len(got) != 2 || got[0] != "kids" || got[1] != "farm" {
		t.Fatalf("unexpected categories %v", got)
	}

	// No categories stored as null, not "[]".
	st2, err := s.Create(ctx, "a perfectly fine story body", "adventure", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st2.Categories != nil {
		t.Fatalf("expected nil categories, got %q", *st2.Categories)
	}
}

func TestStoryService_Create_DerivesTitle(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	ctx := context.Background()

	st, err := s.Create(ctx, "The quick brown fox jumps over the lazy dog again and again tonight", "adventure", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := "Quick Brown Fox Jumps Over Lazy Dog Again"
	if st.Title != want {
		t.Fatalf("title = %q, want %q", st.Title, want)
	}

	// All stop-words: fall back instead of an empty title.
	st2, err := s.Create(ctx, "the and of to in is are for on with", "adventure", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st2.Title != "Untitled" {
		t.Fatalf("title = %q, want Untitled", st2.Title)
	}
}

func TestStoryService_Create_ClipsLongTitle(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	s.TitleMaxLen = 12
	ctx := context.Background()

	st, err := s.Create(ctx, "extraordinarily complicated adventure", "adventure", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := len([]rune(st.Title)); got > 12 {
		t.Fatalf("title %q has %d runes, want <= 12", st.Title, got)
	}
}

// ---------- Get / ListPage / Stats ----------

func TestStoryService_Get_NotFound(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	if _, err := s.Get(context.Background(), 12345); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("expected ErrStoryNotFound, got %v", err)
	}
}

func TestStoryService_ListPage_FiltersAndPaginates(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustCreate(t, s, fmt.Sprintf("an adventure story body number %d", i), "adventure")
	}
	calmID := mustCreate(t, s, "a calm bedtime story body", "bedtime")

	items, total, err := s.ListPage(ctx, "adventure", 1, 2)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("total=%d len=%d, want 3 and 2", total, len(items))
	}

	// Newest first: the first page must not contain the oldest story.
	items2, _, err := s.ListPage(ctx, "adventure", 2, 2)
	if err != nil {
		t.Fatalf("ListPage page 2: %v", err)
	}
	if len(items2) != 1 {
		t.Fatalf("page 2 len=%d, want 1", len(items2))
	}
	if items[0].ID <= items2[0].ID {
		t.Fatalf("expected newest first, got page1[0]=%d page2[0]=%d", items[0].ID, items2[0].ID)
	}

	// Empty type lists everything.
	_, totalAll, err := s.ListPage(ctx, "", 1, 10)
	if err != nil {
		t.Fatalf("ListPage all: %v", err)
	}
	if totalAll != 4 {
		t.Fatalf("totalAll=%d, want 4", totalAll)
	}

	// Unknown type is empty, not an error.
	items3, total3, err := s.ListPage(ctx, "unknown", 1, 10)
	if err != nil || total3 != 0 || len(items3) != 0 {
		t.Fatalf("unknown type: items=%v total=%d err=%v", items3, total3, err)
	}

	// Defaults applied for bad paging values.
	items4, _, err := s.ListPage(ctx, "bedtime", 0, -5)
	if err != nil || len(items4) != 1 || items4[0].ID != calmID {
		t.Fatalf("default paging: items=%v err=%v", items4, err)
	}
}

func TestStoryService_Stats(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	ctx := context.Background()

	count, maxUpd, err := s.Stats(ctx, "adventure")
	if err != nil || count != 0 || maxUpd != nil {
		t.Fatalf("empty stats: count=%d maxUpd=%v err=%v", count, maxUpd, err)
	}

	mustCreate(t, s, "an adventure story body here", "adventure")
	count, maxUpd, err = s.Stats(ctx, "adventure")
	if err != nil || count != 1 || maxUpd == nil {
		t.Fatalf("stats after create: count=%d maxUpd=%v err=%v", count, maxUpd, err)
	}
}

// ---------- Update / ToggleFavorite ----------

func TestStoryService_Update_NotFound(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	if _, err := s.Update(context.Background(), 777, "a brand new story body", "adventure", nil); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("expected ErrStoryNotFound, got %v", err)
	}
}

func TestStoryService_Update_RevalidatesAndReindexes(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	ctx := context.Background()

	id := mustCreate(t, s, "dragons guard the mountain pass", "adventure")

	if _, err := s.Update(ctx, id, "short", "adventure", nil); !errors.Is(err, ErrInvalidStoryText) {
		t.Fatalf("expected ErrInvalidStoryText, got %v", err)
	}

	st, err := s.Update(ctx, id, "mermaids sing beneath the waves", "bedtime", ptr("ocean"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if st.Type != "bedtime" || st.Topic == nil || *st.Topic != "ocean" {
		t.Fatalf("unexpected story after update: %+v", st)
	}
	if st.Title != "Mermaids Sing Beneath Waves" {
		t.Fatalf("title not re-derived, got %q", st.Title)
	}

	// Old text unfindable, new text findable.
	if res, err := s.Search(ctx, "dragons", "all", 10); err != nil || len(res) != 0 {
		t.Fatalf("old text still indexed: res=%v err=%v", res, err)
	}
	res, err := s.Search(ctx, "mermaids", "all", 10)
	if err != nil || len(res) != 1 || res[0].ID != id {
		t.Fatalf("new text not indexed: res=%v err=%v", res, err)
	}
}

func TestStoryService_ToggleFavorite(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	ctx := context.Background()

	id := mustCreate(t, s, "a story worth keeping around", "adventure")

	st, err := s.ToggleFavorite(ctx, id, true)
	if err != nil || !st.Favorite {
		t.Fatalf("ToggleFavorite(true): st=%+v err=%v", st, err)
	}
	got, err := s.Get(ctx, id)
	if err != nil || !got.Favorite {
		t.Fatalf("Get after toggle: st=%+v err=%v", got, err)
	}

	st, err = s.ToggleFavorite(ctx, id, false)
	if err != nil || st.Favorite {
		t.Fatalf("ToggleFavorite(false): st=%+v err=%v", st, err)
	}

	if _, err := s.ToggleFavorite(ctx, 999, true); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("expected ErrStoryNotFound, got %v", err)
	}
}

// ---------- Search ----------

func TestStoryService_Search_Validation(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	s.QueryMinRunes = 2
	s.QueryMaxRunes = 10
	ctx := context.Background()

	for _, q := range []string{"", "x", strings.Repeat("q", 11)} {
		if _, err := s.Search(ctx, q, "all", 10); !errors.Is(err, ErrInvalidSearchQuery) {
			t.Fatalf("query %q: expected ErrInvalidSearchQuery, got %v", q, err)
		}
	}

	// Unknown mode and token-free queries are rejected too.
	if _, err := s.Search(ctx, "dragons", "title", 10); !errors.Is(err, ErrInvalidSearchQuery) {
		t.Fatalf("bad mode: expected ErrInvalidSearchQuery, got %v", err)
	}
	if _, err := s.Search(ctx, "!!", "all", 10); !errors.Is(err, ErrInvalidSearchQuery) {
		t.Fatalf("token-free query: expected ErrInvalidSearchQuery, got %v", err)
	}
}

func TestStoryService_Search_Modes(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	ctx := context.Background()

	textHit, err := s.Create(ctx, "galactic pirates sail the nebula seas", "adventure", nil, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	topicHit, err := s.Create(ctx, "a quiet village wakes to snow", "bedtime", ptr("galactic empires"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	assertIDs := func(t *testing.T, got []int64, want ...int64) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("got ids %v, want %v", got, want)
		}
		seen := make(map[int64]bool, len(got))
		for _, id := range got {
			seen[id] = true
		}
		for _, id := range want {
			if !seen[id] {
				t.Fatalf("got ids %v, want %v", got, want)
			}
		}
	}
	res, err := s.Search(ctx, "galactic", "text", 10)
	if err != nil {
		t.Fatalf("Search text: %v", err)
	}
	gotIDs := make([]int64, 0, len(res))
	for _, r := range res {
		gotIDs = append(gotIDs, r.ID)
	}
	assertIDs(t, gotIDs, textHit.ID)

	res, err = s.Search(ctx, "galactic", "topic", 10)
	if err != nil {
		t.Fatalf("Search topic: %v", err)
	}
	gotIDs = gotIDs[:0]
	for _, r := range res {
		gotIDs = append(gotIDs, r.ID)
	}
	assertIDs(t, gotIDs, topicHit.ID)

	res, err = s.Search(ctx, "galactic", "", 10)
	if err != nil {
		t.Fatalf("Search all: %v", err)
	}
	gotIDs = gotIDs[:0]
	for _, r := range res {
		gotIDs = append(gotIDs, r.ID)
	}
	assertIDs(t, gotIDs, textHit.ID, topicHit.ID)
}

func TestStoryService_Search_LimitApplied(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mustCreate(t, s, fmt.Sprintf("wandering knights ride at dawn %d", i), "adventure")
	}
	res, err := s.Search(ctx, "knights", "all", 3)
	if err != nil || len(res) != 3 {
		t.Fatalf("limit: res=%d err=%v", len(res), err)
	}
}

// ---------- Delete cascade ----------

func TestStoryService_Delete_CascadesEverything(t *testing.T) {
	db := newStoryDB(t)
	store := newStoryMedia(t)
	s := NewStoryService(db, store)
	queue := &QueueService{DB: db}
	shares := &ShareService{DB: db}
	audio := &AudioService{DB: db, Media: store}
	ctx := context.Background()

	id := mustCreate(t, s, "the dragon sleeps beneath the hill", "adventure")
	keepID := mustCreate(t, s, "another story that must survive intact", "adventure")

	// Hang an artifact (with a real file), queue entries, and a share off it.
	if _, err := store.Write("dragon.mp3", strings.NewReader("fake-audio")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := audio.Save(ctx, id, "dragon.mp3", 10, 1.0, "openai", "alloy", nil); err != nil {
		t.Fatalf("save audio: %v", err)
	}
	if err := queue.Set(ctx, []int64{keepID, id, keepID}); err != nil {
		t.Fatalf("set queue: %v", err)
	}
	sh, err := shares.Create(ctx, id, nil)
	if err != nil {
		t.Fatalf("create share: %v", err)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.Get(ctx, id); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("story still present: %v", err)
	}
	if n, err := repo.CountAudio(db, id); err != nil || n != 0 {
		t.Fatalf("audio rows remain: n=%d err=%v", n, err)
	}
	if _, err := os.Stat(filepath.Join(store.BasePath(), "dragon.mp3")); !os.IsNotExist(err) {
		t.Fatalf("backing file still on disk: %v", err)
	}
	if _, err := shares.Resolve(ctx, sh.Token); !errors.Is(err, ErrShareNotFound) {
		t.Fatalf("share still resolvable: %v", err)
	}
	if res, err := s.Search(ctx, "dragon", "all", 10); err != nil || len(res) != 0 {
		t.Fatalf("index entry remains: res=%v err=%v", res, err)
	}

	// Queue pruned and renumbered to a dense run of survivors.
	rows, err := queue.Get(ctx)
	if err != nil {
		t.Fatalf("get queue: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("queue rows=%d, want 2", len(rows))
	}
	for i, r := range rows {
		if r.Position != i+1 || r.StoryID != keepID {
			t.Fatalf("row %d = %+v, want dense positions of story %d", i, r, keepID)
		}
	}
}

func TestStoryService_Delete_NotFound(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	if err := s.Delete(context.Background(), 4242); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("expected ErrStoryNotFound, got %v", err)
	}
}

func TestStoryService_Delete_RollsBackOnFailedStep(t *testing.T) {
	steps := []struct {
		name  string
		table string
	}{
		{"index step fails", "stories_fts"},
		{"queue step fails", "queue"},
		{"shares step fails", "shares"},
	}
	for _, tc := range steps {
		t.Run(tc.name, func(t *testing.T) {
			db := newStoryDB(t)
			s := NewStoryService(db, nil)
			ctx := context.Background()

			id := mustCreate(t, s, "a story protected by a failing cascade", "adventure")

			if err := db.Exec("DROP TABLE " + tc.table).Error; err != nil {
				t.Fatalf("drop %s: %v", tc.table, err)
			}

			if err := s.Delete(ctx, id); err == nil {
				t.Fatal("expected cascade failure")
			}

			// The whole delete must have rolled back.
			st, err := s.Get(ctx, id)
			if err != nil || st.ID != id {
				t.Fatalf("story lost despite rollback: st=%v err=%v", st, err)
			}
		})
	}
}

// ---------- End-to-end scenario ----------

func TestStoryService_EndToEndScenario(t *testing.T) {
	s := NewStoryService(newStoryDB(t), nil)
	ctx := context.Background()

	st, err := s.Create(ctx, "a valid 60-character story about a fox crossing a river bed", "adventure", nil, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.ID != 1 {
		t.Fatalf("first story id = %d, want 1", st.ID)
	}

	res, err := s.Search(ctx, "60-character", "all", 10)
	if err != nil || len(res) != 1 || res[0].ID != 1 {
		t.Fatalf("search: res=%v err=%v", res, err)
	}

	if _, err := s.ToggleFavorite(ctx, 1, true); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	got, err := s.Get(ctx, 1)
	if err != nil || !got.Favorite {
		t.Fatalf("get after favorite: st=%+v err=%v", got, err)
	}

	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, 1); !errors.Is(err, ErrStoryNotFound) {
		t.Fatalf("expected ErrStoryNotFound after delete, got %v", err)
	}
	if res, err := s.Search(ctx, "60-character", "all", 10); err != nil || len(res) != 0 {
		t.Fatalf("search after delete: res=%v err=%v", res, err)
	}
}
