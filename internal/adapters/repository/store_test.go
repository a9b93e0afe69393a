package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/okian/matchscout/internal/adapters/repository"
	"github.com/okian/matchscout/internal/domain/model"
	"github.com/okian/matchscout/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

var scoredAt = time.UnixMilli(1_790_000_000_000).UTC()

func scored(id string, total int) model.ScoredEntry {
	rec := model.Record{
		Auto:    model.PhaseRecord{Counts: map[string]int{"shoot": total}, Toggles: map[string]bool{}},
		Teleop:  model.PhaseRecord{Counts: map[string]int{"shoot": 0}, Toggles: map[string]bool{}},
		Endgame: model.PhaseRecord{Counts: map[string]int{}, Toggles: map[string]bool{"climbL2": false}},
	}
	return model.ScoredEntry{
		ID:       id,
		Season:   "test",
		Record:   rec,
		Points:   model.Points{Auto: total, Total: total},
		ScoredAt: scoredAt,
	}
}

type storeFactory struct {
	name string
	open func(t *testing.T) repository.Store
}

func factories() []storeFactory {
	return []storeFactory{
		{name: repository.DriverMemory, open: func(*testing.T) repository.Store {
			return repository.NewTreapStore(repository.WithCapacityHint(16))
		}},
		{name: repository.DriverSQLite, open: func(t *testing.T) repository.Store {
			s, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "entries.db"))
			if err != nil {
				t.Fatalf("open sqlite store: %v", err)
			}
			return s
		}},
	}
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for _, f := range factories() {
		f := f
		Convey("Given a "+f.name+" store", t, func() {
			store := f.open(t)
			Reset(func() { _ = store.Close() })

			Convey("When it is empty", func() {
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)

				top, err := store.TopN(ctx, 5)
				So(err, ShouldBeNil)
				So(top, ShouldBeEmpty)

				_, err = store.Get(ctx, "missing")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("When entries are put", func() {
				So(store.Put(ctx, scored("c", 10)), ShouldBeNil)
				So(store.Put(ctx, scored("a", 26)), ShouldBeNil)
				So(store.Put(ctx, scored("b", 10)), ShouldBeNil)
				So(store.Put(ctx, scored("d", 3)), ShouldBeNil)

				Convey("Then the leaderboard is ordered by total then ID with shared ranks", func() {
					top, err := store.TopN(ctx, 10)
					So(err, ShouldBeNil)
					So(top, ShouldHaveLength, 4)

					ids := make([]string, len(top))
					ranks := make([]int, len(top))
					for i, r := range top {
						ids[i] = r.Entry.ID
						ranks[i] = r.Rank
					}
					So(ids, ShouldResemble, []string{"a", "b", "c", "d"})
					So(ranks, ShouldResemble, []int{1, 2, 2, 4})
				})

				Convey("Then TopN honors the limit", func() {
					top, err := store.TopN(ctx, 2)
					So(err, ShouldBeNil)
					So(top, ShouldHaveLength, 2)
					So(top[1].Entry.ID, ShouldEqual, "b")
				})

				Convey("Then Get returns the stored entry and its rank", func() {
					got, err := store.Get(ctx, "c")
					So(err, ShouldBeNil)
					So(got.Rank, ShouldEqual, 2)
					So(got.Entry, ShouldResemble, scored("c", 10))
				})

				Convey("Then a second put for the same ID replaces the first", func() {
					So(store.Put(ctx, scored("d", 40)), ShouldBeNil)

					n, err := store.Count(ctx)
					So(err, ShouldBeNil)
					So(n, ShouldEqual, 4)

					got, err := store.Get(ctx, "d")
					So(err, ShouldBeNil)
					So(got.Rank, ShouldEqual, 1)
					So(got.Entry.Points.Total, ShouldEqual, 40)

					top, _ := store.TopN(ctx, 1)
					So(top[0].Entry.ID, ShouldEqual, "d")
				})
			})

			Convey("When an entry carries violations and passthrough fields", func() {
				e := scored("v", 30)
				pos := 1
				e.Record.StartPosition = &pos
				e.Record.Extra = map[string]any{"comments": "double climb"}
				e.Violations = []model.Violation{{Phase: schema.PhaseEndgame, Group: "climb", Keys: []string{"climbL1", "climbL2"}}}
				So(store.Put(ctx, e), ShouldBeNil)

				got, err := store.Get(ctx, "v")
				So(err, ShouldBeNil)
				So(got.Entry.Violations, ShouldResemble, e.Violations)
				So(*got.Entry.Record.StartPosition, ShouldEqual, 1)
				So(got.Entry.Record.Extra["comments"], ShouldEqual, "double climb")
			})

			Convey("When the request is invalid", func() {
				_, err := store.TopN(ctx, 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)

				err = store.Put(ctx, scored(" ", 1))
				So(errors.Is(err, repository.ErrInvalidEntry), ShouldBeTrue)

				cctx, cancel := context.WithCancel(ctx)
				cancel()
				So(store.Put(cctx, scored("x", 1)), ShouldNotBeNil)
			})

			Convey("When writers race", func() {
				var wg sync.WaitGroup
				for g := 0; g < 4; g++ {
					wg.Add(1)
					go func(g int) {
						defer wg.Done()
						for i := 0; i < 25; i++ {
							_ = store.Put(ctx, scored(fmt.Sprintf("%d-%d", g, i), i))
						}
					}(g)
				}
				wg.Wait()

				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 100)

				top, err := store.TopN(ctx, 100)
				So(err, ShouldBeNil)
				for i := 1; i < len(top); i++ {
					So(top[i-1].Entry.Points.Total, ShouldBeGreaterThanOrEqualTo, top[i].Entry.Points.Total)
				}
			})
		})
	}
}

func TestTreapStore_Closed(t *testing.T) {
	Convey("Given a closed treap store", t, func() {
		s := repository.NewTreapStore()
		So(s.Close(), ShouldBeNil)
		err := s.Put(context.Background(), scored("a", 1))
		So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
	})
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	Convey("Given an empty path", t, func() {
		_, err := repository.OpenSQLite("  ")
		So(err, ShouldNotBeNil)
	})
}

func TestOpenSQLite_Reopen(t *testing.T) {
	Convey("Given a database written and closed", t, func() {
		path := filepath.Join(t.TempDir(), "entries.db")
		s, err := repository.OpenSQLite(path)
		So(err, ShouldBeNil)
		So(s.Put(context.Background(), scored("kept", 7)), ShouldBeNil)
		So(s.Close(), ShouldBeNil)

		Convey("Then reopening keeps its entries", func() {
			again, err := repository.OpenSQLite(path)
			So(err, ShouldBeNil)
			defer again.Close()
			got, err := again.Get(context.Background(), "kept")
			So(err, ShouldBeNil)
			So(got.Entry.Points.Total, ShouldEqual, 7)
		})
	})
}
