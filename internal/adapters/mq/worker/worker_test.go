package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/matchscout/internal/adapters/mq/queue"
	"github.com/okian/matchscout/internal/adapters/mq/worker"
	"github.com/okian/matchscout/internal/domain/model"
	logging "github.com/okian/matchscout/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type fakeEvaluator struct {
	mu     sync.Mutex
	failOn map[string]error
}

func (f *fakeEvaluator) Evaluate(_ context.Context, s model.Submission) (model.ScoredEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[s.ID]; ok {
		return model.ScoredEntry{}, err
	}
	return model.ScoredEntry{ID: s.ID, Points: model.Points{Total: len(s.ID)}}, nil
}

type fakeStore struct {
	mu     sync.Mutex
	put    map[string]model.ScoredEntry
	failOn map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{put: make(map[string]model.ScoredEntry), failOn: make(map[string]error)}
}

func (f *fakeStore) Put(_ context.Context, e model.ScoredEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failOn[e.ID]; ok {
		return err
	}
	f.put[e.ID] = e
	return nil
}

func (f *fakeStore) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.put[id]
	return ok
}

func (f *fakeStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.put)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		eval := &fakeEvaluator{failOn: map[string]error{"bad-eval": errors.New("boom")}}
		store := newFakeStore()
		store.failOn["bad-store"] = errors.New("disk full")

		w := worker.NewInMemoryWorker(q, eval, store, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a submission is enqueued", func() {
			q.Enqueue(ctx, model.Submission{ID: "entry-1"})

			convey.Convey("Then the scored entry is stored", func() {
				convey.So(waitFor(func() bool { return store.has("entry-1") }), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When evaluation or storage fails", func() {
			q.Enqueue(ctx, model.Submission{ID: "bad-eval"})
			q.Enqueue(ctx, model.Submission{ID: "bad-store"})
			q.Enqueue(ctx, model.Submission{ID: "after"})

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { return store.has("after") }), convey.ShouldBeTrue)
				convey.So(store.has("bad-eval"), convey.ShouldBeFalse)
				convey.So(store.has("bad-store"), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When it is shut down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of four workers", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(200))
		store := newFakeStore()
		pool := worker.NewPool(4, q, &fakeEvaluator{}, store)
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When many submissions arrive concurrently", func() {
			var wg sync.WaitGroup
			for p := 0; p < 5; p++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for j := 0; j < 20; j++ {
						for !q.Enqueue(ctx, model.Submission{ID: fmt.Sprintf("entry-%d-%d", p, j)}) {
							time.Sleep(time.Millisecond)
						}
					}
				}(p)
			}
			wg.Wait()

			convey.Convey("Then shutdown drains the queue", func() {
				convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
				convey.So(store.len(), convey.ShouldEqual, 100)
				convey.So(pool.Processed(), convey.ShouldEqual, 100)
			})
		})
	})

	convey.Convey("Given a pool with no explicit size", t, func() {
		_ = logging.Init()
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), &fakeEvaluator{}, newFakeStore())
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
