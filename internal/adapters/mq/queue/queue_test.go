package queue_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/matchscout/internal/adapters/mq/queue"
	"github.com/okian/matchscout/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func submission(id string) model.Submission {
	return model.Submission{ID: id, ReceivedAt: time.Now()}
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with capacity 2", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		So(q.Len(ctx), ShouldEqual, 0)

		Convey("When two submissions are enqueued", func() {
			So(q.Enqueue(ctx, submission("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, submission("b")), ShouldBeTrue)

			Convey("Then a third is refused", func() {
				So(q.Enqueue(ctx, submission("c")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("Then they are dequeued in order", func() {
				dctx, cancel := context.WithCancel(ctx)
				defer cancel()
				ch := q.Dequeue(dctx)
				So((<-ch).ID, ShouldEqual, "a")
				So((<-ch).ID, ShouldEqual, "b")
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(q.Enqueue(cctx, submission("a")), ShouldBeFalse)
		})
	})

	Convey("Given a closed queue holding one submission", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		So(q.Enqueue(ctx, submission("left")), ShouldBeTrue)
		So(q.Close(), ShouldBeNil)

		Convey("Then new submissions are refused", func() {
			So(q.IsClosed(), ShouldBeTrue)
			So(q.Enqueue(ctx, submission("late")), ShouldBeFalse)
			So(q.Close(), ShouldBeNil)
		})

		Convey("Then the remaining one drains and the channel closes", func() {
			ch := q.Dequeue(ctx)
			s, ok := <-ch
			So(ok, ShouldBeTrue)
			So(s.ID, ShouldEqual, "left")

			select {
			case _, ok = <-ch:
				So(ok, ShouldBeFalse)
			case <-time.After(time.Second):
				So("dequeue channel still open", ShouldBeEmpty)
			}
		})
	})

	Convey("Given concurrent producers and consumers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(50))
		const producers, perProducer = 5, 40

		var got sync.Map
		var consumers sync.WaitGroup
		for i := 0; i < 3; i++ {
			consumers.Add(1)
			go func() {
				defer consumers.Done()
				for s := range q.Dequeue(ctx) {
					got.Store(s.ID, true)
				}
			}()
		}

		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for j := 0; j < perProducer; j++ {
					for !q.Enqueue(ctx, submission(fmt.Sprintf("%d-%d", p, j))) {
						time.Sleep(time.Millisecond)
					}
				}
			}(p)
		}
		wg.Wait()
		So(q.Close(), ShouldBeNil)
		consumers.Wait()

		Convey("Then every submission is delivered once", func() {
			count := 0
			got.Range(func(_, _ any) bool { count++; return true })
			So(count, ShouldEqual, producers*perProducer)
		})
	})
}
