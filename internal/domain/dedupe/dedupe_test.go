package dedupe_test

import (
	"context"
	"sync"
	"testing"

	dedupe "github.com/okian/minintup/internal/domain/dedupe"
	"github.com/okian/minintup/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

func key(ev uint64) dedupe.EventKey { return dedupe.EventKey{Run: 284500, Event: ev} }

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it starts empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording events", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the event is new", func() {
				seen := d.SeenAndRecord(ctx, key(1))

				Convey("Then it should return false and record the event", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the event was already seen", func() {
				d.SeenAndRecord(ctx, key(1))
				seen := d.SeenAndRecord(ctx, key(1))

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the same event number appears in another run", func() {
				d.SeenAndRecord(ctx, key(1))
				seen := d.SeenAndRecord(ctx, dedupe.EventKey{Run: 284501, Event: 1})

				Convey("Then it is a different event", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 2)
				})
			})

			Convey("And an event is unrecorded", func() {
				d.SeenAndRecord(ctx, key(7))
				d.Unrecord(ctx, key(7))
				d.Unrecord(ctx, key(8))

				Convey("Then it can be recorded again", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(ctx, key(7)), ShouldBeFalse)
				})
			})
		})

		Convey("When the deduper is bounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			d.SeenAndRecord(ctx, key(1))
			d.SeenAndRecord(ctx, key(2))
			d.SeenAndRecord(ctx, key(3))

			Convey("Then the oldest event is evicted first", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, key(3)), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, key(2)), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, key(1)), ShouldBeFalse)
			})

			Convey("Then unrecording frees a slot without evicting", func() {
				d.Unrecord(ctx, key(2))
				d.SeenAndRecord(ctx, key(4))
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, key(3)), ShouldBeTrue)
			})
		})

		Convey("When the deduper is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := uint64(0); i < 1000; i++ {
				d.SeenAndRecord(ctx, key(i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
				So(d.SeenAndRecord(ctx, key(0)), ShouldBeTrue)
				d.Unrecord(ctx, key(0))
				So(d.Size(), ShouldEqual, 999)
			})
		})
	})
}

func TestConcurrentDedupe(t *testing.T) {
	Convey("Given a deduper shared by goroutines", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10000))
		ctx := context.Background()
		const numGoroutines = 8
		const numEvents = 500

		Convey("When every goroutine submits the same events", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			firsts := 0
			for g := 0; g < numGoroutines; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := uint64(0); i < numEvents; i++ {
						if !d.SeenAndRecord(ctx, key(i)) {
							mu.Lock()
							firsts++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then each event is recorded exactly once", func() {
				So(firsts, ShouldEqual, numEvents)
				So(d.Size(), ShouldEqual, int64(numEvents))
			})
		})
	})
}

func TestEventKeyString(t *testing.T) {
	if got := key(42).String(); got != "284500:42" {
		t.Fatalf("got %q", got)
	}
}

func TestKeyOf(t *testing.T) {
	Convey("Given input records", t, func() {
		Convey("When both numbers are present", func() {
			k, ok := dedupe.KeyOf(record.Map{"RunNumber": int64(284500), "EventNumber": uint64(7)})

			Convey("Then the key is built from them", func() {
				So(ok, ShouldBeTrue)
				So(k, ShouldResemble, key(7))
			})
		})

		Convey("When the event number is missing", func() {
			_, ok := dedupe.KeyOf(record.Map{"RunNumber": int64(284500)})

			Convey("Then no key is returned", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}
