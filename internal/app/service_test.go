package service_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/critics/internal/app"
	"github.com/okian/critics/internal/adapters/dataset"
	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 1e-9

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should report sensible defaults", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["defaultTopN"], ShouldEqual, 5)
			So(stats["cacheSize"], ShouldEqual, 4096)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithParallelism(4),
			service.WithCacheSize(0),
			service.WithDefaultTopN(3),
		)

		Convey("Then the options should be applied", func() {
			stats := svc.GetStats()
			So(stats["parallelism"], ShouldEqual, 4)
			So(stats["cacheSize"], ShouldEqual, 0)
			So(stats["defaultTopN"], ShouldEqual, 3)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should serve the embedded critics", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["source"], ShouldEqual, dataset.SourceEmbedded)
				So(stats["raters"], ShouldEqual, 7)
				So(stats["items"], ShouldEqual, 6)
			})

			Convey("And starting twice should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a service pointing at a YAML dataset", t, func() {
		path := filepath.Join(t.TempDir(), "ratings.yaml")
		So(os.WriteFile(path, []byte("a:\n  x: 1\n  y: 2\nb:\n  x: 2\n  y: 4\n"), 0o600), ShouldBeNil)
		svc := service.New(service.WithDatasetPath(path))
		defer svc.Stop()

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then the file should be served", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["source"], ShouldEqual, path)
				raters, err := svc.Raters(context.Background())
				So(err, ShouldBeNil)
				So(raters, ShouldResemble, []string{"a", "b"})
			})
		})
	})

	Convey("Given a service pointing at a missing dataset", t, func() {
		svc := service.New(service.WithDatasetPath("/non/existent/ratings.json"))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should fail with ErrLoad", func() {
				So(errors.Is(err, dataset.ErrLoad), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given a service built with an invalid in-memory table", t, func() {
		svc := service.New(service.WithTable(ratings.Table{
			"A": {"x": math.NaN()},
			"":  {"x": 2},
		}))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should fail with ErrFormat", func() {
				So(errors.Is(err, dataset.ErrFormat), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("And queries should return ErrNotStarted", func() {
				_, err := svc.Recommend(ctx, "Toby")
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				_, err = svc.TopMatches(ctx, "Toby", 3)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				_, err = svc.Similarity(ctx, "Toby", "Lisa Rose")
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				_, err = svc.Raters(ctx)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})

			Convey("And stopping again should be safe", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})
	})
}

func TestService_Queries(t *testing.T) {
	for _, cacheSize := range []int{0, 64} {
		Convey("Given a started service", t, func() {
			svc := service.New(service.WithCacheSize(cacheSize), service.WithParallelism(3))
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("When scoring a pair", func() {
				score, err := svc.Similarity(ctx, "Lisa Rose", "Gene Seymour")

				Convey("Then it should match the Pearson score", func() {
					So(err, ShouldBeNil)
					So(score, ShouldAlmostEqual, 0.39605901719066977, tolerance)
				})
			})

			Convey("When asking for top matches without n", func() {
				matches, err := svc.TopMatches(ctx, "Toby", 0)

				Convey("Then the default count should be used", func() {
					So(err, ShouldBeNil)
					So(matches, ShouldHaveLength, 5)
					So(matches[0].Rater, ShouldEqual, "Lisa Rose")
					So(matches[0].Score, ShouldAlmostEqual, 0.9912407071619304, tolerance)
				})
			})

			Convey("When recommending for Toby twice", func() {
				first, err := svc.Recommend(ctx, "Toby")
				So(err, ShouldBeNil)
				second, err := svc.Recommend(ctx, "Toby")
				So(err, ShouldBeNil)

				Convey("Then the known ranking should be returned both times", func() {
					So(first, ShouldHaveLength, 3)
					So(first[0].Item, ShouldEqual, "The Night Listener")
					So(first[0].Score, ShouldAlmostEqual, 3.3477895267131017, tolerance)
					So(first[1].Item, ShouldEqual, "Lady in the Water")
					So(first[2].Item, ShouldEqual, "Just My Luck")
					So(second, ShouldResemble, first)
				})
			})

			Convey("When querying an unknown rater", func() {
				_, err := svc.Recommend(ctx, "Nobody")

				Convey("Then ErrUnknownRater should surface", func() {
					So(errors.Is(err, ratings.ErrUnknownRater), ShouldBeTrue)
				})
			})
		})
	}

	Convey("Given a service with the cache enabled", t, func() {
		svc := service.New(service.WithCacheSize(64))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When matches have been computed", func() {
			_, err := svc.TopMatches(ctx, "Toby", 5)
			So(err, ShouldBeNil)

			Convey("Then the pairs should be cached", func() {
				So(svc.GetStats()["cachedPairs"], ShouldEqual, 6)
			})

			Convey("And replacing the table should drop them", func() {
				So(svc.SetTable(ctx, ratings.Table{"a": {"x": 1}, "b": {"x": 2}}), ShouldBeNil)
				So(svc.GetStats()["cachedPairs"], ShouldEqual, 0)
				So(svc.GetStats()["raters"], ShouldEqual, 2)
			})
		})
	})
}

func TestService_SetTable(t *testing.T) {
	Convey("Given a service started on an in-memory table", t, func() {
		table := ratings.Table{
			"Alice": {"Movie1": 5, "Movie2": 3},
			"Bob":   {"Movie1": 5, "Movie2": 2, "Movie3": 5},
		}
		svc := service.New(service.WithTable(table))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then later changes to the caller's map should not leak in", func() {
			table["Alice"]["Movie3"] = 4
			recs, err := svc.Recommend(ctx, "Alice")
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(recs[0].Item, ShouldEqual, "Movie3")
			So(recs[0].Score, ShouldAlmostEqual, 5.0, tolerance)
			So(svc.GetStats()["source"], ShouldEqual, "memory")
		})

		Convey("When swapping in a table with different scores", func() {
			err := svc.SetTable(ctx, ratings.Table{
				"Alice": {"Movie1": 5, "Movie2": 3},
				"Bob":   {"Movie1": 2, "Movie2": 5, "Movie3": 5},
			})

			Convey("Then no stale similarity should be served", func() {
				So(err, ShouldBeNil)
				score, err := svc.Similarity(ctx, "Alice", "Bob")
				So(err, ShouldBeNil)
				So(score, ShouldAlmostEqual, -1.0, tolerance)
				recs, err := svc.Recommend(ctx, "Alice")
				So(err, ShouldBeNil)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When swapping in an invalid table", func() {
			err := svc.SetTable(ctx, ratings.Table{"": {"Movie1": 1}})

			Convey("Then it should be rejected and the old table kept", func() {
				So(errors.Is(err, dataset.ErrFormat), ShouldBeTrue)
				So(svc.GetStats()["raters"], ShouldEqual, 2)
			})
		})

		Convey("When swapping in nil", func() {
			err := svc.SetTable(ctx, nil)

			Convey("Then it should be rejected", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
