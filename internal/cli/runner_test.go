package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/critics/internal/adapters/dataset"
	"github.com/okian/critics/internal/adapters/http/api"
	service "github.com/okian/critics/internal/app"
	"github.com/okian/critics/internal/cli"
	"github.com/okian/critics/internal/domain/ratings"
	"github.com/okian/critics/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// newServer serves t through the real service and API handlers.
func newServer(t ratings.Table) (*httptest.Server, func()) {
	svc := service.New(service.WithTable(t), service.WithParallelism(2))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc, 5, 50).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	return srv, func() {
		srv.Close()
		svc.Stop()
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	Convey("Given the embedded critics", t, func() {
		var out bytes.Buffer

		Convey("When no rater is given", func() {
			err := cli.Run(ctx, &cli.Config{}, &out)

			Convey("Then the raters should be listed", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldStartWith, "Raters (7):")
				So(out.String(), ShouldContainSubstring, "  Toby\n")
			})
		})

		Convey("When reporting on Toby with a pair", func() {
			err := cli.Run(ctx, &cli.Config{Rater: "Toby", TopN: 3, Pair: "Lisa Rose"}, &out)

			Convey("Then matches, recommendations and the pair score should be printed", func() {
				So(err, ShouldBeNil)
				s := out.String()
				So(s, ShouldContainSubstring, "Top 3 matches for Toby:")
				So(s, ShouldContainSubstring, " 0.9912  Lisa Rose")
				So(s, ShouldNotContainSubstring, "Jack Matthews")
				So(s, ShouldContainSubstring, " 3.3478  The Night Listener")
				So(s, ShouldContainSubstring, "Similarity Toby ~ Lisa Rose: 0.9912")
			})
		})

		Convey("When reporting on a rater with nothing left to see", func() {
			err := cli.Run(ctx, &cli.Config{Rater: "Lisa Rose"}, &out)

			Convey("Then an empty recommendation list should be shown", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "Top 5 matches for Lisa Rose:")
				So(out.String(), ShouldContainSubstring, "(none)")
			})
		})

		Convey("When the rater is unknown", func() {
			err := cli.Run(ctx, &cli.Config{Rater: "Nobody"}, &out)

			Convey("Then ErrUnknownRater should be returned", func() {
				So(errors.Is(err, ratings.ErrUnknownRater), ShouldBeTrue)
			})
		})

		Convey("When the data file does not exist", func() {
			err := cli.Run(ctx, &cli.Config{DataPath: "/non/existent.json"}, &out)

			Convey("Then ErrLoad should be returned", func() {
				So(errors.Is(err, dataset.ErrLoad), ShouldBeTrue)
			})
		})
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	Convey("Given a server over the same table", t, func() {
		srv, done := newServer(dataset.Critics())
		defer done()
		var out bytes.Buffer

		Convey("When verifying every rater", func() {
			err := cli.Run(ctx, &cli.Config{VerifyURL: srv.URL, Workers: 3, Timeout: 5 * time.Second}, &out)

			Convey("Then no mismatch should be reported", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, "Verified 7 raters")
				So(out.String(), ShouldContainSubstring, "0 mismatches")
			})
		})
	})

	Convey("Given a server over a different table", t, func() {
		served := dataset.Critics()
		served["Toby"]["Superman Returns"] = 1.0
		srv, done := newServer(served)
		defer done()

		Convey("When verifying against the embedded critics", func() {
			stats, err := cli.Verify(ctx, &cli.Config{VerifyURL: srv.URL, Timeout: 5 * time.Second}, dataset.Critics())

			Convey("Then ErrMismatch should be returned", func() {
				So(errors.Is(err, cli.ErrMismatch), ShouldBeTrue)
				So(stats.Mismatches, ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given a server missing a rater", t, func() {
		srv, done := newServer(ratings.Table{"Toby": {"Snakes on a Plane": 4.5}})
		defer done()

		Convey("When verifying the full critics table", func() {
			_, err := cli.Verify(ctx, &cli.Config{VerifyURL: srv.URL, Timeout: 5 * time.Second}, dataset.Critics())

			Convey("Then the 404 should surface as ErrStatus", func() {
				So(errors.Is(err, cli.ErrStatus), ShouldBeTrue)
			})
		})
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given the help text", t, func() {
		var out bytes.Buffer
		cli.ShowHelp(&out)

		Convey("Then every flag should be documented", func() {
			for _, flag := range []string{"-data", "-rater", "-n int", "-pair", "-verify", "-workers", "-timeout", "-verbose", "-help"} {
				So(out.String(), ShouldContainSubstring, flag)
			}
		})
	})
}
