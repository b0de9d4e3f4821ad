package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/critics/internal/adapters/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCritics(t *testing.T) {
	Convey("Given the embedded critics dataset", t, func() {
		table := dataset.Critics()

		Convey("Then it should contain the seven critics", func() {
			So(table.Len(), ShouldEqual, 7)
			So(table.Raters(), ShouldContain, "Toby")
			So(table["Toby"]["Snakes on a Plane"], ShouldEqual, 4.5)
			So(table.Items(), ShouldHaveLength, 6)
		})

		Convey("Then every call should return an independent copy", func() {
			table["Toby"]["Snakes on a Plane"] = 1
			So(dataset.Critics()["Toby"]["Snakes on a Plane"], ShouldEqual, 4.5)
		})
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty path", t, func() {
		table, err := dataset.Load(ctx, "")

		Convey("Then the embedded dataset should be used", func() {
			So(err, ShouldBeNil)
			So(table.Len(), ShouldEqual, 7)
		})
	})

	Convey("Given a JSON file", t, func() {
		path := writeTemp(t, "ratings.json", `{"Alice": {"Movie1": 5, "Movie2": 3}, "Bob": {"Movie1": 4, "Movie3": 5}}`)
		table, err := dataset.Load(ctx, path)

		Convey("Then it should be decoded", func() {
			So(err, ShouldBeNil)
			So(table.Raters(), ShouldResemble, []string{"Alice", "Bob"})
			So(table["Bob"]["Movie3"], ShouldEqual, 5.0)
		})
	})

	Convey("Given a YAML file", t, func() {
		path := writeTemp(t, "ratings.yml", `
Alice:
  Movie1: 5
  Movie2: 3.5
Bob:
  "Movie: The Sequel": 4
`)
		table, err := dataset.Load(ctx, path)

		Convey("Then integers and floats should both decode", func() {
			So(err, ShouldBeNil)
			So(table["Alice"]["Movie1"], ShouldEqual, 5.0)
			So(table["Alice"]["Movie2"], ShouldEqual, 3.5)
			So(table["Bob"]["Movie: The Sequel"], ShouldEqual, 4.0)
		})
	})

	Convey("Given a YAML file with a non-numeric rating", t, func() {
		path := writeTemp(t, "bad.yaml", "Alice:\n  Movie1: great\n")
		_, err := dataset.Load(ctx, path)

		Convey("Then it should return ErrFormat", func() {
			So(errors.Is(err, dataset.ErrFormat), ShouldBeTrue)
		})
	})

	Convey("Given a YAML rater that is not a mapping", t, func() {
		path := writeTemp(t, "flat.yaml", "Alice: 5\n")
		_, err := dataset.Load(ctx, path)

		Convey("Then it should return ErrFormat", func() {
			So(errors.Is(err, dataset.ErrFormat), ShouldBeTrue)
		})
	})

	Convey("Given malformed JSON", t, func() {
		path := writeTemp(t, "broken.json", `{"Alice": {"Movie1": }`)
		_, err := dataset.Load(ctx, path)

		Convey("Then it should return ErrFormat", func() {
			So(errors.Is(err, dataset.ErrFormat), ShouldBeTrue)
		})
	})

	Convey("Given an unsupported extension", t, func() {
		_, err := dataset.Load(ctx, "/tmp/ratings.csv")

		Convey("Then it should return ErrFormat", func() {
			So(errors.Is(err, dataset.ErrFormat), ShouldBeTrue)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := dataset.Load(ctx, "/non/existent/ratings.json")

		Convey("Then it should return ErrLoad", func() {
			So(errors.Is(err, dataset.ErrLoad), ShouldBeTrue)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := dataset.Load(cctx, "/tmp/ratings.json")

		Convey("Then it should return ErrLoad wrapping the cancellation", func() {
			So(errors.Is(err, dataset.ErrLoad), ShouldBeTrue)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given tables with invalid identifiers", t, func() {
		Convey("Then an empty rater id should be rejected", func() {
			_, err := dataset.Decode(dataset.FormatJSON, []byte(`{" ": {"x": 1}}`))
			So(errors.Is(err, dataset.ErrFormat), ShouldBeTrue)
		})

		Convey("Then an empty item id should be rejected", func() {
			_, err := dataset.Decode(dataset.FormatJSON, []byte(`{"A": {"": 1}}`))
			So(errors.Is(err, dataset.ErrFormat), ShouldBeTrue)
		})
	})

	Convey("Given an unknown format", t, func() {
		_, err := dataset.Decode("csv", []byte(`a,b`))

		Convey("Then it should be rejected", func() {
			So(errors.Is(err, dataset.ErrFormat), ShouldBeTrue)
		})
	})
}
