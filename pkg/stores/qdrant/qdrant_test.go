package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClientListCollections(t *testing.T) {
	Convey("Given a qdrant client and a test server", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"result":{"collections":[{"name":"sw_part_a"},{"name":"sw_part_b"}]}}`)
		}))
		defer ts.Close()

		client := New(ts.URL)
		names, err := client.ListCollections(context.Background())

		Convey("Then the collection names should be parsed", func() {
			So(err, ShouldBeNil)
			So(names, ShouldResemble, []string{"sw_part_a", "sw_part_b"})
		})
	})
}

func TestClientCreateCollection(t *testing.T) {
	Convey("Given a qdrant client and a test server", t, func() {
		var gotPath string
		var gotBody map[string]any

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			fmt.Fprint(w, `{"result":true,"status":"ok"}`)
		}))
		defer ts.Close()

		client := New(ts.URL)
		err := client.CreateCollection(context.Background(), "sw_part_bracket", 768, "Cosine")

		Convey("Then the create request should carry size and distance", func() {
			So(err, ShouldBeNil)
			So(gotPath, ShouldEqual, "/collections/sw_part_bracket")

			vectors := gotBody["vectors"].(map[string]any)
			So(vectors["size"], ShouldEqual, 768)
			So(vectors["distance"], ShouldEqual, "Cosine")
		})
	})
}

func TestClientUpsert(t *testing.T) {
	Convey("Given a qdrant client and a test server", t, func() {
		var gotBody map[string]any

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			fmt.Fprint(w, `{"result":{"status":"completed"}}`)
		}))
		defer ts.Close()

		client := New(ts.URL)
		err := client.Upsert(context.Background(), "mem", []Point{{
			ID:      "p1",
			Vector:  []float32{0.1, 0.2},
			Payload: map[string]any{"label": "Base Plate"},
		}})

		Convey("Then the point should be serialized into the request", func() {
			So(err, ShouldBeNil)

			points := gotBody["points"].([]any)
			So(len(points), ShouldEqual, 1)

			point := points[0].(map[string]any)
			So(point["id"], ShouldEqual, "p1")
			So(point["payload"].(map[string]any)["label"], ShouldEqual, "Base Plate")
		})
	})
}

func TestClientQuery(t *testing.T) {
	Convey("Given a qdrant client and a test server for search", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"result":[{"id":"1","score":0.9,"payload":{"label":"a"}},{"id":"2","score":0.5,"payload":{"label":"b"}}]}`)
		}))
		defer ts.Close()

		client := New(ts.URL)
		payloads, err := client.Query(context.Background(), "mem", []float32{0.1}, 2)

		Convey("Then the payloads should come back in rank order", func() {
			So(err, ShouldBeNil)
			So(len(payloads), ShouldEqual, 2)
			So(payloads[0]["label"], ShouldEqual, "a")
			So(payloads[1]["label"], ShouldEqual, "b")
		})
	})
}

func TestClientScroll(t *testing.T) {
	Convey("Given a qdrant client and a paginating test server", t, func() {
		calls := 0

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				fmt.Fprint(w, `{"result":{"points":[{"id":"1","payload":{"label":"a"}}],"next_page_offset":"2"}}`)
				return
			}
			fmt.Fprint(w, `{"result":{"points":[{"id":"2","payload":{"label":"b"}}],"next_page_offset":null}}`)
		}))
		defer ts.Close()

		client := New(ts.URL)

		first, offset, err := client.Scroll(context.Background(), "mem", 1, nil)

		Convey("Then the first page should carry a continuation token", func() {
			So(err, ShouldBeNil)
			So(len(first), ShouldEqual, 1)
			So(offset, ShouldEqual, "2")
		})

		second, next, err := client.Scroll(context.Background(), "mem", 1, offset)

		Convey("Then the second page should be terminal", func() {
			So(err, ShouldBeNil)
			So(len(second), ShouldEqual, 1)
			So(second[0]["label"], ShouldEqual, "b")
			So(next, ShouldBeNil)
		})
	})
}

func TestClientErrorStatus(t *testing.T) {
	Convey("Given a server that fails every request", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer ts.Close()

		client := New(ts.URL)

		Convey("Then every operation should surface the status", func() {
			_, err := client.ListCollections(context.Background())
			So(err, ShouldNotBeNil)

			err = client.CreateCollection(context.Background(), "c", 4, "Cosine")
			So(err, ShouldNotBeNil)

			err = client.Upsert(context.Background(), "c", nil)
			So(err, ShouldNotBeNil)

			_, err = client.Query(context.Background(), "c", []float32{0}, 1)
			So(err, ShouldNotBeNil)

			_, _, err = client.Scroll(context.Background(), "c", 1, nil)
			So(err, ShouldNotBeNil)
		})
	})
}
