package storage

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/person"
)

// TestMongoStore runs MongoStore against the driver's mock deployment, which
// answers each command with the next queued response.
func TestMongoStore(t *testing.T) {
	ctx := context.Background()
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	ns := func(mt *mtest.T) string {
		return mt.Coll.Database().Name() + "." + mt.Coll.Name()
	}

	mt.Run("load missing", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))
		if _, err := s.Load(ctx, "pendle"); !errors.Is(err, errors.ErrCodeNotFound) {
			mt.Errorf("Load(missing) error = %v, want NOT_FOUND", err)
		}
	})

	mt.Run("load", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "pendle"},
			{Key: "people", Value: bson.A{
				bson.D{{Key: "id", Value: int64(1)}, {Key: "name", Value: "Ada"}, {Key: "spouse_id", Value: int64(2)}},
				bson.D{{Key: "id", Value: int64(2)}, {Key: "name", Value: "Ben"}, {Key: "spouse_id", Value: int64(1)}},
			}},
			{Key: "checksum", Value: "abc"},
		}))
		ds, err := s.Load(ctx, "pendle")
		if err != nil {
			mt.Fatalf("Load error: %v", err)
		}
		want := []person.Person{{ID: 1, Name: "Ada", SpouseID: 2}, {ID: 2, Name: "Ben", SpouseID: 1}}
		if diff := cmp.Diff(want, ds.People); diff != "" {
			mt.Errorf("Load().People mismatch (-want +got):\n%s", diff)
		}
		if ds.Name != "pendle" || ds.Checksum != "abc" {
			mt.Errorf("Load() = name %q checksum %q, want pendle abc", ds.Name, ds.Checksum)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			mt.Fatalf("started event = %v, want find", evt)
		}
		if id := evt.Command.Lookup("filter", "_id").StringValue(); id != "pendle" {
			mt.Errorf("find filter _id = %q, want pendle", id)
		}
	})

	mt.Run("load empty dataset", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "attic"},
		}))
		ds, err := s.Load(ctx, "attic")
		if err != nil {
			mt.Fatalf("Load error: %v", err)
		}
		if ds.People == nil || len(ds.People) != 0 {
			mt.Errorf("Load().People = %#v, want empty non-nil slice", ds.People)
		}
	})

	mt.Run("load error", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "bad filter",
		}))
		_, err := s.Load(ctx, "pendle")
		if err == nil || errors.Is(err, errors.ErrCodeNotFound) {
			mt.Errorf("Load() error = %v, want a driver error", err)
		}
	})

	mt.Run("save upserts by name", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		if err := s.Save(ctx, "pendle", people()); err != nil {
			mt.Fatalf("Save error: %v", err)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "update" {
			mt.Fatalf("started event = %v, want update", evt)
		}
		update := evt.Command.Lookup("updates", "0")
		if id := update.Document().Lookup("q", "_id").StringValue(); id != "pendle" {
			mt.Errorf("update filter _id = %q, want pendle", id)
		}
		if !update.Document().Lookup("upsert").Boolean() {
			mt.Error("update was sent without upsert")
		}
		saved, err := update.Document().Lookup("u", "people").Array().Values()
		if err != nil || len(saved) != len(people()) {
			mt.Errorf("replacement holds %d people (%v), want %d", len(saved), err, len(people()))
		}
	})

	mt.Run("save rejects bad name", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.Coll)
		if err := s.Save(ctx, "../etc", people()); !errors.Is(err, errors.ErrCodeInvalidInput) {
			mt.Errorf("Save(../etc) error = %v, want INVALID_INPUT", err)
		}
		if evt := mt.GetStartedEvent(); evt != nil {
			mt.Errorf("Save(../etc) sent %s", evt.CommandName)
		}
	})

	mt.Run("delete", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)
		if err := s.Delete(ctx, "pendle"); err != nil {
			mt.Fatalf("Delete error: %v", err)
		}
		if err := s.Delete(ctx, "pendle"); !errors.Is(err, errors.ErrCodeNotFound) {
			mt.Errorf("Delete(again) error = %v, want NOT_FOUND", err)
		}
	})

	mt.Run("list", func(mt *mtest.T) {
		s := newMongoStore(mt.Client, mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "values", Value: bson.A{"pendle", "attic", int32(7)}},
		))
		names, err := s.List(ctx)
		if err != nil {
			mt.Fatalf("List error: %v", err)
		}
		if diff := cmp.Diff([]string{"attic", "pendle"}, names); diff != "" {
			mt.Errorf("List() mismatch (-want +got):\n%s", diff)
		}
	})
}
