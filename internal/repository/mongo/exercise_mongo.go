package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"exercises/internal/model"
	"exercises/internal/repository"
)

// documentValidationFailure is the server code for a write rejected by the collection validator.
const documentValidationFailure = 121

// ExerciseMongo is a MongoDB implementation of repository.ExerciseRepository.
// IDs are hex encoded ObjectIDs. It is safe for concurrent use.
type ExerciseMongo struct {
	coll *mongo.Collection
}

// NewExerciseMongo creates a repository over the given collection.
func NewExerciseMongo(coll *mongo.Collection) *ExerciseMongo {
	return &ExerciseMongo{coll: coll}
}

var _ repository.ExerciseRepository = (*ExerciseMongo)(nil)

// Create inserts a new document and returns it with its generated ID.
func (r *ExerciseMongo) Create(ctx context.Context, ex model.Exercise) (*model.Exercise, error) {
	if err := repository.ValidateExercise(ex); err != nil {
		return nil, err
	}

	doc := toDocument(ex)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translateWriteError("create", err)
	}

	out := doc.toModel()
	return &out, nil
}

// Find returns the documents matching the query's filter.
func (r *ExerciseMongo) Find(ctx context.Context, fq repository.FindQuery) ([]model.Exercise, error) {
	fq, err := fq.Normalize()
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if proj := buildProjection(fq.Projection); proj != nil {
		opts.SetProjection(proj)
	}
	if fq.Limit > 0 {
		opts.SetLimit(fq.Limit)
	}

	cur, err := r.coll.Find(ctx, buildFilter(fq.Filter), opts)
	if err != nil {
		return nil, repository.NewStoreError("find", err)
	}

	var docs []exerciseDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, repository.NewStoreError("find", err)
	}

	items := make([]model.Exercise, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toModel())
	}
	return items, nil
}

// FindByID fetches a single document by its ID.
// IDs that are not ObjectIDs cannot exist and yield repository.ErrNotFound.
func (r *ExerciseMongo) FindByID(ctx context.Context, id string) (*model.Exercise, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc exerciseDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, repository.NewStoreError("find_by_id", err)
	}

	out := doc.toModel()
	return &out, nil
}

// DeleteByID removes a document by ID and returns the number removed.
func (r *ExerciseMongo) DeleteByID(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return 0, repository.NewStoreError("delete_by_id", err)
	}
	return res.DeletedCount, nil
}

// Replace swaps the document with the given ID for one built from ex, keeping the ID.
// It returns the matched count, so an unknown ID reports 0 and an
// unchanged document still reports 1.
func (r *ExerciseMongo) Replace(ctx context.Context, id string, ex model.Exercise) (int64, error) {
	if err := repository.ValidateExercise(ex); err != nil {
		return 0, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: oid}}, toDocument(ex))
	if err != nil {
		return 0, translateWriteError("replace", err)
	}
	return res.MatchedCount, nil
}

// translateWriteError reports schema validator rejections as validation
// failures and everything else as a store error.
func translateWriteError(op string, err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) && se.HasErrorCode(documentValidationFailure) {
		return repository.NewValidationError(repository.FieldIssue{
			Field:   "document",
			Tag:     "schema",
			Message: fmt.Sprintf("document failed schema validation: %v", err),
		})
	}
	return repository.NewStoreError(op, err)
}
