package mongo

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"exercises/internal/model"
)

// exerciseDocument is the stored shape of model.Exercise.
type exerciseDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"name"`
	Reps   int                `bson:"reps"`
	Weight float64            `bson:"weight"`
	Unit   string             `bson:"unit"`
	Date   string             `bson:"date"`
}

func toDocument(ex model.Exercise) exerciseDocument {
	return exerciseDocument{
		Name:   ex.Name,
		Reps:   ex.Reps,
		Weight: ex.Weight,
		Unit:   ex.Unit,
		Date:   ex.Date,
	}
}

func (d exerciseDocument) toModel() model.Exercise {
	ex := model.Exercise{
		Name:   d.Name,
		Reps:   d.Reps,
		Weight: d.Weight,
		Unit:   d.Unit,
		Date:   d.Date,
	}
	if !d.ID.IsZero() {
		ex.ID = d.ID.Hex()
	}
	return ex
}
