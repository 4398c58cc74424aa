package utils

import (
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectIDParam parses a hex ObjectID out of a path parameter.
func ObjectIDParam(ps httprouter.Params, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(ps.ByName(name))
}
