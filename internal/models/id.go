package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh identifier. Every store uses the 24 character hex
// ObjectID form so ids look the same regardless of the backend.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed identifier.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
